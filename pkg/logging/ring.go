package logging

import (
	"context"
	"sync"
	"time"
)

// RingSink is a LogSink that keeps the most recent records in a fixed-size
// circular buffer, oldest evicted first. It backs debug endpoints that show
// what a service logged just before an incident without shipping logs
// anywhere.
type RingSink struct {
	mu       sync.RWMutex
	records  []Record
	head     int
	size     int
	capacity int
}

// NewRingSink creates a ring sink holding up to capacity records.
func NewRingSink(capacity int) *RingSink {
	if capacity <= 0 {
		capacity = 100
	}
	return &RingSink{
		records:  make([]Record, capacity),
		capacity: capacity,
	}
}

// Write implements LogSink.
func (s *RingSink) Write(_ context.Context, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := (s.head + s.size) % s.capacity
	s.records[tail] = record

	if s.size < s.capacity {
		s.size++
	} else {
		s.head = (s.head + 1) % s.capacity
	}
}

// Records returns the buffered records, oldest first.
func (s *RingSink) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, 0, s.size)
	for i := 0; i < s.size; i++ {
		result = append(result, s.records[(s.head+i)%s.capacity])
	}
	return result
}

// RecordsSince returns the buffered records with a timestamp at or after the
// cutoff, oldest first.
func (s *RingSink) RecordsSince(cutoff time.Time) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Record
	for i := 0; i < s.size; i++ {
		record := s.records[(s.head+i)%s.capacity]
		if !record.Timestamp.Before(cutoff) {
			result = append(result, record)
		}
	}
	return result
}

// ErrorsByTrace returns the buffered error records carrying the given trace
// id, oldest first.
func (s *RingSink) ErrorsByTrace(traceID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Record
	for i := 0; i < s.size; i++ {
		record := s.records[(s.head+i)%s.capacity]
		if record.Error != nil && record.Correlation != nil && record.Correlation.TraceID == traceID {
			result = append(result, record)
		}
	}
	return result
}

// Size returns the current number of buffered records.
func (s *RingSink) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Capacity returns the maximum number of buffered records.
func (s *RingSink) Capacity() int {
	return s.capacity
}

// Clear drops all buffered records.
func (s *RingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]Record, s.capacity)
	s.head = 0
	s.size = 0
}

package http

import (
	"sync"
	"time"
)

// Stats tracks front-door invocation counters.
type Stats struct {
	mu sync.Mutex

	activeRequests   int
	totalRequests    int64
	successRequests  int64
	failedRequests   int64
	totalExecutionMs int64
}

// StatsSnapshot is the JSON shape served by /stats.
type StatsSnapshot struct {
	ActiveRequests  int   `json:"active_requests"`
	TotalRequests   int64 `json:"total_requests"`
	SuccessRequests int64 `json:"success_requests"`
	FailedRequests  int64 `json:"failed_requests"`
	AvgExecutionMs  int64 `json:"avg_execution_ms"`
}

func (s *Stats) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRequests++
	s.totalRequests++
}

func (s *Stats) Success(start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRequests--
	s.successRequests++
	s.totalExecutionMs += time.Since(start).Milliseconds()
}

func (s *Stats) Failure(start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRequests--
	s.failedRequests++
	s.totalExecutionMs += time.Since(start).Milliseconds()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		ActiveRequests:  s.activeRequests,
		TotalRequests:   s.totalRequests,
		SuccessRequests: s.successRequests,
		FailedRequests:  s.failedRequests,
	}
	if done := s.successRequests + s.failedRequests; done > 0 {
		snap.AvgExecutionMs = s.totalExecutionMs / done
	}
	return snap
}

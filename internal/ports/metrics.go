package ports

import "github.com/teamboard/popcache/internal/domain"

// MetricsRecorder observes cache subsystem outcomes. Implementations must be
// safe for concurrent use and must never block the recording call site.
type MetricsRecorder interface {
	CacheHit(category domain.Category)
	CacheMiss(category domain.Category)
	FallbackServed(tier string)
	RefreshCompleted(category domain.Category, outcome string)
	DecayCycle(pruned int64)
}

// NopMetrics discards every observation. Used where no registry is wired,
// including tests.
type NopMetrics struct{}

func (NopMetrics) CacheHit(domain.Category)                 {}
func (NopMetrics) CacheMiss(domain.Category)                {}
func (NopMetrics) FallbackServed(string)                    {}
func (NopMetrics) RefreshCompleted(domain.Category, string) {}
func (NopMetrics) DecayCycle(int64)                         {}

package cache

import "time"

// Stats counts lookups per tier.
type Stats struct {
	FastHits       uint64        `json:"fast_hits"`
	FastMisses     uint64        `json:"fast_misses"`
	ExactHits      uint64        `json:"exact_hits"`
	ExactMisses    uint64        `json:"exact_misses"`
	SymbolicHits   uint64        `json:"symbolic_hits"`
	SymbolicMisses uint64        `json:"symbolic_misses"`
	Cleanups       uint64        `json:"cleanups"`   // eviction passes
	TimeSaved      time.Duration `json:"time_saved"` // estimated
}

func rate(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// FastHitRate is the fast tier hit ratio.
func (s Stats) FastHitRate() float64 { return rate(s.FastHits, s.FastMisses) }

// ExactHitRate is the exact tier hit ratio.
func (s Stats) ExactHitRate() float64 { return rate(s.ExactHits, s.ExactMisses) }

// SymbolicHitRate is the symbolic tier hit ratio.
func (s Stats) SymbolicHitRate() float64 { return rate(s.SymbolicHits, s.SymbolicMisses) }

// TotalHitRate is the hit ratio over all tiers.
func (s Stats) TotalHitRate() float64 {
	return rate(s.FastHits+s.ExactHits+s.SymbolicHits, s.FastMisses+s.ExactMisses+s.SymbolicMisses)
}

// Usage reports tier occupancy.
type Usage struct {
	FastUsage        int `json:"fast_usage"`
	FastCapacity     int `json:"fast_capacity"`
	ExactUsage       int `json:"exact_usage"`
	ExactCapacity    int `json:"exact_capacity"`
	SymbolicUsage    int `json:"symbolic_usage"`
	SymbolicCapacity int `json:"symbolic_capacity"`
}

func usageRate(used, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(used) / float64(capacity)
}

// FastUsageRate is the fraction of the fast tier in use.
func (u Usage) FastUsageRate() float64 { return usageRate(u.FastUsage, u.FastCapacity) }

// ExactUsageRate is the fraction of the exact tier in use.
func (u Usage) ExactUsageRate() float64 { return usageRate(u.ExactUsage, u.ExactCapacity) }

// SymbolicUsageRate is the fraction of the symbolic tier in use.
func (u Usage) SymbolicUsageRate() float64 { return usageRate(u.SymbolicUsage, u.SymbolicCapacity) }

// TotalUsageRate is the fraction of all capacity in use.
func (u Usage) TotalUsageRate() float64 {
	return usageRate(u.FastUsage+u.ExactUsage+u.SymbolicUsage,
		u.FastCapacity+u.ExactCapacity+u.SymbolicCapacity)
}

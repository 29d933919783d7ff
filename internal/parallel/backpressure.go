package parallel

import (
	"sync"
	"sync/atomic"
	"time"
)

// BackpressureStrategy defines how a bulk ingestion call reacts once its
// submission queue crosses the high watermark.
type BackpressureStrategy int

const (
	StrategyBlock      BackpressureStrategy = iota // Block until space available
	StrategyDrop                                   // Drop new items when full
	StrategyDropOldest                             // Drop oldest items to make room
	StrategyAdaptive                               // Dynamically slow down
)

// BackpressureConfig holds backpressure configuration for bulk insert.
type BackpressureConfig struct {
	Strategy      BackpressureStrategy
	MaxQueueSize  int
	HighWatermark float64 // Start slowing down
	LowWatermark  float64 // Resume normal speed
	MinRate       time.Duration
	MaxRate       time.Duration
}

// DefaultBackpressureConfig returns a conservative adaptive configuration.
func DefaultBackpressureConfig() *BackpressureConfig {
	return &BackpressureConfig{
		Strategy:      StrategyAdaptive,
		MaxQueueSize:  10000,
		HighWatermark: 0.8,
		LowWatermark:  0.5,
		MinRate:       1 * time.Millisecond,
		MaxRate:       100 * time.Millisecond,
	}
}

// BackpressureController tracks queue pressure for an ongoing bulk
// ingestion and decides whether the caller should proceed, slow down, or
// drop the current item.
type BackpressureController struct {
	config      *BackpressureConfig
	currentRate int64 // nanoseconds
	isPressured int32
	stats       BackpressureStats
	mu          sync.RWMutex
}

// BackpressureStats tracks backpressure statistics.
type BackpressureStats struct {
	ItemsProcessed  int64
	ItemsDropped    int64
	ItemsBlocked    int64
	PressureEvents  int64
	CurrentPressure float64
	CurrentRateNs   int64
}

// NewBackpressureController creates a new controller.
func NewBackpressureController(config *BackpressureConfig) *BackpressureController {
	if config == nil {
		config = DefaultBackpressureConfig()
	}
	return &BackpressureController{
		config:      config,
		currentRate: config.MinRate.Nanoseconds(),
	}
}

// CheckPressure reports current pressure and whether the caller should
// proceed with the item currently queued at (queueLen, queueCap).
func (bc *BackpressureController) CheckPressure(queueLen, queueCap int) bool {
	if queueCap == 0 {
		return true
	}

	pressure := float64(queueLen) / float64(queueCap)
	bc.mu.Lock()
	bc.stats.CurrentPressure = pressure
	bc.mu.Unlock()

	if pressure > bc.config.HighWatermark {
		if atomic.CompareAndSwapInt32(&bc.isPressured, 0, 1) {
			bc.mu.Lock()
			bc.stats.PressureEvents++
			bc.mu.Unlock()
		}
		bc.adjustRate(true)
		return bc.handleHighPressure()
	}

	if pressure < bc.config.LowWatermark {
		atomic.StoreInt32(&bc.isPressured, 0)
		bc.adjustRate(false)
	}

	return true
}

func (bc *BackpressureController) handleHighPressure() bool {
	switch bc.config.Strategy {
	case StrategyBlock:
		bc.mu.Lock()
		bc.stats.ItemsBlocked++
		bc.mu.Unlock()
		return false

	case StrategyDrop:
		bc.mu.Lock()
		bc.stats.ItemsDropped++
		bc.mu.Unlock()
		return false

	case StrategyDropOldest:
		return true

	case StrategyAdaptive:
		time.Sleep(time.Duration(atomic.LoadInt64(&bc.currentRate)))
		return true

	default:
		return true
	}
}

func (bc *BackpressureController) adjustRate(increase bool) {
	current := atomic.LoadInt64(&bc.currentRate)
	maxRate := bc.config.MaxRate.Nanoseconds()
	minRate := bc.config.MinRate.Nanoseconds()

	var next int64
	if increase {
		next = current * 2
		if next > maxRate {
			next = maxRate
		}
	} else {
		next = current / 2
		if next < minRate {
			next = minRate
		}
	}
	atomic.StoreInt64(&bc.currentRate, next)

	bc.mu.Lock()
	bc.stats.CurrentRateNs = next
	bc.mu.Unlock()
}

// IsPressured reports whether the queue is currently above HighWatermark.
func (bc *BackpressureController) IsPressured() bool {
	return atomic.LoadInt32(&bc.isPressured) == 1
}

// RecordProcessed records a successfully handled item.
func (bc *BackpressureController) RecordProcessed() {
	bc.mu.Lock()
	bc.stats.ItemsProcessed++
	bc.mu.Unlock()
}

// Stats returns a snapshot of backpressure statistics.
func (bc *BackpressureController) Stats() BackpressureStats {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.stats
}

// Package ui provides statistics display components.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stats holds index build/query statistics for a running watch session.
type Stats struct {
	mu sync.RWMutex

	// Ingestion
	TotalInserts  int64
	DuplicatesOut int64 // inserts skipped as duplicates
	FailedInserts int64

	// Timing
	StartTime     time.Time
	LastInsertAt  time.Time

	// Queries
	TotalQueries int64

	// Findings
	DuplicateGroupsFound int64
	HighConfidence       int64
	MediumConfidence     int64
	LowConfidence        int64

	// Progress, for a bulk ingest run with a known corpus size
	CurrentProgress  float64
	TotalItems       int64
	CompletedItems   int64
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		StartTime: time.Now(),
	}
}

// RecordInsert records the outcome of one Insert call.
func (s *Stats) RecordInsert(kept bool, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalInserts++
	s.LastInsertAt = time.Now()

	if failed {
		s.FailedInserts++
		return
	}
	if !kept {
		s.DuplicatesOut++
	}
}

// RecordQuery records that a Query/Cluster call ran.
func (s *Stats) RecordQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalQueries++
}

// RecordFinding records a near-duplicate finding by its report.Confidence
// level (expressed as a plain string so ui doesn't import report).
func (s *Stats) RecordFinding(confidence string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DuplicateGroupsFound++

	switch strings.ToLower(confidence) {
	case "high":
		s.HighConfidence++
	case "medium":
		s.MediumConfidence++
	case "low":
		s.LowConfidence++
	}
}

// UpdateProgress updates the ingestion progress.
func (s *Stats) UpdateProgress(completed, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CompletedItems = completed
	s.TotalItems = total

	if total > 0 {
		s.CurrentProgress = float64(completed) / float64(total)
	}
}

// GetInsertsPerSecond returns the current ingestion throughput.
func (s *Stats) GetInsertsPerSecond() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed < 1 {
		return 0
	}
	return float64(s.TotalInserts) / elapsed
}

// GetElapsedTime returns the elapsed time since start.
func (s *Stats) GetElapsedTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.StartTime)
}

// GetDuplicateRate returns the percentage (0-100) of inserts rejected as
// duplicates.
func (s *Stats) GetDuplicateRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.TotalInserts == 0 {
		return 0
	}
	return float64(s.DuplicatesOut) / float64(s.TotalInserts) * 100
}

// GetETA returns estimated time remaining for a bulk ingest run.
func (s *Stats) GetETA() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.CompletedItems == 0 || s.TotalItems == 0 {
		return 0
	}

	elapsed := time.Since(s.StartTime)
	remaining := s.TotalItems - s.CompletedItems
	rate := float64(s.CompletedItems) / elapsed.Seconds()

	if rate <= 0 {
		return 0
	}

	return time.Duration(float64(remaining)/rate) * time.Second
}

// Snapshot returns a copy of current stats.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		TotalInserts:         s.TotalInserts,
		DuplicatesOut:        s.DuplicatesOut,
		FailedInserts:        s.FailedInserts,
		TotalQueries:         s.TotalQueries,
		DuplicateGroupsFound: s.DuplicateGroupsFound,
		HighConfidence:       s.HighConfidence,
		MediumConfidence:     s.MediumConfidence,
		LowConfidence:        s.LowConfidence,
		CurrentProgress:      s.CurrentProgress,
		TotalItems:           s.TotalItems,
		CompletedItems:       s.CompletedItems,
		ElapsedTime:          time.Since(s.StartTime),
		InsertsPerSecond:     s.GetInsertsPerSecond(),
		DuplicateRate:        s.GetDuplicateRate(),
		ETA:                  s.GetETA(),
	}
}

// StatsSnapshot is an immutable snapshot of stats for rendering.
type StatsSnapshot struct {
	TotalInserts         int64
	DuplicatesOut        int64
	FailedInserts        int64
	TotalQueries         int64
	DuplicateGroupsFound int64
	HighConfidence       int64
	MediumConfidence     int64
	LowConfidence        int64
	CurrentProgress      float64
	TotalItems           int64
	CompletedItems       int64
	ElapsedTime          time.Duration
	InsertsPerSecond     float64
	DuplicateRate        float64
	ETA                  time.Duration
}

// StatsView renders the statistics panel.
type StatsView struct {
	width  int
	height int
}

// NewStatsView creates a new stats view.
func NewStatsView(width, height int) *StatsView {
	return &StatsView{
		width:  width,
		height: height,
	}
}

// SetSize updates the view size.
func (v *StatsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Render renders the stats view.
func (v *StatsView) Render(snap StatsSnapshot) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Ingestion"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Total Inserts", formatNumber(snap.TotalInserts)))
	b.WriteString("\n")

	b.WriteString(RenderLabel("Kept"))
	b.WriteString(" ")
	b.WriteString(SuccessStyle.Render(formatNumber(snap.TotalInserts - snap.DuplicatesOut - snap.FailedInserts)))
	b.WriteString(" | ")
	b.WriteString(RenderLabel("Duplicates"))
	b.WriteString(" ")
	b.WriteString(WarningStyle.Render(formatNumber(snap.DuplicatesOut)))
	b.WriteString(" | ")
	b.WriteString(RenderLabel("Failed"))
	b.WriteString(" ")
	b.WriteString(ErrorStyle.Render(formatNumber(snap.FailedInserts)))
	b.WriteString("\n")

	b.WriteString(RenderLabelValue("Duplicate Rate", fmt.Sprintf("%.1f%%", snap.DuplicateRate)))
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render("Throughput"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Inserts/sec", fmt.Sprintf("%.1f", snap.InsertsPerSecond)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Elapsed", formatDuration(snap.ElapsedTime)))
	b.WriteString("\n")
	if snap.TotalItems > 0 {
		b.WriteString(RenderLabelValue("ETA", formatDuration(snap.ETA)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(HeaderStyle.Render("Near-duplicate groups"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Total Found", formatNumber(snap.DuplicateGroupsFound)))
	b.WriteString("\n")

	if snap.DuplicateGroupsFound > 0 {
		b.WriteString("  ")
		b.WriteString(ConfidenceHighStyle.Render(fmt.Sprintf("High: %d", snap.HighConfidence)))
		b.WriteString(" | ")
		b.WriteString(ConfidenceMediumStyle.Render(fmt.Sprintf("Med: %d", snap.MediumConfidence)))
		b.WriteString(" | ")
		b.WriteString(ConfidenceLowStyle.Render(fmt.Sprintf("Low: %d", snap.LowConfidence)))
		b.WriteString("\n")
	}

	return StatsPanelStyle.Width(v.width).Render(b.String())
}

// Helper functions

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// Package report generates dedup/near-duplicate reports from an LSH
// index's findings: groups of similar items alongside corpus-wide
// statistics, in whichever output format the caller wants.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Confidence buckets a Finding by how strongly its members agree, derived
// from the gap between its estimated similarity and the index's configured
// threshold rather than from a separate scoring pass.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFor classifies a similarity score against the index threshold
// that produced it: anything comfortably above threshold is high
// confidence, anything right at the edge is low.
func ConfidenceFor(similarity, threshold float64) Confidence {
	margin := similarity - threshold
	switch {
	case margin >= 0.2:
		return ConfidenceHigh
	case margin >= 0.05:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Finding is one near-duplicate group surfaced by Cluster, or a single
// pairwise hit surfaced by Query.
type Finding struct {
	ID                  string     `json:"id"`
	Algorithm           string     `json:"algorithm"` // "minhash", "simhash", "fuzzyhash"
	Members             []string   `json:"members"`
	EstimatedSimilarity float64    `json:"estimatedSimilarity"`
	Confidence          Confidence `json:"confidence"`
	Timestamp           time.Time  `json:"timestamp"`
}

// Statistics holds corpus-wide counters for a build/query run.
type Statistics struct {
	TotalItems             int64         `json:"totalItems"`
	DuplicateGroups        int64         `json:"duplicateGroups"`
	ItemsInDuplicateGroups int64         `json:"itemsInDuplicateGroups"`
	LargestGroupSize       int           `json:"largestGroupSize"`
	QueryCount             int64         `json:"queryCount"`
	BuildDuration          time.Duration `json:"buildDuration"`
}

// MarshalJSON renders BuildDuration as a human string rather than a raw
// nanosecond count, matching how the rest of the report reads.
func (s Statistics) MarshalJSON() ([]byte, error) {
	type Alias Statistics
	return json.Marshal(&struct {
		Alias
		BuildDuration string `json:"buildDuration"`
	}{
		Alias:         Alias(s),
		BuildDuration: s.BuildDuration.String(),
	})
}

// Report is a complete dedup run: what corpus was indexed, with what
// parameters, and what near-duplicate groups it found.
type Report struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`

	CorpusSource string `json:"corpusSource"`

	Statistics Statistics `json:"statistics"`
	Findings   []Finding  `json:"findings"`

	ConfidenceCounts map[Confidence]int `json:"confidenceCounts"`
}

// NewReport creates an empty report ready for AddFinding calls.
func NewReport(title, corpusSource string) *Report {
	return &Report{
		Title:            title,
		Version:          "1.0",
		GeneratedAt:      time.Now(),
		CorpusSource:     corpusSource,
		Findings:         make([]Finding, 0),
		ConfidenceCounts: make(map[Confidence]int),
	}
}

// AddFinding appends a finding and updates its confidence tally.
func (r *Report) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
	r.ConfidenceCounts[f.Confidence]++
}

// SetStatistics sets the report's corpus statistics.
func (r *Report) SetStatistics(stats Statistics) {
	stats.DuplicateGroups = int64(len(r.Findings))
	r.Statistics = stats
}

// GetHighConfidenceCount returns the number of high-confidence findings.
func (r *Report) GetHighConfidenceCount() int {
	return r.ConfidenceCounts[ConfidenceHigh]
}

// GetMediumConfidenceCount returns the number of medium-confidence findings.
func (r *Report) GetMediumConfidenceCount() int {
	return r.ConfidenceCounts[ConfidenceMedium]
}

// GetLowConfidenceCount returns the number of low-confidence findings.
func (r *Report) GetLowConfidenceCount() int {
	return r.ConfidenceCounts[ConfidenceLow]
}

// FilterByConfidence returns findings at exactly the given confidence level.
func (r *Report) FilterByConfidence(c Confidence) []Finding {
	var filtered []Finding
	for _, f := range r.Findings {
		if f.Confidence == c {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// FilterByAlgorithm returns findings produced by the given algorithm.
func (r *Report) FilterByAlgorithm(algorithm string) []Finding {
	var filtered []Finding
	for _, f := range r.Findings {
		if f.Algorithm == algorithm {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Generator is the interface every output format implements.
type Generator interface {
	Generate(report *Report, w io.Writer) error
	Extension() string
}

// Manager dispatches report generation across registered formats and
// handles on-disk output file naming.
type Manager struct {
	generators map[string]Generator
	outputDir  string
}

// NewManager creates a manager with the default JSON/HTML/Markdown
// generators registered.
func NewManager(outputDir string) *Manager {
	m := &Manager{
		generators: make(map[string]Generator),
		outputDir:  outputDir,
	}

	m.RegisterGenerator("json", &JSONGenerator{Indent: true})
	m.RegisterGenerator("html", NewHTMLGenerator())
	m.RegisterGenerator("markdown", &MarkdownGenerator{})
	m.RegisterGenerator("md", &MarkdownGenerator{})

	return m
}

// RegisterGenerator registers a generator under format.
func (m *Manager) RegisterGenerator(format string, gen Generator) {
	m.generators[format] = gen
}

// GetGenerator returns the generator registered for format.
func (m *Manager) GetGenerator(format string) (Generator, bool) {
	gen, ok := m.generators[format]
	return gen, ok
}

// Generate writes report in format to a new file under the manager's
// output directory, returning the file's path.
func (m *Manager) Generate(report *Report, format string) (string, error) {
	gen, ok := m.generators[format]
	if !ok {
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("report_%s.%s", timestamp, gen.Extension())
	path := filepath.Join(m.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := gen.Generate(report, f); err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	return path, nil
}

// GenerateAll generates a report in every registered format, skipping
// duplicate extensions (e.g. "md" and "markdown" both produce .md).
func (m *Manager) GenerateAll(report *Report) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for format, gen := range m.generators {
		ext := gen.Extension()
		if seen[ext] {
			continue
		}
		seen[ext] = true

		path, err := m.Generate(report, format)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// WriteToWriter generates a report in format directly to w, skipping the
// on-disk file entirely.
func (m *Manager) WriteToWriter(report *Report, format string, w io.Writer) error {
	gen, ok := m.generators[format]
	if !ok {
		return fmt.Errorf("unknown report format: %s", format)
	}

	return gen.Generate(report, w)
}

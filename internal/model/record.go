// Package model defines the core types shared across the extraction pipeline.
package model

import "strings"

// Status is the terminal outcome of processing one record.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Source identifies which source produced an abstract.
type Source string

const (
	SourceScopus   Source = "scopus"   // primary: scraped from the paper's Scopus page
	SourceCrossref Source = "crossref" // fallback: CrossRef works API by DOI
	SourceNone     Source = "none"
)

// ErrorKind classifies a per-record extraction failure. Per-record failures
// never abort a run; they are recorded and surfaced in the final statistics.
type ErrorKind string

const (
	ErrorNone                ErrorKind = ""
	ErrorSourceUnreachable   ErrorKind = "source_unreachable"   // network/timeout/non-success on the page fetch
	ErrorNoContentFound      ErrorKind = "no_content_found"     // page fetched but no strategy matched
	ErrorFallbackUnavailable ErrorKind = "fallback_unavailable" // no DOI, or CrossRef had no abstract
	ErrorMalformedResponse   ErrorKind = "malformed_response"   // response received but not parseable
)

// Record is one input row. Immutable once loaded; ID is the row ordinal in
// the input sheet, which is stable across runs because the input is
// read-only.
type Record struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
	DOI string `json:"doi,omitempty"`
}

// HasLocator reports whether the record carries anything retrievable.
func (r Record) HasLocator() bool {
	return r.URL != "" || r.DOI != ""
}

// ExtractionResult is the outcome for one record. Exactly one exists per
// attempted record; it is owned by the pipeline driver and persisted by the
// checkpoint store.
type ExtractionResult struct {
	RecordID string    `json:"record_id"`
	Status   Status    `json:"status"`
	Abstract string    `json:"abstract,omitempty"`
	Keywords []string  `json:"keywords,omitempty"`
	Source   Source    `json:"source"`
	Error    ErrorKind `json:"error,omitempty"`
}

// keywordSep joins keyword lists in the checkpoint and output dataset.
const keywordSep = "; "

// JoinKeywords renders an ordered keyword list as a single delimited cell.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, keywordSep)
}

// SplitKeywords is the inverse of JoinKeywords. Empty input yields nil.
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RunStats summarizes a result set. It is always derived from the final
// result map, never tracked as separate counters, so it cannot drift from
// persisted state.
type RunStats struct {
	Attempted         int `json:"attempted"`
	SucceededPrimary  int `json:"succeeded_primary"`
	SucceededFallback int `json:"succeeded_fallback"`
	Failed            int `json:"failed"`
}

// SuccessRate returns the fraction of attempted records that succeeded.
func (s RunStats) SuccessRate() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.SucceededPrimary+s.SucceededFallback) / float64(s.Attempted)
}

// ComputeStats derives RunStats from a result map.
func ComputeStats(results map[string]ExtractionResult) RunStats {
	var stats RunStats
	for _, r := range results {
		stats.Attempted++
		switch {
		case r.Status == StatusSuccess && r.Source == SourceCrossref:
			stats.SucceededFallback++
		case r.Status == StatusSuccess:
			stats.SucceededPrimary++
		default:
			stats.Failed++
		}
	}
	return stats
}

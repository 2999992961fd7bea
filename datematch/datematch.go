// Package datematch implements tolerant date comparison with scored
// bands. Statement parsers use it to resolve carried-forward dates and
// the reconciliation engine uses it to decide whether two independently
// recorded transactions happened on "the same" day despite posting
// delays.
//
// Scores follow fixed bands: 30 for the same calendar day, then 25/20/15
// for one, two and three days apart. Larger gaps up to the configured
// maximum still count as matches but score zero and carry a confidence
// cap, so downstream scoring cannot treat them as solid evidence.
package datematch

import (
	"fmt"
	"time"
)

// DefaultMaxDaysDiff is the default outer tolerance: beyond this many
// days apart two dates never match.
const DefaultMaxDaysDiff = 10

// DefaultTolerance is the default inner tolerance used by the window and
// containment helpers.
const DefaultTolerance = 3

// WeakMatchConfidenceCap is attached to matches in the 4..max band; any
// aggregate confidence built on such a match should not exceed it.
const WeakMatchConfidenceCap = 50

// MaxScore is the score of a same-day comparison.
const MaxScore = 30

// Options controls one comparison.
type Options struct {
	// MaxDaysDiff is the outer tolerance in days. Zero means
	// DefaultMaxDaysDiff.
	MaxDaysDiff int
	// StrictMode scores linearly (30 minus 5 per day, floored at zero)
	// instead of banded.
	StrictMode bool
}

func (o Options) maxDays() int {
	if o.MaxDaysDiff <= 0 {
		return DefaultMaxDaysDiff
	}
	return o.MaxDaysDiff
}

// Result is the outcome of a single date-pair comparison.
type Result struct {
	Score         int    `json:"score"`
	DaysDiff      int    `json:"days_diff"`
	IsMatch       bool   `json:"is_match"`
	Reason        string `json:"reason"`
	ConfidenceCap int    `json:"confidence_cap,omitempty"`
}

// startOfDay projects a time onto its calendar day. Comparisons work on
// UTC-midnight projections so time-of-day and DST shifts never leak into
// the day arithmetic.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between two
// times. Same-day comparisons return zero regardless of time-of-day.
func DaysBetween(a, b time.Time) int {
	diff := int(startOfDay(a).Sub(startOfDay(b)).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// Compare scores a date pair. In the default banded mode, 0-3 days apart
// earn descending scores; 4 days up to the outer tolerance is a weak
// match with a confidence cap; beyond it is no match.
func Compare(a, b time.Time, opts Options) Result {
	days := DaysBetween(a, b)
	maxDays := opts.maxDays()

	if opts.StrictMode {
		score := MaxScore - days*5
		if score < 0 {
			score = 0
		}
		return Result{
			Score:    score,
			DaysDiff: days,
			IsMatch:  days <= maxDays,
			Reason:   fmt.Sprintf("strict mode: %d days apart", days),
		}
	}

	switch {
	case days == 0:
		return Result{Score: 30, DaysDiff: 0, IsMatch: true, Reason: "same day"}
	case days == 1:
		return Result{Score: 25, DaysDiff: 1, IsMatch: true, Reason: "excellent match: 1 day apart"}
	case days == 2:
		return Result{Score: 20, DaysDiff: 2, IsMatch: true, Reason: "good match: 2 days apart"}
	case days == 3:
		return Result{Score: 15, DaysDiff: 3, IsMatch: true, Reason: "acceptable match: 3 days apart"}
	case days <= maxDays:
		return Result{
			Score:         0,
			DaysDiff:      days,
			IsMatch:       true,
			Reason:        fmt.Sprintf("weak match: %d days apart", days),
			ConfidenceCap: WeakMatchConfidenceCap,
		}
	default:
		return Result{
			Score:    0,
			DaysDiff: days,
			IsMatch:  false,
			Reason:   fmt.Sprintf("%d days apart exceeds tolerance of %d", days, maxDays),
		}
	}
}

// BestMatch pairs the winning candidate index with its comparison result.
type BestMatch struct {
	Index  int    `json:"index"`
	Result Result `json:"result"`
}

// FindBest scans candidates for the best-scoring match against target.
// Ties keep the earliest index: a later candidate only wins on a strictly
// greater score. A same-day candidate short-circuits the scan. Returns
// nil for an empty candidate list.
func FindBest(target time.Time, candidates []time.Time, opts Options) *BestMatch {
	if len(candidates) == 0 {
		return nil
	}
	var best *BestMatch
	for i, candidate := range candidates {
		result := Compare(target, candidate, opts)
		if best == nil || result.Score > best.Result.Score {
			best = &BestMatch{Index: i, Result: result}
		}
		if result.Score == MaxScore {
			break
		}
	}
	return best
}

// WithinTolerance reports whether two dates are at most tolerance
// calendar days apart.
func WithinTolerance(a, b time.Time, tolerance int) bool {
	return DaysBetween(a, b) <= tolerance
}

// SearchWindow returns the inclusive [center-tolerance, center+tolerance]
// day range around a date.
func SearchWindow(center time.Time, tolerance int) (time.Time, time.Time) {
	day := startOfDay(center)
	return day.AddDate(0, 0, -tolerance), day.AddDate(0, 0, tolerance)
}

// InPeriod reports whether date falls inside [start, end], boundaries
// included. Comparison ignores time-of-day.
func InPeriod(date, start, end time.Time) bool {
	day := startOfDay(date)
	return !day.Before(startOfDay(start)) && !day.After(startOfDay(end))
}

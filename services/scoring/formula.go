package scoring

import (
	"math"
	"time"
)

// FormulaVersion is stamped on every lead_scores row. Bump it whenever the
// weights, component curves or segment thresholds below change, so stored
// scores from different formulas are never compared against each other.
const FormulaVersion = 2

// score = 0.30*recency + 0.25*trend + 0.25*longevity + 0.20*peak,
// each component on a 0..100 scale.
const (
	weightRecency   = 0.30
	weightTrend     = 0.25
	weightLongevity = 0.25
	weightPeak      = 0.20
)

const (
	// recency decays linearly to zero over this many days
	recencyHorizonDays = 30
	// longevity saturates at this many distinct chart days
	longevityHorizonDays = 90

	coreMinDays        = 60
	coreBestPosition   = 10
	momentumWindowDays = 7
	freshWindowDays    = 14
	regularMinDays     = 21
	regularWindowDays  = 14
)

const (
	SegmentCore     = "core"
	SegmentRegular  = "regular"
	SegmentFresh    = "fresh"
	SegmentMomentum = "momentum"
	SegmentFlyers   = "flyers"
)

// Metrics is the formula input, decoupled from the storage row.
type Metrics struct {
	FirstSeen         string
	LastSeen          string
	TotalEntries      int64
	DaysInCharts      int64
	BestPosition      int64
	AvgPosition       float64
	RecentAvgPosition float64
	PriorAvgPosition  float64
}

// Signals records every number and threshold outcome the formula consulted,
// stored as JSON next to the score so a ranking can be explained later.
type Signals struct {
	DaysSinceFirstSeen int     `json:"days_since_first_seen"`
	DaysSinceLastSeen  int     `json:"days_since_last_seen"`
	DaysInCharts       int64   `json:"days_in_charts"`
	BestPosition       int64   `json:"best_position"`
	AvgPosition        float64 `json:"avg_position"`
	RecentAvgPosition  float64 `json:"recent_avg_position"`
	PriorAvgPosition   float64 `json:"prior_avg_position"`
	TrendImproving     bool    `json:"trend_improving"`
	Recency            float64 `json:"recency"`
	Trend              float64 `json:"trend"`
	Longevity          float64 `json:"longevity"`
	Peak               float64 `json:"peak"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round1 keeps stored scores byte-stable across runs.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func daysBetween(from, to string) int {
	a, errA := time.Parse("2006-01-02", from)
	b, errB := time.Parse("2006-01-02", to)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// Compute maps metrics to exactly one segment and a 0..100 score. asOf is
// the max snapshot date in store, so re-running on unchanged data yields
// identical output.
func Compute(m Metrics, asOf string) (string, float64, Signals) {
	signals := Signals{
		DaysSinceFirstSeen: daysBetween(m.FirstSeen, asOf),
		DaysSinceLastSeen:  daysBetween(m.LastSeen, asOf),
		DaysInCharts:       m.DaysInCharts,
		BestPosition:       m.BestPosition,
		AvgPosition:        round1(m.AvgPosition),
		RecentAvgPosition:  round1(m.RecentAvgPosition),
		PriorAvgPosition:   round1(m.PriorAvgPosition),
	}
	signals.TrendImproving = m.RecentAvgPosition > 0 &&
		m.PriorAvgPosition > 0 &&
		m.RecentAvgPosition < m.PriorAvgPosition

	signals.Recency = clamp(100-float64(signals.DaysSinceLastSeen)*(100.0/recencyHorizonDays), 0, 100)

	switch {
	case m.RecentAvgPosition > 0 && m.PriorAvgPosition > 0:
		improvement := m.PriorAvgPosition - m.RecentAvgPosition
		signals.Trend = clamp(50+improvement*5, 0, 100)
	case m.RecentAvgPosition > 0:
		// charting now with no prior window to compare against
		signals.Trend = 70
	default:
		signals.Trend = 30
	}

	signals.Longevity = clamp(float64(m.DaysInCharts)*(100.0/longevityHorizonDays), 0, 100)
	signals.Peak = clamp(100-float64(m.BestPosition-1)*(100.0/99.0), 0, 100)

	signals.Recency = round1(signals.Recency)
	signals.Trend = round1(signals.Trend)
	signals.Longevity = round1(signals.Longevity)
	signals.Peak = round1(signals.Peak)

	score := round1(weightRecency*signals.Recency +
		weightTrend*signals.Trend +
		weightLongevity*signals.Longevity +
		weightPeak*signals.Peak)

	return segmentFor(signals), score, signals
}

// segmentFor picks the first matching segment; rule order is part of the
// formula version.
func segmentFor(s Signals) string {
	switch {
	case s.DaysInCharts >= coreMinDays && s.BestPosition <= coreBestPosition:
		return SegmentCore
	case s.DaysSinceLastSeen <= momentumWindowDays && s.TrendImproving:
		return SegmentMomentum
	case s.DaysSinceFirstSeen <= freshWindowDays:
		return SegmentFresh
	case s.DaysInCharts >= regularMinDays && s.DaysSinceLastSeen <= regularWindowDays:
		return SegmentRegular
	default:
		return SegmentFlyers
	}
}

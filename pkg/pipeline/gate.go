package pipeline

import "fmt"

// Quality-gate defaults; the effective values come from configuration.
const (
	DefaultMinTrends     = 5
	DefaultMinFreshRatio = 0.5
)

// Gate enforces the minimum-volume and freshness thresholds on the final
// list before anything downstream may publish.
type Gate struct {
	MinTrends     int
	MinFreshRatio float64
}

// NewGate builds a gate, filling zero thresholds with the defaults.
func NewGate(minTrends int, minFreshRatio float64) *Gate {
	if minTrends <= 0 {
		minTrends = DefaultMinTrends
	}
	if minFreshRatio <= 0 {
		minFreshRatio = DefaultMinFreshRatio
	}
	return &Gate{MinTrends: minTrends, MinFreshRatio: minFreshRatio}
}

// Check runs both gates in order. Too few trends is fatal and returns a
// *GateError; a low fresh ratio only yields a warning and the run
// continues.
func (g *Gate) Check(total int, freshRatio float64) ([]string, error) {
	if total < g.MinTrends {
		return nil, &GateError{Total: total, Min: g.MinTrends}
	}

	var warnings []string
	if freshRatio < g.MinFreshRatio {
		warnings = append(warnings, fmt.Sprintf(
			"freshness below threshold: %.2f of trends are from the past day, minimum is %.2f",
			freshRatio, g.MinFreshRatio))
	}
	return warnings, nil
}

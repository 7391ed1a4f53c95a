package analytics

// TrendDirection classifies a period-over-period movement.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// MetricWithTrend pairs a scalar with its previous-period value and a
// derived movement classification.
type MetricWithTrend struct {
	Value         float64        `json:"value"`
	PreviousValue float64        `json:"previousValue"`
	Change        float64        `json:"change"`
	ChangePercent float64        `json:"changePercent"`
	Trend         TrendDirection `json:"trend"`
}

// Trend compares current against previous with a ±1% deadband. The
// inequalities are strict: current == previous*1.01 exactly is stable.
func Trend(current, previous float64) TrendDirection {
	switch {
	case current > previous*1.01:
		return TrendUp
	case current < previous*0.99:
		return TrendDown
	default:
		return TrendStable
	}
}

// NewMetric wraps a current/previous pair. ChangePercent is 0 when the
// previous value is 0.
func NewMetric(current, previous float64) MetricWithTrend {
	change := current - previous
	changePercent := 0.0
	if previous != 0 {
		changePercent = change / previous * 100
	}
	return MetricWithTrend{
		Value:         current,
		PreviousValue: previous,
		Change:        change,
		ChangePercent: changePercent,
		Trend:         Trend(current, previous),
	}
}

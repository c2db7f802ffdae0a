package signal

import "emacross/internal/model"

// EMA computes the exponential moving average of series for the given span.
// The recurrence is seeded from the first value, so there is no warm-up gap.
func EMA(series []float64, span int) []float64 {
	ema := make([]float64, len(series))
	if len(series) == 0 {
		return ema
	}

	alpha := 2.0 / float64(span+1)
	ema[0] = series[0]
	for i := 1; i < len(series); i++ {
		ema[i] = alpha*series[i] + (1-alpha)*ema[i-1]
	}
	return ema
}

// Generate annotates bars with fast and slow EMAs of the close and marks
// every bar where the fast EMA crosses above the slow one.
// Spans must be positive; that is the caller's responsibility.
func Generate(bars []model.Bar, fastSpan, slowSpan int) []model.AnnotatedBar {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := EMA(closes, fastSpan)
	slow := EMA(closes, slowSpan)

	out := make([]model.AnnotatedBar, len(bars))
	for i, b := range bars {
		out[i] = model.AnnotatedBar{
			Bar:     b,
			EMAFast: fast[i],
			EMASlow: slow[i],
		}
		if i > 0 {
			out[i].IsEntrySignal = fast[i] > slow[i] && fast[i-1] <= slow[i-1]
		}
	}
	return out
}

// Package indicator provides technical indicators over price series.
//
// Every function returns a slice aligned 1:1 with its input. Positions with
// insufficient history hold NaN; use Defined to test a value. A window
// outside (0, len] yields an entirely undefined series rather than an error.
package indicator

import "math"

// Undefined is the sentinel for positions where an indicator has no value.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v holds a computed indicator value.
func Defined(v float64) bool { return !math.IsNaN(v) }

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA calculates the simple moving average over a strict trailing window.
// The first window-1 positions are undefined; partial windows do not count.
func SMA(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA calculates the exponential moving average with smoothing factor
// 2/(window+1), seeded from the first value. It is defined from the first
// position onward; there is no warm-up gap.
func EMA(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	alpha := 2.0 / float64(window+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

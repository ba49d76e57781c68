package indicator

import (
	"math"
	"testing"
)

func TestMACD_Alignment(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i)/3)*5
	}

	result := MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	if len(result.Line) != len(prices) || len(result.Signal) != len(prices) || len(result.Histogram) != len(prices) {
		t.Fatalf("all MACD series must align with input: %d/%d/%d vs %d",
			len(result.Line), len(result.Signal), len(result.Histogram), len(prices))
	}

	for i := range prices {
		if !Defined(result.Line[i]) {
			t.Errorf("macd line[%d] should be defined", i)
			continue
		}
		want := result.Line[i] - result.Signal[i]
		if math.Abs(result.Histogram[i]-want) > 1e-12 {
			t.Errorf("histogram[%d] = %f, want line-signal = %f", i, result.Histogram[i], want)
		}
	}
}

func TestMACD_LineIsEMADifference(t *testing.T) {
	prices := []float64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19,
		20, 22, 21, 23, 25, 24, 26, 28, 27, 29,
		30, 32, 31, 33, 35, 34, 36, 38, 37, 39}

	result := MACD(prices, 12, 26, 9)
	fast := EMA(prices, 12)
	slow := EMA(prices, 26)

	for i := range prices {
		want := fast[i] - slow[i]
		if math.Abs(result.Line[i]-want) > 1e-12 {
			t.Errorf("line[%d] = %f, want %f", i, result.Line[i], want)
		}
	}
}

func TestMACD_ShortSeriesUndefined(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	result := MACD(prices, 12, 26, 9)

	for i := range prices {
		if Defined(result.Line[i]) || Defined(result.Signal[i]) || Defined(result.Histogram[i]) {
			t.Errorf("position %d should be undefined when the slow window exceeds the series", i)
		}
	}
}

package forecast

import (
	"math"
	"testing"
)

func TestPriceRoundTrip(t *testing.T) {
	t.Parallel()

	for p := 0.000001; p <= 1e7; p *= 1.37 {
		s := FormatPrice(p)
		back, err := ParsePrice(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if back != Round2(p) {
			t.Fatalf("round trip of %v: got %v, want %v", p, back, Round2(p))
		}
	}
}

func TestRound2(t *testing.T) {
	tests := map[float64]float64{
		1.005:   1.01,
		2.344:   2.34,
		0.42:    0.42,
		50000.0: 50000,
	}
	for in, want := range tests {
		if got := Round2(in); math.Abs(got-want) > 1e-12 {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	if _, err := ParsePrice("abc"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDisplayPrice(t *testing.T) {
	tests := map[float64]string{
		0.42:        "$0.42",
		0.5:         "$0.50",
		0.123456789: "$0.123457",
		0:           "$0.00",
		1:           "$1.00",
		50000:       "$50,000.00",
		1234567.891: "$1,234,567.89",
	}
	for in, want := range tests {
		if got := DisplayPrice(in); got != want {
			t.Errorf("DisplayPrice(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(4.2); got != "+4.20%" {
		t.Errorf("unexpected %q", got)
	}
	if got := FormatPercent(-0.456); got != "-0.46%" {
		t.Errorf("unexpected %q", got)
	}
}

package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{"0.01", 0.01, true},
		{" 5 ", 5, true},
		{"", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"+3", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12x", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseAmount(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseAmount(%q) expected error", tc.in)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.004, 1.0},
		{1.005, 1.01}, // half away from zero
		{1.006, 1.01},
		{0, 0},
		{2999.999, 3000},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	if got := Cents(12.345); got != 1235 {
		t.Fatalf("Cents(12.345) = %d, want 1235", got)
	}
	if got := FromCents(1234); got != 12.34 {
		t.Fatalf("FromCents(1234) = %v, want 12.34", got)
	}
}

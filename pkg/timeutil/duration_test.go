package timeutil

import (
	"testing"
	"time"
)

func TestParseAgeEmpty(t *testing.T) {
	d, err := ParseAge("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Fatalf("expected no limit, got %v", d)
	}
}

func TestParseAgeComposite(t *testing.T) {
	d, err := ParseAge("1w2d6h30m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24+2*24+6)*time.Hour + 30*time.Minute
	if d != want {
		t.Fatalf("expected %v, got %v", want, d)
	}
}

func TestParseAgeInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3y", "0m"} {
		if _, err := ParseAge(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "now"},
		{45 * time.Second, "45s"},
		{90 * time.Minute, "1h30m"},
		{2*day + 3*time.Hour + time.Minute, "2d3h"},
		{week + 5*time.Minute, "1w"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.d); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

package timecode

import (
	"errors"
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00:00"},
		{"seconds only", 5, "00:00:05"},
		{"minute boundary", 60, "00:01:00"},
		{"minutes and seconds", 65, "00:01:05"},
		{"hour boundary", 3600, "01:00:00"},
		{"all fields", 3661, "01:01:01"},
		{"large hours", 360000, "100:00:00"},
		{"fraction floors", 59.94, "00:00:59"},
		{"negative clamps", -12, "00:00:00"},
		{"nan clamps", math.NaN(), "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.seconds); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty means zero", "", 0},
		{"whitespace means zero", "   ", 0},
		{"bare seconds", "5", 5},
		{"bare seconds above a minute", "90", 90},
		{"minutes and seconds", "1:05", 65},
		{"full form", "01:01:01", 3661},
		{"unpadded fields", "1:2:3", 3723},
		{"hours above 99", "100:00:00", 360000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"letters", "abc"},
		{"seconds out of range", "1:99"},
		{"minutes out of range", "1:60:00"},
		{"negative field", "-5"},
		{"too many fields", "1:2:3:4"},
		{"empty field", "1:"},
		{"decimal field", "1.5"},
		{"mixed garbage", "12:xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Parse(%q) error = %v, want ErrParse", tt.text, err)
			}
			if got != 0 {
				t.Errorf("Parse(%q) = %v, want 0 on failure", tt.text, got)
			}
		})
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	for _, text := range []string{"00:00:00", "00:00:05", "00:01:05", "01:01:01", "12:34:56"} {
		seconds, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", text, err)
		}
		if got := Format(seconds); got != text {
			t.Errorf("Format(Parse(%q)) = %q, want %q", text, got, text)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "0 seconds"},
		{"single second", 1, "1 second"},
		{"seconds only", 45, "45 seconds"},
		{"minute exactly", 60, "1 minute"},
		{"hours minutes seconds", 3723, "1 hour, 2 minutes, 3 seconds"},
		{"skips zero components", 7200, "2 hours"},
		{"hour and second", 3601, "1 hour, 1 second"},
		{"negative clamps", -30, "0 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

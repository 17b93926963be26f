package money

import (
	"errors"
	"testing"
)

func TestParseAcceptsValidAmounts(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.01, "0.01"},
		{1, "1.00"},
		{100.5, "100.50"},
		{9999999.99, "9999999.99"},
	}
	for _, tt := range tests {
		d, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%v) error = %v, want nil", tt.in, err)
			continue
		}
		if Format(d) != tt.want {
			t.Errorf("Parse(%v) = %s, want %s", tt.in, Format(d), tt.want)
		}
	}
}

func TestParseRejectsInvalidAmounts(t *testing.T) {
	for _, in := range []float64{0, -0.01, -100, 1234567890} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Parse(%v) error = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestParseRejectsSubCentPrecision(t *testing.T) {
	if _, err := Parse(9.999); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Parse(9.999) error = %v, want ErrInvalidAmount", err)
	}
}

func TestParseString(t *testing.T) {
	d, err := ParseString("12.34")
	if err != nil {
		t.Fatalf("ParseString(12.34): %v", err)
	}
	if Format(d) != "12.34" {
		t.Errorf("got %s, want 12.34", Format(d))
	}

	for _, in := range []string{"", "abc", "-5", "0", "0.005"} {
		if _, err := ParseString(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseString(%q) error = %v, want ErrInvalidAmount", in, err)
		}
	}
}

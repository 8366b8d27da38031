package status

import (
	"errors"
	"fmt"
	"testing"
)

func TestTranslate_FixedTable(t *testing.T) {
	tests := []struct {
		raw  int32
		want Code
	}{
		{0, Success},
		{1000, Failure},
		{1001, IllegalArgument},
		{1011, NoneAvailable},
		{1970170734, VendorUnknown},
		{1007, RangeCheck},
		{424242, Success},
		{-1, Success},
	}
	for _, tt := range tests {
		if got := Translate(tt.raw); got != tt.want {
			t.Errorf("Translate(%d) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestTranslator_ConfigurableFallback(t *testing.T) {
	tr := Translator{Fallback: Failure}
	if got := tr.Translate(424242); got != Failure {
		t.Fatalf("Translate(424242) = %s, want Failure", got)
	}
	if got := tr.Translate(1001); got != IllegalArgument {
		t.Fatalf("Translate(1001) = %s, want IllegalArgument", got)
	}
	if tr.Known(424242) {
		t.Fatalf("424242 should not be a known raw code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != Success {
		t.Fatalf("CodeOf(nil) = %s", got)
	}
	if got := CodeOf(errors.New("boom")); got != Failure {
		t.Fatalf("CodeOf(plain) = %s", got)
	}
	wrapped := fmt.Errorf("outer: %w", New("setGamma", RangeCheck))
	if got := CodeOf(wrapped); got != RangeCheck {
		t.Fatalf("CodeOf(wrapped) = %s", got)
	}
	if !errors.Is(wrapped, ErrRangeCheck) {
		t.Fatalf("errors.Is(wrapped, ErrRangeCheck) = false")
	}
	if errors.Is(wrapped, ErrIllegalArgument) {
		t.Fatalf("errors.Is(wrapped, ErrIllegalArgument) = true")
	}
}

func TestNew_SuccessIsNil(t *testing.T) {
	if err := New("op", Success); err != nil {
		t.Fatalf("New(Success) = %v, want nil", err)
	}
	if err := Wrap("op", Success, errors.New("ignored")); err != nil {
		t.Fatalf("Wrap(Success) = %v, want nil", err)
	}
}

func TestParseCode(t *testing.T) {
	for c := Success; c <= Unsupported; c++ {
		got, ok := ParseCode(c.String())
		if !ok || got != c {
			t.Errorf("ParseCode(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCode("nope"); ok {
		t.Fatalf("ParseCode(nope) ok")
	}
}

package model

import "testing"

func TestVerdict_StringRoundTrip(t *testing.T) {
	for _, v := range []Verdict{VerdictPending, VerdictComplete, VerdictNeedsFallback, VerdictFallbackApplied} {
		parsed, err := ParseVerdict(v.String())
		if err != nil {
			t.Fatalf("ParseVerdict(%q) failed: %v", v.String(), err)
		}
		if parsed != v {
			t.Errorf("Expected %v, got %v", v, parsed)
		}
	}

	if _, err := ParseVerdict("bogus"); err == nil {
		t.Error("Expected error for unknown verdict")
	}
}

func TestVerdict_Transitions(t *testing.T) {
	tests := []struct {
		from, to Verdict
		allowed  bool
	}{
		{VerdictPending, VerdictComplete, true},
		{VerdictPending, VerdictNeedsFallback, true},
		{VerdictPending, VerdictFallbackApplied, false},
		{VerdictNeedsFallback, VerdictFallbackApplied, true},
		{VerdictNeedsFallback, VerdictComplete, false},
		{VerdictComplete, VerdictNeedsFallback, false},
		{VerdictFallbackApplied, VerdictNeedsFallback, false},
		{VerdictFallbackApplied, VerdictFallbackApplied, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Errorf("%v -> %v: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

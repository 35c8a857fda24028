package model

import "fmt"

// Verdict is the trust classification of a page's primary extraction
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictComplete
	VerdictNeedsFallback
	VerdictFallbackApplied
)

// String returns the exchange-format name of the verdict
func (v Verdict) String() string {
	switch v {
	case VerdictPending:
		return "pending"
	case VerdictComplete:
		return "complete"
	case VerdictNeedsFallback:
		return "needs_fallback"
	case VerdictFallbackApplied:
		return "fallback_applied"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ParseVerdict parses an exchange-format verdict name
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "pending", "":
		return VerdictPending, nil
	case "complete":
		return VerdictComplete, nil
	case "needs_fallback":
		return VerdictNeedsFallback, nil
	case "fallback_applied":
		return VerdictFallbackApplied, nil
	default:
		return VerdictPending, fmt.Errorf("unknown verdict %q", s)
	}
}

// CanTransition reports whether a page may move from v to next.
// pending -> complete | needs_fallback, needs_fallback -> fallback_applied.
func (v Verdict) CanTransition(next Verdict) bool {
	switch v {
	case VerdictPending:
		return next == VerdictComplete || next == VerdictNeedsFallback
	case VerdictNeedsFallback:
		return next == VerdictFallbackApplied
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Verdict) UnmarshalText(data []byte) error {
	parsed, err := ParseVerdict(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

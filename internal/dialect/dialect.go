package dialect

import (
	"errors"
	"fmt"
)

// Dialect identifies one of the supported Arabic dialects. Each dialect is
// bound to its own fine-tuned voice model on disk.
type Dialect string

const (
	Egyptian Dialect = "egyptian"
	Emirates Dialect = "emirates"
	KSA      Dialect = "ksa"
	Kuwaiti  Dialect = "kuwaiti"
)

// ErrInvalid is returned when a value outside the closed dialect set is used.
var ErrInvalid = errors.New("invalid dialect")

// All returns the closed set of supported dialects.
func All() []Dialect {
	return []Dialect{Egyptian, Emirates, KSA, Kuwaiti}
}

// Parse validates a raw string against the closed dialect set.
func Parse(s string) (Dialect, error) {
	d := Dialect(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q (must be one of %v)", ErrInvalid, s, All())
	}
	return d, nil
}

// Valid reports whether the dialect belongs to the closed set.
func (d Dialect) Valid() bool {
	switch d {
	case Egyptian, Emirates, KSA, Kuwaiti:
		return true
	}
	return false
}

// String returns the dialect identifier.
func (d Dialect) String() string {
	return string(d)
}

// DisplayName returns the human-readable label with the Arabic name.
func (d Dialect) DisplayName() string {
	switch d {
	case Egyptian:
		return "Egyptian Arabic (مصري)"
	case Emirates:
		return "Emirati Arabic (إماراتي)"
	case KSA:
		return "Saudi Arabic (سعودي)"
	case Kuwaiti:
		return "Kuwaiti Arabic (كويتي)"
	}
	return string(d)
}

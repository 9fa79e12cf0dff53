// Package types defines the timeline data model: rational time values,
// timeline items, tracks, and the timeline itself.
package types

import (
	"fmt"
	"math"
)

// DefaultScale is the default rational time scale (ticks per second)
const DefaultScale int32 = 600

// RationalTime is a timestamp or duration expressed as Value ticks at
// Scale ticks per second. Scale is always > 0.
type RationalTime struct {
	Value int64 `json:"value"`
	Scale int32 `json:"scale"`
}

// NewRationalTime creates a rational time; a non-positive scale falls back to
// DefaultScale.
func NewRationalTime(value int64, scale int32) RationalTime {
	if scale <= 0 {
		scale = DefaultScale
	}
	return RationalTime{Value: value, Scale: scale}
}

// FromSeconds converts a seconds value into a rational time at the given scale
func FromSeconds(seconds float64, scale int32) RationalTime {
	if scale <= 0 {
		scale = DefaultScale
	}
	return RationalTime{Value: int64(math.Round(seconds * float64(scale))), Scale: scale}
}

// Zero returns a zero time at the given scale
func Zero(scale int32) RationalTime {
	return NewRationalTime(0, scale)
}

// Seconds returns the seconds-equivalent of the time
func (t RationalTime) Seconds() float64 {
	if t.Scale <= 0 {
		return 0
	}
	return float64(t.Value) / float64(t.Scale)
}

// RescaledTo returns the same point in time expressed at a different scale
func (t RationalTime) RescaledTo(scale int32) RationalTime {
	if scale <= 0 {
		scale = DefaultScale
	}
	if t.Scale == scale {
		return t
	}
	value := int64(math.Round(float64(t.Value) * float64(scale) / float64(t.Scale)))
	return RationalTime{Value: value, Scale: scale}
}

// Add returns t + other in t's scale
func (t RationalTime) Add(other RationalTime) RationalTime {
	o := other.RescaledTo(t.Scale)
	return RationalTime{Value: t.Value + o.Value, Scale: t.Scale}
}

// Sub returns t - other in t's scale
func (t RationalTime) Sub(other RationalTime) RationalTime {
	o := other.RescaledTo(t.Scale)
	return RationalTime{Value: t.Value - o.Value, Scale: t.Scale}
}

// Cmp returns -1, 0 or 1 depending on whether t is before, equal to, or
// after other.
func (t RationalTime) Cmp(other RationalTime) int {
	lhs := t.Value * int64(other.Scale)
	rhs := other.Value * int64(t.Scale)
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Less reports whether t is strictly before other
func (t RationalTime) Less(other RationalTime) bool {
	return t.Cmp(other) < 0
}

// LessEq reports whether t is before or equal to other
func (t RationalTime) LessEq(other RationalTime) bool {
	return t.Cmp(other) <= 0
}

// Equal reports whether t and other denote the same point in time
func (t RationalTime) Equal(other RationalTime) bool {
	return t.Cmp(other) == 0
}

// IsZero reports whether the time is exactly zero
func (t RationalTime) IsZero() bool {
	return t.Value == 0
}

// IsNegative reports whether the time is below zero
func (t RationalTime) IsNegative() bool {
	return t.Value < 0
}

// MinTime returns the earlier of a and b
func MinTime(a, b RationalTime) RationalTime {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// MaxTime returns the later of a and b
func MaxTime(a, b RationalTime) RationalTime {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func (t RationalTime) String() string {
	return fmt.Sprintf("%d/%d (%.3fs)", t.Value, t.Scale, t.Seconds())
}

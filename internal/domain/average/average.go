// Package average computes weighted averages over graded subjects.
package average

import (
	"encoding/json"
	"math"
)

// tolerance absorbs float noise when comparing averages against goals.
const tolerance = 1e-9

// Average is a weighted average that may be undefined. A student with no
// weighted subject in a context has no average, which is distinct from zero.
type Average struct {
	Value float64
	Valid bool
}

// None is the undefined average.
var None = Average{}

// Of wraps a defined average value.
func Of(v float64) Average {
	return Average{Value: v, Valid: true}
}

// MarshalJSON encodes an undefined average as null.
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON accepts a number or null.
func (a *Average) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Of(v)
	return nil
}

// Weighted returns Σ(grade×coeff)/Σ(coeff) over subjects present in both
// maps. Subjects without a coefficient are excluded rather than zero-weighted.
// The result is None when no subject intersects or the intersecting
// coefficients sum to zero.
func Weighted(grades map[string]float64, coefficients map[string]float64) Average {
	var sum, weight float64
	for subject, grade := range grades {
		c, ok := coefficients[subject]
		if !ok {
			continue
		}
		sum += grade * c
		weight += c
	}
	if weight <= 0 {
		return None
	}
	return Of(sum / weight)
}

// Local pairs a context's average with the global coefficient it carries in
// the combined average.
type Local struct {
	Average           Average
	GlobalCoefficient float64
}

// Global combines local averages weighted by their global coefficients.
// Contexts where the local average is undefined do not contribute.
func Global(locals []Local) Average {
	var sum, weight float64
	for _, l := range locals {
		if !l.Average.Valid {
			continue
		}
		sum += l.Average.Value * l.GlobalCoefficient
		weight += l.GlobalCoefficient
	}
	if weight <= 0 {
		return None
	}
	return Of(sum / weight)
}

// AtLeast reports whether a is defined and reaches goal.
func AtLeast(a Average, goal float64) bool {
	return a.Valid && a.Value >= goal-tolerance
}

// Greater reports whether a ranks strictly above b. Undefined averages rank
// below every defined one.
func Greater(a, b Average) bool {
	switch {
	case !a.Valid:
		return false
	case !b.Valid:
		return true
	default:
		return a.Value > b.Value+tolerance
	}
}

// Equal reports whether two averages are indistinguishable.
func Equal(a, b Average) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || math.Abs(a.Value-b.Value) <= tolerance
}

// Delta returns after minus before, or zero when either is undefined.
func Delta(before, after Average) float64 {
	if !before.Valid || !after.Valid {
		return 0
	}
	return after.Value - before.Value
}

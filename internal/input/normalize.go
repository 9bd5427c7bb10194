package input

import "math"

const rawMax = math.MaxInt16

// DeadZone configures the normalization of one analog input. Samples whose
// magnitude is at or below max(Threshold, Min) read as zero; samples at or
// beyond Max saturate. Values in between are rescaled linearly to (0, 1].
type DeadZone struct {
	Threshold float64 `json:"threshold"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

func (dz DeadZone) edges() (inner, outer float64) {
	inner = math.Max(dz.Threshold, dz.Min)
	outer = dz.Max
	if outer <= inner || outer > 1 {
		outer = 1
	}
	return inner, outer
}

func (dz DeadZone) apply(v float64) float64 {
	inner, outer := dz.edges()
	a := math.Abs(v)
	if a <= inner {
		return 0
	}
	out := 1.0
	if a < outer {
		out = (a - inner) / (outer - inner)
	}
	return math.Copysign(out, v)
}

// rawToUnit maps a raw sample onto [-1, 1]. The extra negative step of the
// int16 range is clamped.
func rawToUnit(raw int16) float64 {
	v := float64(raw) / rawMax
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// Normalize converts a raw axis sample to [-1, 1]. With a nil dz the full
// raw range maps linearly; otherwise dz shapes the result. invert negates
// the final value.
func Normalize(raw int16, dz *DeadZone, invert bool) float64 {
	v := rawToUnit(raw)
	if dz != nil {
		v = dz.apply(v)
	}
	if invert && v != 0 {
		v = -v
	}
	return v
}

// BeyondThreshold reports whether raw is outside the dead zone threshold.
// Without a dead zone every non-zero sample is beyond it.
func BeyondThreshold(raw int16, dz *DeadZone) bool {
	a := math.Abs(rawToUnit(raw))
	if dz == nil {
		return a > 0
	}
	inner, _ := dz.edges()
	return a > inner
}

// NormalizeTrigger converts a trigger sample reported in [rawMin, rawMax]
// into the positive half of the raw range, 0..32767.
func NormalizeTrigger(raw, rawMin, rawMax int16) int16 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int16(math.Round(v * float64(math.MaxInt16)))
}

package input

import "math"

// HatDescriptor declares four buttons acting as a digital stick. Unused
// directions are Unbound.
type HatDescriptor struct {
	Name  string
	Up    NativeButton
	Right NativeButton
	Down  NativeButton
	Left  NativeButton
}

var diagonal = 1 / math.Sqrt2

// HatVector returns the 8-way direction for four digital inputs. Opposing
// inputs cancel on their axis; diagonals have unit length.
func HatVector(up, down, left, right bool) Vec2 {
	var v Vec2
	if right {
		v.X++
	}
	if left {
		v.X--
	}
	if up {
		v.Y++
	}
	if down {
		v.Y--
	}
	if v.X != 0 && v.Y != 0 {
		v.X *= diagonal
		v.Y *= diagonal
	}
	return v
}

// EmulateHats scans hats in order, assigning hat i the analog id offset+i.
// A hat with a net direction, or one that was active on the previous scan,
// emits its current direction and records whether it is still active.
// Idle hats that were idle before are skipped. active must be at least as
// long as hats.
func EmulateHats[A ~int](hats []HatDescriptor, active []bool, offset A, get func(NativeButton) bool, emit func(A, Vec2)) {
	pressed := func(b NativeButton) bool {
		return b != Unbound && get(b)
	}

	id := offset
	for i, h := range hats {
		up, right := pressed(h.Up), pressed(h.Right)
		down, left := pressed(h.Down), pressed(h.Left)
		now := up != down || left != right

		if now || active[i] {
			emit(id, HatVector(up, down, left, right))
			active[i] = now
		}
		id++
	}
}

// dpadHat is the built-in gamepad D-pad, emitted as GamepadAnalogDPad.
var dpadHat = []HatDescriptor{{
	Name:  "dpad",
	Up:    GamepadDPadUp,
	Right: GamepadDPadRight,
	Down:  GamepadDPadDown,
	Left:  GamepadDPadLeft,
}}

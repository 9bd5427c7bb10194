package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Axis selects one component of an analog value.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// AxisMask is a non-empty set of axes. The zero AxisMask selects X.
type AxisMask struct {
	bits uint8
}

// MaskOf returns the mask holding axes; with no axes it selects X.
func MaskOf(axes ...Axis) AxisMask {
	var m AxisMask
	for _, a := range axes {
		if a <= AxisZ {
			m.bits |= 1 << a
		}
	}
	return m
}

func (m AxisMask) effective() uint8 {
	if m.bits == 0 {
		return 1 << AxisX
	}
	return m.bits
}

// Has reports whether a is in the mask.
func (m AxisMask) Has(a Axis) bool {
	return m.effective()&(1<<a) != 0
}

// First returns the highest-priority axis in the mask, X before Y before Z.
func (m AxisMask) First() Axis {
	b := m.effective()
	for a := AxisX; a <= AxisZ; a++ {
		if b&(1<<a) != 0 {
			return a
		}
	}
	return AxisX
}

func (m AxisMask) String() string {
	var sb strings.Builder
	for a, c := range "xyz" {
		if m.Has(Axis(a)) {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Comparison is how a virtual button compares its axis to the threshold.
type Comparison int

const (
	// Both is a magnitude test: |v| >= |threshold|.
	Both Comparison = iota
	Greater
	Lesser
)

func (c Comparison) String() string {
	switch c {
	case Greater:
		return ">"
	case Lesser:
		return "<"
	default:
		return ""
	}
}

// VirtualButton turns an analog value into an engine button.
type VirtualButton struct {
	Target    EngineButton
	Axes      AxisMask
	Compare   Comparison
	Threshold float64
}

// IsDown evaluates rule against v. Only the first axis of the mask is
// tested.
func IsDown(v Vec3, rule VirtualButton) bool {
	var a float64
	switch rule.Axes.First() {
	case AxisX:
		a = v.X
	case AxisY:
		a = v.Y
	case AxisZ:
		a = v.Z
	}
	switch rule.Compare {
	case Greater:
		return a >= rule.Threshold
	case Lesser:
		return a <= rule.Threshold
	default:
		return math.Abs(a) >= math.Abs(rule.Threshold)
	}
}

// DefaultVirtualThreshold applies when an expression omits its threshold.
const DefaultVirtualThreshold = 0.5

// VirtualExpr is a parsed virtual-button expression, before its analog
// name is resolved against a device kind.
type VirtualExpr struct {
	Name      string
	Axes      AxisMask
	Compare   Comparison
	Threshold float64
}

func (e VirtualExpr) String() string {
	s := e.Name + "." + e.Axes.String()
	if e.Compare != Both {
		s += e.Compare.String() + strconv.FormatFloat(e.Threshold, 'g', -1, 64)
	}
	return s
}

// ErrVirtualSyntax is wrapped by every ParseVirtualButton failure.
var ErrVirtualSyntax = errors.New("invalid virtual button expression")

func isNameChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ParseVirtualButton parses <name>[.<axes>][<cmp><threshold>], where axes
// are letters from xyz (any case, optionally '|'-separated), cmp is '<' or
// '>', and threshold is a decimal with an optional sign.
func ParseVirtualButton(s string) (VirtualExpr, error) {
	s = strings.TrimSpace(s)
	expr := VirtualExpr{Compare: Both, Threshold: DefaultVirtualThreshold}

	i := 0
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	if i == 0 {
		return expr, fmt.Errorf("%w %q: missing analog name", ErrVirtualSyntax, s)
	}
	expr.Name = s[:i]
	rest := s[i:]

	if strings.HasPrefix(rest, ".") {
		var axes []Axis
		j := 1
	letters:
		for ; j < len(rest); j++ {
			switch rest[j] {
			case 'x', 'X':
				axes = append(axes, AxisX)
			case 'y', 'Y':
				axes = append(axes, AxisY)
			case 'z', 'Z':
				axes = append(axes, AxisZ)
			case '|':
			default:
				break letters
			}
		}
		if len(axes) == 0 {
			return expr, fmt.Errorf("%w %q: empty axis list", ErrVirtualSyntax, s)
		}
		expr.Axes = MaskOf(axes...)
		rest = rest[j:]
	}

	if rest != "" && (rest[0] == '<' || rest[0] == '>') {
		if rest[0] == '>' {
			expr.Compare = Greater
		} else {
			expr.Compare = Lesser
		}
		num := rest[1:]
		rest = ""
		if num != "" {
			if !isThreshold(num) {
				return expr, fmt.Errorf("%w %q: bad threshold %q", ErrVirtualSyntax, s, num)
			}
			t, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return expr, fmt.Errorf("%w %q: %v", ErrVirtualSyntax, s, err)
			}
			expr.Threshold = t
		}
	}

	if rest != "" {
		return expr, fmt.Errorf("%w %q: unexpected %q", ErrVirtualSyntax, s, rest)
	}
	return expr, nil
}

// isThreshold matches [+-]?[0-9.]+ with at least one digit.
func isThreshold(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	digits := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
		default:
			return false
		}
	}
	return digits > 0
}

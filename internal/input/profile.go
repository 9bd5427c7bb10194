package input

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/soar/padmux/internal/config"
)

// EngineButton is an engine-side button id: an index into Context.Buttons.
type EngineButton int

// EngineAnalog is an engine-side analog id: an index into Context.Analogs.
type EngineAnalog int

const (
	NoEngineButton EngineButton = -1
	NoEngineAnalog EngineAnalog = -1
)

// Context lists the engine identifiers profiles may map onto.
type Context struct {
	Buttons []string
	Analogs []string
}

// DefaultContext is used when the configuration declares no engine names.
func DefaultContext() Context {
	return Context{
		Buttons: []string{
			"confirm", "cancel", "jump", "fire", "interact", "menu", "pause",
			"up", "right", "down", "left",
			"shoulder_left", "shoulder_right", "stick_left", "stick_right",
		},
		Analogs: []string{
			"move", "look", "trigger_left", "trigger_right", "dpad", "pointer", "motion", "scroll",
		},
	}
}

// ContextFrom builds a Context from the document, falling back to the
// defaults for empty lists.
func ContextFrom(n config.EngineNode) Context {
	ctx := DefaultContext()
	if len(n.Buttons) > 0 {
		ctx.Buttons = slices.Clone(n.Buttons)
	}
	if len(n.Analogs) > 0 {
		ctx.Analogs = slices.Clone(n.Analogs)
	}
	return ctx
}

func (c Context) button(name string) (EngineButton, bool) {
	i := slices.Index(c.Buttons, strings.TrimSpace(name))
	return EngineButton(i), i >= 0
}

func (c Context) analog(name string) (EngineAnalog, bool) {
	i := slices.Index(c.Analogs, strings.TrimSpace(name))
	return EngineAnalog(i), i >= 0
}

// ButtonName returns the engine name of b.
func (c Context) ButtonName(b EngineButton) string {
	if b < 0 || int(b) >= len(c.Buttons) {
		return ""
	}
	return c.Buttons[b]
}

// AnalogName returns the engine name of a.
func (c Context) AnalogName(a EngineAnalog) string {
	if a < 0 || int(a) >= len(c.Analogs) {
		return ""
	}
	return c.Analogs[a]
}

// Profile is the remapping for one device kind. It is read-only once
// loaded.
type Profile struct {
	Name      string
	Kind      DeviceKind
	Buttons   map[NativeButton]EngineButton
	Analogs   map[NativeAnalog]EngineAnalog
	DeadZones map[NativeAnalog]DeadZone
	Virtual   map[NativeAnalog][]VirtualButton
	Hats      []HatDescriptor
}

// NewProfile returns an empty profile.
func NewProfile(name string, kind DeviceKind) *Profile {
	return &Profile{
		Name:      name,
		Kind:      kind,
		Buttons:   make(map[NativeButton]EngineButton),
		Analogs:   make(map[NativeAnalog]EngineAnalog),
		DeadZones: make(map[NativeAnalog]DeadZone),
		Virtual:   make(map[NativeAnalog][]VirtualButton),
	}
}

// Button returns the engine button for a native button.
func (p *Profile) Button(b NativeButton) EngineButton {
	if p == nil {
		return NoEngineButton
	}
	if e, ok := p.Buttons[b]; ok {
		return e
	}
	return NoEngineButton
}

// Analog returns the engine analog for a native analog.
func (p *Profile) Analog(a NativeAnalog) EngineAnalog {
	if p == nil {
		return NoEngineAnalog
	}
	if e, ok := p.Analogs[a]; ok {
		return e
	}
	return NoEngineAnalog
}

// DeadZone returns the dead zone configured for a, or nil.
func (p *Profile) DeadZone(a NativeAnalog) *DeadZone {
	if p == nil {
		return nil
	}
	if dz, ok := p.DeadZones[a]; ok {
		return &dz
	}
	return nil
}

func (p *Profile) hats() []HatDescriptor {
	if p == nil {
		return nil
	}
	return p.Hats
}

// HatAnalog returns the analog id of the named hat.
func (p *Profile) HatAnalog(name string) (NativeAnalog, bool) {
	if p == nil {
		return 0, false
	}
	for i, h := range p.Hats {
		if strings.EqualFold(h.Name, name) {
			return runtimeOffset(p.Kind) + NativeAnalog(i), true
		}
	}
	return 0, false
}

// ProfileRef is a handle to a profile in a ProfileSet.
type ProfileRef int

// NoProfile is the handle of an absent profile.
const NoProfile ProfileRef = -1

type profileKey struct {
	kind DeviceKind
	name string
}

// ProfileSet owns every loaded profile.
type ProfileSet struct {
	profiles []*Profile
	byName   map[profileKey]ProfileRef
}

// NewProfileSet returns an empty set.
func NewProfileSet() *ProfileSet {
	return &ProfileSet{byName: make(map[profileKey]ProfileRef)}
}

// Add stores p and returns its handle. A profile with the same kind and
// name is replaced.
func (s *ProfileSet) Add(p *Profile) ProfileRef {
	key := profileKey{p.Kind, p.Name}
	if ref, ok := s.byName[key]; ok {
		s.profiles[ref] = p
		return ref
	}
	ref := ProfileRef(len(s.profiles))
	s.profiles = append(s.profiles, p)
	s.byName[key] = ref
	return ref
}

// Lookup returns the handle of the named profile for kind.
func (s *ProfileSet) Lookup(kind DeviceKind, name string) ProfileRef {
	if s == nil {
		return NoProfile
	}
	if ref, ok := s.byName[profileKey{kind, name}]; ok {
		return ref
	}
	return NoProfile
}

// Get returns the profile behind ref, or nil.
func (s *ProfileSet) Get(ref ProfileRef) *Profile {
	if s == nil || ref < 0 || int(ref) >= len(s.profiles) {
		return nil
	}
	return s.profiles[ref]
}

// Len returns the number of profiles.
func (s *ProfileSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.profiles)
}

// Assignments are the device bindings found next to the profiles: device
// name to profile name per kind, and device name to player index.
type Assignments struct {
	Gamepads  map[string]string
	Mice      map[string]string
	Keyboards map[string]string
	Players   map[string]int
}

// AnyDevice is the binding name matching every device of a kind.
const AnyDevice = "*"

// resolveBinding returns the profile name bound to device, preferring an
// exact match over the wildcard.
func resolveBinding(bindings map[string]string, device string) (string, bool) {
	if name, ok := bindings[device]; ok {
		return name, true
	}
	name, ok := bindings[AnyDevice]
	return name, ok
}

// Player returns the player index bound to device, or 0.
func (a Assignments) Player(device string) int {
	return a.Players[device]
}

// Configuration errors.
var (
	ErrUnknownKind         = errors.New("unknown device kind")
	ErrUnknownButton       = errors.New("unknown button")
	ErrUnknownAnalog       = errors.New("unknown analog")
	ErrUnknownEngineButton = errors.New("unknown engine button")
	ErrUnknownEngineAnalog = errors.New("unknown engine analog")
	ErrBadVirtualButton    = errors.New("bad virtual button")
	ErrUnknownProfile      = errors.New("unknown profile")
	ErrDuplicateProfile    = errors.New("duplicate profile")
)

// ProfileError reports one configuration failure.
type ProfileError struct {
	Profile string
	Field   string
	Name    string
	Err     error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile %q: %s %q: %v", e.Profile, e.Field, e.Name, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

// LoadProfiles builds every profile in doc and collects the device
// bindings. Profiles that fail are left out; all failures are returned
// joined, together with whatever did load.
func LoadProfiles(doc config.Document, ctx Context) (*ProfileSet, Assignments, error) {
	set := NewProfileSet()
	var errs []error

	for _, node := range doc.Profiles {
		p, perrs := loadProfile(node, ctx)
		if len(perrs) > 0 {
			errs = append(errs, perrs...)
			continue
		}
		if set.Lookup(p.Kind, p.Name) != NoProfile {
			errs = append(errs, &ProfileError{Profile: p.Name, Field: "name", Name: p.Name, Err: ErrDuplicateProfile})
			continue
		}
		set.Add(p)
	}

	a := Assignments{
		Gamepads:  make(map[string]string),
		Mice:      make(map[string]string),
		Keyboards: make(map[string]string),
		Players:   make(map[string]int),
	}
	bind := func(kind DeviceKind, field string, nodes []config.BindingNode, dst map[string]string) {
		for _, b := range nodes {
			if set.Lookup(kind, b.Profile) == NoProfile {
				errs = append(errs, &ProfileError{Profile: b.Profile, Field: field, Name: b.Device, Err: ErrUnknownProfile})
				continue
			}
			dst[b.Device] = b.Profile
		}
	}
	bind(KindGamepad, "gamepads", doc.Gamepads, a.Gamepads)
	bind(KindMouse, "mice", doc.Mice, a.Mice)
	bind(KindKeyboard, "keyboards", doc.Keyboards, a.Keyboards)
	for _, pl := range doc.Players {
		a.Players[pl.Device] = pl.Index
	}

	return set, a, errors.Join(errs...)
}

func loadProfile(node config.ProfileNode, ctx Context) (*Profile, []error) {
	var errs []error
	fail := func(field, name string, err error) {
		errs = append(errs, &ProfileError{Profile: node.Name, Field: field, Name: name, Err: err})
	}

	kind, ok := ParseDeviceKind(node.Kind)
	if !ok {
		fail("kind", node.Kind, ErrUnknownKind)
		return nil, errs
	}
	p := NewProfile(node.Name, kind)

	button := func(field, name string) NativeButton {
		if strings.TrimSpace(name) == "" {
			return Unbound
		}
		b, ok := LookupButton(kind, name)
		if !ok {
			fail(field, name, ErrUnknownButton)
			return Unbound
		}
		return b
	}
	for i, h := range node.Hats {
		name := h.Name
		if name == "" {
			name = fmt.Sprintf("hat%d", i)
		}
		p.Hats = append(p.Hats, HatDescriptor{
			Name:  name,
			Up:    button("hats", h.Up),
			Right: button("hats", h.Right),
			Down:  button("hats", h.Down),
			Left:  button("hats", h.Left),
		})
	}

	analog := func(name string) (NativeAnalog, bool) {
		if a, ok := LookupAnalog(kind, name); ok {
			return a, true
		}
		return p.HatAnalog(name)
	}

	for _, key := range slices.Sorted(maps.Keys(node.Buttons)) {
		target := node.Buttons[key]
		eb, ok := ctx.button(target)
		if !ok {
			fail("buttons", target, ErrUnknownEngineButton)
			continue
		}
		if b, ok := LookupButton(kind, key); ok {
			p.Buttons[b] = eb
			continue
		}
		if !strings.ContainsAny(key, ".<>") {
			if _, ok := analog(key); !ok {
				fail("buttons", key, ErrUnknownButton)
				continue
			}
		}
		expr, err := ParseVirtualButton(key)
		if err != nil {
			fail("buttons", key, fmt.Errorf("%w: %w", ErrBadVirtualButton, err))
			continue
		}
		a, ok := analog(expr.Name)
		if !ok {
			fail("buttons", expr.Name, ErrUnknownAnalog)
			continue
		}
		p.Virtual[a] = append(p.Virtual[a], VirtualButton{
			Target:    eb,
			Axes:      expr.Axes,
			Compare:   expr.Compare,
			Threshold: expr.Threshold,
		})
	}

	for _, key := range slices.Sorted(maps.Keys(node.Analogs)) {
		target := node.Analogs[key]
		a, ok := analog(key)
		if !ok {
			fail("analogs", key, ErrUnknownAnalog)
			continue
		}
		ea, ok := ctx.analog(target)
		if !ok {
			fail("analogs", target, ErrUnknownEngineAnalog)
			continue
		}
		p.Analogs[a] = ea
	}

	for _, key := range slices.Sorted(maps.Keys(node.Deadzones)) {
		dz := node.Deadzones[key]
		a, ok := analog(key)
		if !ok {
			fail("deadzones", key, ErrUnknownAnalog)
			continue
		}
		if dz.Max == 0 {
			dz.Max = 1
		}
		p.DeadZones[a] = DeadZone{Threshold: dz.Threshold, Min: dz.Min, Max: dz.Max}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

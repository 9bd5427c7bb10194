package config

// Document is the input section of the configuration file.
type Document struct {
	Engine    EngineNode    `mapstructure:"engine" yaml:"engine"`
	Profiles  []ProfileNode `mapstructure:"profiles" yaml:"profiles"`
	Gamepads  []BindingNode `mapstructure:"gamepads" yaml:"gamepads"`
	Mice      []BindingNode `mapstructure:"mice" yaml:"mice"`
	Keyboards []BindingNode `mapstructure:"keyboards" yaml:"keyboards"`
	Players   []PlayerNode  `mapstructure:"players" yaml:"players"`
}

// EngineNode lists the engine-side button and analog names profiles may
// map onto. Empty lists fall back to the built-in set.
type EngineNode struct {
	Buttons []string `mapstructure:"buttons" yaml:"buttons,omitempty"`
	Analogs []string `mapstructure:"analogs" yaml:"analogs,omitempty"`
}

// ProfileNode is one named profile.
//
// Buttons maps a native button name, or a virtual-button expression, to an
// engine button. Analogs maps a native analog or hat name to an engine
// analog.
type ProfileNode struct {
	Name      string                  `mapstructure:"name" yaml:"name"`
	Kind      string                  `mapstructure:"kind" yaml:"kind"`
	Buttons   map[string]string       `mapstructure:"buttons" yaml:"buttons,omitempty"`
	Analogs   map[string]string       `mapstructure:"analogs" yaml:"analogs,omitempty"`
	Deadzones map[string]DeadZoneNode `mapstructure:"deadzones" yaml:"deadzones,omitempty"`
	Hats      []HatNode               `mapstructure:"hats" yaml:"hats,omitempty"`
}

// DeadZoneNode configures one analog. A zero Max means 1.
type DeadZoneNode struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	Min       float64 `mapstructure:"min" yaml:"min,omitempty"`
	Max       float64 `mapstructure:"max" yaml:"max,omitempty"`
}

// HatNode declares four buttons acting as a digital stick.
type HatNode struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Up    string `mapstructure:"up" yaml:"up,omitempty"`
	Right string `mapstructure:"right" yaml:"right,omitempty"`
	Down  string `mapstructure:"down" yaml:"down,omitempty"`
	Left  string `mapstructure:"left" yaml:"left,omitempty"`
}

// BindingNode binds a platform device name to a profile. The device name
// "*" matches any device of the kind.
type BindingNode struct {
	Device  string `mapstructure:"device" yaml:"device"`
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// PlayerNode binds a platform device name to a player index.
type PlayerNode struct {
	Device string `mapstructure:"device" yaml:"device"`
	Index  int    `mapstructure:"index" yaml:"index"`
}

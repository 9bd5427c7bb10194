package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type sampleFile struct {
	Listen    string `yaml:"listen"`
	FrameRate int    `yaml:"frame_rate"`
	LogLevel  string `yaml:"log_level"`
	Document  `yaml:",inline"`
}

// Sample returns the document written by WriteSample.
func Sample() Document {
	return Document{
		Engine: EngineNode{
			Buttons: []string{
				"confirm", "cancel", "jump", "fire", "interact", "menu", "pause",
				"up", "right", "down", "left",
				"shoulder_left", "shoulder_right", "stick_left", "stick_right",
			},
			Analogs: []string{"move", "look", "trigger_left", "trigger_right", "dpad", "pointer", "motion", "scroll"},
		},
		Profiles: []ProfileNode{
			{
				Name: "gamepad",
				Kind: "gamepad",
				Buttons: map[string]string{
					"a":                   "jump",
					"b":                   "cancel",
					"x":                   "interact",
					"y":                   "confirm",
					"start":               "pause",
					"back":                "menu",
					"left_shoulder":       "shoulder_left",
					"right_shoulder":      "shoulder_right",
					"right_trigger.x>0.5": "fire",
					"dpad.y>0.5":          "up",
					"dpad.y<-0.5":         "down",
					"dpad.x<-0.5":         "left",
					"dpad.x>0.5":          "right",
				},
				Analogs: map[string]string{
					"left_stick":    "move",
					"right_stick":   "look",
					"left_trigger":  "trigger_left",
					"right_trigger": "trigger_right",
					"dpad":          "dpad",
				},
				Deadzones: map[string]DeadZoneNode{
					"left_stick":  {Threshold: 0.15, Max: 0.95},
					"right_stick": {Threshold: 0.15, Max: 0.95},
				},
			},
			{
				Name: "mouse",
				Kind: "mouse",
				Buttons: map[string]string{
					"left":  "fire",
					"right": "interact",
				},
				Analogs: map[string]string{
					"position": "pointer",
					"motion":   "motion",
					"wheel":    "scroll",
				},
			},
			{
				Name: "keyboard",
				Kind: "keyboard",
				Buttons: map[string]string{
					"space":  "jump",
					"enter":  "confirm",
					"escape": "pause",
					"e":      "interact",
				},
				Analogs: map[string]string{
					"walk":   "move",
					"arrows": "dpad",
				},
				Hats: []HatNode{
					{Name: "walk", Up: "w", Right: "d", Down: "s", Left: "a"},
					{Name: "arrows", Up: "up", Right: "right", Down: "down", Left: "left"},
				},
			},
		},
		Gamepads:  []BindingNode{{Device: "*", Profile: "gamepad"}},
		Mice:      []BindingNode{{Device: "*", Profile: "mouse"}},
		Keyboards: []BindingNode{{Device: "*", Profile: "keyboard"}},
		Players:   []PlayerNode{{Device: "remote keyboard", Index: 1}, {Device: "remote mouse", Index: 1}},
	}
}

// EncodeSample writes the sample configuration as YAML.
func EncodeSample(w io.Writer) error {
	d := Default()
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sampleFile{
		Listen:    d.Listen,
		FrameRate: d.FrameRate,
		LogLevel:  d.LogLevel,
		Document:  Sample(),
	}); err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}
	return enc.Close()
}

// WriteSample creates path with the sample configuration. It refuses to
// replace an existing file.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("write sample: %s already exists", path)
		}
		return err
	}
	if err := EncodeSample(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

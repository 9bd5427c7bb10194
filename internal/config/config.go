// Package config loads padmux settings and input profiles.
//
// Values come from command line flags, PADMUX_* environment variables and
// an optional padmux.{yaml,yml,json,toml} file, in that order of
// precedence. The key delimiter is "::" so that virtual-button expressions
// such as "left_stick.x>0.5" survive as map keys.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "PADMUX"
	FileName  = "padmux"
	Delimiter = "::"
)

// Settings are the process options.
type Settings struct {
	Listen       string `mapstructure:"listen"`
	FrameRate    int    `mapstructure:"frame_rate"`
	LogLevel     string `mapstructure:"log_level"`
	LogFile      string `mapstructure:"log_file"`
	Tray         bool   `mapstructure:"tray"`
	Strict       bool   `mapstructure:"strict"`
	PushGamepad  bool   `mapstructure:"push_gamepad"`
	PushMouse    bool   `mapstructure:"push_mouse"`
	PushKeyboard bool   `mapstructure:"push_keyboard"`
	Continuous   bool   `mapstructure:"continuous"`
}

// Config is everything read from one load.
type Config struct {
	Settings `mapstructure:",squash"`
	Document `mapstructure:",squash"`

	// File is the configuration file used, or "" when none was found.
	File string `mapstructure:"-"`
}

// Default returns the settings used when nothing overrides them.
func Default() Settings {
	return Settings{
		Listen:    ":8080",
		FrameRate: 60,
		LogLevel:  "info",
	}
}

// ErrFrameRate reports a frame rate outside 1..1000.
var ErrFrameRate = errors.New("frame rate must be between 1 and 1000")

// Validate checks the settings.
func (s Settings) Validate() error {
	if s.FrameRate < 1 || s.FrameRate > 1000 {
		return fmt.Errorf("%w: %d", ErrFrameRate, s.FrameRate)
	}
	return nil
}

// FrameInterval returns the duration of one frame.
func (s Settings) FrameInterval() time.Duration {
	return time.Second / time.Duration(max(s.FrameRate, 1))
}

// Flags registers the command line flags on fs.
func Flags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("config", "c", "", "configuration file (default: padmux.yaml in . or the user config dir)")
	fs.String("init-config", "", "write a sample configuration to this path and exit")
	fs.String("listen", d.Listen, "monitor listen address")
	fs.Int("frame-rate", d.FrameRate, "input polls per second")
	fs.String("log-level", d.LogLevel, "trace, debug, info, warn or error")
	fs.String("log-file", "", "also write logs to this file")
	fs.Bool("tray", false, "show a system tray icon")
	fs.Bool("strict", false, "exit when profiles fail to load")
	fs.Bool("push-gamepad", false, "drive gamepads from platform events instead of polling")
	fs.Bool("push-mouse", false, "drive the mouse from platform events instead of polling")
	fs.Bool("push-keyboard", false, "drive the keyboard from platform events instead of polling")
	fs.Bool("continuous", false, "emit held events every frame while a button is down")
}

// Loader reads the configuration and watches it for changes.
type Loader struct {
	mu  sync.Mutex
	v   *viper.Viper
	log *slog.Logger
}

// NewLoader prepares a loader over the parsed flag set.
func NewLoader(fs *pflag.FlagSet, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v := viper.NewWithOptions(viper.KeyDelimiter(Delimiter))

	d := Default()
	v.SetDefault("listen", d.Listen)
	v.SetDefault("frame_rate", d.FrameRate)
	v.SetDefault("log_level", d.LogLevel)

	if fs != nil {
		for _, key := range []string{
			"listen", "frame_rate", "log_level", "log_file", "tray", "strict",
			"push_gamepad", "push_mouse", "push_keyboard", "continuous",
		} {
			flag := fs.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(Delimiter, "_", "-", "_"))
	v.AutomaticEnv()

	file := ""
	if fs != nil {
		file, _ = fs.GetString("config")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := UserDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	return &Loader{v: v, log: logger.With("component", "config")}, nil
}

// UserDir returns the per-user configuration directory.
func UserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the configuration file, if any, and decodes everything. A
// missing file is not an error when none was named explicitly.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		l.log.Debug("no configuration file found")
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = l.v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watch reloads the configuration whenever its file changes and passes the
// result to fn. Bursts of file events within debounce produce one reload.
// It does nothing when no file was loaded.
func (l *Loader) Watch(debounce time.Duration, fn func(*Config, error)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	var (
		tmu   sync.Mutex
		timer *time.Timer
	)
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.log.Debug("config file changed", "file", e.Name, "op", e.Op.String())
		tmu.Lock()
		defer tmu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			fn(l.Reload())
		})
	})
	l.v.WatchConfig()
	l.log.Info("watching config", "file", l.v.ConfigFileUsed())
	return true
}

// Reload re-reads the file in use and decodes it.
func (l *Loader) Reload() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reload config: %w", err)
	}
	return l.decode()
}

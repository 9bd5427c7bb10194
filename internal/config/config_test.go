package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soar/padmux/internal/config"
	"github.com/soar/padmux/internal/input"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("padmux", pflag.ContinueOnError)
	config.Flags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func load(t *testing.T, args ...string) *config.Config {
	t.Helper()
	l, err := config.NewLoader(newFlags(t, args...), nil)
	require.NoError(t, err)
	cfg, err := l.Load()
	require.NoError(t, err)
	return cfg
}

const profileYAML = `
frame_rate: 30
profiles:
  - name: pad
    kind: gamepad
    buttons:
      a: jump
      "right_trigger.x>0.6": fire
    analogs:
      left_stick: move
    deadzones:
      left_stick: {threshold: 0.2}
gamepads:
  - {device: "Xbox Wireless Controller", profile: pad}
players:
  - {device: "Xbox Wireless Controller", index: 2}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := load(t)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 60, cfg.FrameRate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.File)
	assert.Equal(t, time.Second/60, cfg.FrameInterval())
}

func TestLoadFileKeepsDottedKeys(t *testing.T) {
	path := writeFile(t, "padmux.yaml", profileYAML)
	cfg := load(t, "--config", path)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 30, cfg.FrameRate)
	require.Len(t, cfg.Profiles, 1)
	p := cfg.Profiles[0]
	assert.Equal(t, "fire", p.Buttons["right_trigger.x>0.6"])
	assert.Equal(t, 0.2, p.Deadzones["left_stick"].Threshold)
	assert.Equal(t, []config.BindingNode{{Device: "Xbox Wireless Controller", Profile: "pad"}}, cfg.Gamepads)
	assert.Equal(t, 2, cfg.Players[0].Index)
}

func TestPrecedence(t *testing.T) {
	path := writeFile(t, "padmux.yaml", profileYAML)
	t.Setenv("PADMUX_LISTEN", ":9000")

	cfg := load(t, "--config", path)
	assert.Equal(t, ":9000", cfg.Listen, "env beats default")
	assert.Equal(t, 30, cfg.FrameRate, "file beats default")

	cfg = load(t, "--config", path, "--frame-rate", "120", "--push-mouse")
	assert.Equal(t, 120, cfg.FrameRate, "flag beats file")
	assert.True(t, cfg.PushMouse)
}

func TestMissingExplicitFile(t *testing.T) {
	l, err := config.NewLoader(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")), nil)
	require.NoError(t, err)
	_, err = l.Load()
	assert.Error(t, err)
}

func TestInvalidFrameRate(t *testing.T) {
	l, err := config.NewLoader(newFlags(t, "--frame-rate", "0"), nil)
	require.NoError(t, err)
	_, err = l.Load()
	assert.ErrorIs(t, err, config.ErrFrameRate)
}

func TestSampleLoadsCleanly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "padmux.yaml")
	require.NoError(t, config.WriteSample(path))
	assert.Error(t, config.WriteSample(path), "existing files are kept")

	cfg := load(t, "--config", path)
	want := config.Sample()
	require.Len(t, cfg.Profiles, len(want.Profiles))
	assert.Equal(t, want.Profiles[0].Buttons, cfg.Profiles[0].Buttons)
	assert.Equal(t, want.Profiles[2].Hats, cfg.Profiles[2].Hats)
	assert.Equal(t, want.Players, cfg.Players)

	set, a, err := input.LoadProfiles(cfg.Document, input.ContextFrom(cfg.Engine))
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, "keyboard", a.Keyboards[input.AnyDevice])
}

func TestEncodeSample(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, config.EncodeSample(&buf))
	assert.Contains(t, buf.String(), "right_trigger.x>0.5: fire")
	assert.Contains(t, buf.String(), "frame_rate: 60")
}

func TestWatchReloads(t *testing.T) {
	path := writeFile(t, "padmux.yaml", profileYAML)
	l, err := config.NewLoader(newFlags(t, "--config", path), nil)
	require.NoError(t, err)
	_, err = l.Load()
	require.NoError(t, err)

	got := make(chan *config.Config, 4)
	require.True(t, l.Watch(20*time.Millisecond, func(cfg *config.Config, err error) {
		if err == nil {
			got <- cfg
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("frame_rate: 90\n"), 0o644))
	select {
	case cfg := <-got:
		assert.Equal(t, 90, cfg.FrameRate)
		assert.Empty(t, cfg.Profiles)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}
}

func TestWatchWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	l, err := config.NewLoader(newFlags(t), nil)
	require.NoError(t, err)
	_, err = l.Load()
	require.NoError(t, err)
	assert.False(t, l.Watch(config.DefaultDebounce, func(*config.Config, error) {}))
}

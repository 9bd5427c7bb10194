package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorURL(t *testing.T) {
	type testCase struct {
		listen string
		want   string
	}
	cases := []testCase{
		{":8080", "http://localhost:8080/"},
		{"0.0.0.0:9000", "http://localhost:9000/"},
		{"[::]:9000", "http://localhost:9000/"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080/"},
		{"[::1]:8080", "http://[::1]:8080/"},
		{"pad.local", "http://pad.local/"},
	}
	for _, c := range cases {
		t.Run(c.listen, func(t *testing.T) {
			assert.Equal(t, c.want, monitorURL(c.listen))
		})
	}
}

func TestRunInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padmux.yaml")
	require.NoError(t, run([]string{"--init-config", path}))
	assert.FileExists(t, path)

	assert.Error(t, run([]string{"--init-config", path}), "existing file is kept")
}

func TestRunFlags(t *testing.T) {
	assert.NoError(t, run([]string{"--help"}))
	assert.Error(t, run([]string{"--no-such-flag"}))
}

func TestFrontendEmbedded(t *testing.T) {
	fsys, err := frontendFS()
	require.NoError(t, err)
	f, err := fsys.Open("index.html")
	require.NoError(t, err)
	f.Close()
}

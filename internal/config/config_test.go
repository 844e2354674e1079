package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTrimsBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing slash", "http://host:8000/api/", "http://host:8000/api"},
		{"surrounding space", "  http://host:8000/api  ", "http://host:8000/api"},
		{"already clean", "http://host:8000/api", "http://host:8000/api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{BaseURL: tt.in, StateDir: t.TempDir()}
			c.Sanitize()
			assert.Equal(t, tt.want, c.BaseURL)
		})
	}
}

func TestSanitizeClampsIntervals(t *testing.T) {
	c := Config{StateDir: t.TempDir(), PollInterval: time.Second, Timeout: -1}
	c.Sanitize()
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Equal(t, 15*time.Second, c.Timeout)

	c = Config{StateDir: t.TempDir(), PollInterval: time.Minute, Timeout: 3 * time.Second}
	c.Sanitize()
	assert.Equal(t, time.Minute, c.PollInterval)
	assert.Equal(t, 3*time.Second, c.Timeout)
}

func TestSanitizeDefaultsStateDir(t *testing.T) {
	c := Config{}
	c.Sanitize()
	assert.NotEmpty(t, c.StateDir)
	assert.Equal(t, ".nconnect", filepath.Base(c.StateDir))
}

func TestLogPathUnderStateDir(t *testing.T) {
	c := Config{StateDir: "/tmp/nc"}
	assert.Equal(t, filepath.Join("/tmp/nc", "nconnect.log"), c.LogPath())
}

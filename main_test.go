package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zsprackett/usagetray/internal/config"
)

func TestChooseSurface(t *testing.T) {
	tests := []struct {
		name     string
		want     config.Surface
		env      env
		expected config.Surface
	}{
		{"explicit tray", config.SurfaceTray, env{goos: "linux", isTerminal: true}, config.SurfaceTray},
		{"explicit terminal", config.SurfaceTerminal, env{goos: "darwin"}, config.SurfaceTerminal},
		{"auto macos", config.SurfaceAuto, env{goos: "darwin", isTerminal: true}, config.SurfaceTray},
		{"auto windows", config.SurfaceAuto, env{goos: "windows"}, config.SurfaceTray},
		{"auto linux desktop", config.SurfaceAuto, env{goos: "linux", display: true, isTerminal: true}, config.SurfaceTray},
		{"auto linux ssh", config.SurfaceAuto, env{goos: "linux", isTerminal: true}, config.SurfaceTerminal},
		{"auto linux daemon", config.SurfaceAuto, env{goos: "linux"}, config.SurfaceTray},
		{"unknown value", config.Surface("bogus"), env{goos: "freebsd", isTerminal: true}, config.SurfaceTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chooseSurface(tt.want, tt.env))
		})
	}
}

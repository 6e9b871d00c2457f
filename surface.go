package main

import (
	"os"
	"runtime"

	"golang.org/x/term"

	"github.com/zsprackett/usagetray/internal/config"
)

// env is what chooseSurface looks at.
type env struct {
	goos       string
	display    bool
	isTerminal bool
}

func envProbe() env {
	return env{
		goos:       runtime.GOOS,
		display:    os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != "",
		isTerminal: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// chooseSurface resolves "auto": macOS and Windows always have a tray;
// elsewhere the tray needs a graphical session, and a terminal without one
// gets the terminal surface.
func chooseSurface(want config.Surface, e env) config.Surface {
	switch want {
	case config.SurfaceTray, config.SurfaceTerminal:
		return want
	}
	switch e.goos {
	case "darwin", "windows":
		return config.SurfaceTray
	}
	if !e.display && e.isTerminal {
		return config.SurfaceTerminal
	}
	return config.SurfaceTray
}

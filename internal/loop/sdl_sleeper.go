//go:build !no_sdl_ttf
// +build !no_sdl_ttf

package loop

import "github.com/veandco/go-sdl2/sdl"

// SDLSleeper delays via sdl.Delay, which pumps the platform event loop
// internally instead of blocking the OS thread the way time.Sleep does.
// Hosts running an SDL window should prefer this over StdSleeper.
type SDLSleeper struct{}

func (SDLSleeper) SleepMillis(ms uint32) { sdl.Delay(ms) }

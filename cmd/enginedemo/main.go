// Command enginedemo wires the full runtime core end to end: an asset
// loader reading from a directory (or a ZIP pack if one is given), a glyph
// atlas rasterized with the built-in bitmap font, a text box laying out a
// line of dialogue, a sound mixer, and a headless game loop driving it all
// for a fixed number of frames.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kazikikaziki/misc-sub002/internal/archive"
	"github.com/kazikikaziki/misc-sub002/internal/assetfs"
	"github.com/kazikikaziki/misc-sub002/internal/audio"
	"github.com/kazikikaziki/misc-sub002/internal/config"
	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/glyphatlas"
	"github.com/kazikikaziki/misc-sub002/internal/loop"
	"github.com/kazikikaziki/misc-sub002/internal/rasterfont"
	"github.com/kazikikaziki/misc-sub002/internal/textbox"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: enginedemo <asset-dir-or-pack.zip>")
		os.Exit(1)
	}

	logger := debug.NewLogger(2048)
	defer logger.Shutdown()
	logger.SetComponentEnabled(debug.ComponentSystem, true)

	cfg, err := config.LoadEngineConfig("engine.toml")
	must(err)

	loader := assetfs.NewLoader(logger)
	if err := addAssetSource(loader, os.Args[1]); err != nil {
		must(err)
	}

	faces := rasterfont.NewFaceRegistry()
	atlas := glyphatlas.New(faces, cfg.Atlas.PageSize, logger)

	box := textbox.New(atlas, faces, logger)
	box.SetFont("default")
	box.SetFontSizeTenths(120)
	box.SetAutoWrapWidth(320)
	must(box.AddString("Hello, engine core."))

	mixer := audio.NewSoundMixer(logger)
	defer mixer.Shutdown()
	mixer.SetOutputFormat(audio.SampleFormat{Channels: cfg.Audio.Channels, SampleRate: cfg.Audio.SampleRate})
	if dev, err := audio.OpenSDLDevice(audio.SampleFormat{Channels: cfg.Audio.Channels, SampleRate: cfg.Audio.SampleRate}); err == nil {
		mixer.SetDevice(dev)
	} else {
		logger.LogSystemf(debug.LogLevelInfo, "no SDL audio device available, playing silent: %v", err)
	}
	mixer.StartStreamingWorker()

	if data, ok := loader.LoadAll("sfx/boot.wav"); ok {
		dec, err := audio.DecodeAny(bytes.NewReader(data))
		if err == nil {
			if _, err := mixer.PlayOneShot(dec, audio.DefaultGroup); err != nil {
				logger.LogSystemf(debug.LogLevelWarning, "playback failed: %v", err)
			}
		}
	}

	app := &demoCallback{mixer: mixer, maxFrames: cfg.Loop.TargetFPS}
	l := loop.New(app, cfg.Loop.TargetFPS, nil, logger)
	l.SetFrameSkips(cfg.Loop.MaxSkipFrames, cfg.Loop.MaxSkipMsec)
	l.Run()

	fmt.Printf("rendered %d glyphs across %d atlas page(s) over %d frames\n",
		box.CharCount(), len(atlas.Pages()), l.AppFrames()+1)
}

func addAssetSource(loader *assetfs.Loader, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		loader.AddProvider(assetfs.NewDirProvider(path))
		return nil
	}
	pack, err := assetfs.OpenPackFile(path, "", archive.FindOptions{})
	if err != nil {
		return err
	}
	loader.AddProvider(pack)
	return nil
}

// demoCallback drives a fixed number of simulated frames with no real
// clock, matching loop.NopCallback's contract but counting frames.
type demoCallback struct {
	loop.NopCallback
	mixer     *audio.SoundMixer
	frame     int
	maxFrames int
	nowMs     uint32
}

func (c *demoCallback) OnLoopTop() bool { c.frame++; return c.frame <= c.maxFrames }
// OnUpdate steps fades and the gain law only; the streaming worker owns
// playback position advancement and device feeding on its own goroutine.
func (c *demoCallback) OnUpdate() { c.mixer.Update(0) }
func (c *demoCallback) NowMillis() uint32 {
	c.nowMs += 16
	return c.nowMs
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "enginedemo:", err)
		os.Exit(1)
	}
}

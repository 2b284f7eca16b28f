package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/richinsley/vcontrol/audio"
	"github.com/richinsley/vcontrol/compositor"
	"github.com/richinsley/vcontrol/config"
	"github.com/richinsley/vcontrol/graphics"
	"github.com/richinsley/vcontrol/imagefile"
	"github.com/richinsley/vcontrol/inputs"
	"github.com/richinsley/vcontrol/options"
	renderer "github.com/richinsley/vcontrol/renderer"
	"github.com/richinsley/vcontrol/sdlrenderer"
)

func init() {
	runtime.LockOSThread()
}

func openDisplay(d config.Display) (graphics.Display, error) {
	switch d.Backend {
	case "gl":
		return renderer.NewGLDisplay(d.Width, d.Height, d.Fullscreen)
	case "sdl":
		return sdlrenderer.New(d.Width, d.Height, d.Fullscreen)
	}
	return nil, fmt.Errorf("unknown display backend %q", d.Backend)
}

func startStatsview(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	log.Printf("stats server available at http://%s/debug/statsview", addr)
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("vcontrol: MIDI and audio driven image compositor")
		flag.PrintDefaults()
		return
	}

	cfg := config.Default()
	if *opts.ConfigFile != "" {
		var err error
		cfg, err = config.Load(*opts.ConfigFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}
	opts.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Statsview != "" {
		startStatsview(cfg.Statsview)
	}

	display, err := openDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to create display: %v", err)
	}
	defer display.Shutdown()

	registry, err := cfg.Registry(display, imagefile.Loader{})
	if err != nil {
		log.Fatalf("Failed to create channels: %v", err)
	}

	polled := inputs.NewPolled(inputs.OpenPortOrNull(cfg.MIDI.Driver, cfg.MIDI.Device), registry)
	if err := cfg.BindMIDI(registry, polled); err != nil {
		log.Fatalf("Failed to bind MIDI controls: %v", err)
	}

	device := audio.OpenOrNull(cfg.Audio.Driver, cfg.Audio.Device)
	detect, err := inputs.DetectorByName(cfg.Audio.Detector, device.SampleRate())
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}
	follower := inputs.NewFollower(device, registry, detect)
	if err := cfg.BindAudio(registry, follower); err != nil {
		log.Fatalf("Failed to bind audio control: %v", err)
	}
	if err := follower.Start(); err != nil {
		log.Printf("audio: %v, continuing without audio control", err)
	}

	comp := compositor.New(display, registry, polled, cfg.Options())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting render loop with %d channels...", registry.Len())
	if err := comp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("render loop: %v", err)
	}

	if err := follower.Stop(); err != nil {
		log.Printf("audio: %v", err)
	}
	if err := polled.Close(); err != nil {
		log.Printf("midi: %v", err)
	}
	comp.Close()

	s := comp.Stats()
	log.Printf("%d frames, %d presented, %d reloads", s.Frames, s.Presented, s.Reloads)
}

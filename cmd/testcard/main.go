// Command testcard writes a labelled placeholder image for every configured
// channel, so a rig can be checked before the real artwork exists.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/richinsley/vcontrol/config"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	spriteW = 160
	spriteH = 120
)

// palette cycles through the channels.
var palette = [][3]float64{
	{0.90, 0.30, 0.25},
	{0.25, 0.65, 0.90},
	{0.35, 0.80, 0.35},
	{0.95, 0.75, 0.20},
	{0.70, 0.40, 0.85},
	{0.20, 0.80, 0.75},
}

func colorOf(c [3]float64) color.Color {
	return color.NRGBA{uint8(c[0] * 255), uint8(c[1] * 255), uint8(c[2] * 255), 0xff}
}

func drawCard(font *truetype.Font, ch config.Channel, idx, width, height int) image.Image {
	c := palette[idx%len(palette)]
	if ch.Mode == "background" {
		dc := gg.NewContext(width, height)
		grad := gg.NewLinearGradient(0, 0, float64(width), float64(height))
		grad.AddColorStop(0, colorOf(c))
		grad.AddColorStop(1, colorOf([3]float64{c[0] / 4, c[1] / 4, c[2] / 4}))
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(width), float64(height))
		dc.Fill()
		label(dc, font, ch.Name, float64(height)/6)
		return dc.Image()
	}

	dc := gg.NewContext(spriteW, spriteH)
	dc.SetRGBA(c[0], c[1], c[2], 1)
	dc.DrawRoundedRectangle(4, 4, spriteW-8, spriteH-8, 16)
	dc.Fill()
	label(dc, font, ch.Name, spriteH/3)
	return dc.Image()
}

func label(dc *gg.Context, font *truetype.Font, text string, size float64) {
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, float64(dc.Width())/2, float64(dc.Height())/2, 0.5, 0.5)
}

func main() {
	configFile := flag.String("config", "", "Path to a vcontrol.toml scene file")
	dir := flag.String("dir", "", "Output directory (defaults to the configured image directory)")
	force := flag.Bool("force", false, "Overwrite existing images")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}
	if *dir != "" {
		cfg.Dir = *dir
	}

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("Error parsing font: %v", err)
	}

	for i, ch := range cfg.Channels {
		path := ch.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dir, path)
		}
		if _, err := os.Stat(path); err == nil && !*force {
			log.Printf("%s exists, skipping", path)
			continue
		}
		img := drawCard(font, ch, i, cfg.Display.Width, cfg.Display.Height)
		if err := gg.SavePNG(path, img); err != nil {
			log.Fatalf("Error writing %s: %v", path, err)
		}
		fmt.Println(path)
	}
}

package audio

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegInput runs ffmpeg to capture a device or decode a file, reading raw
// s16le mono samples from its stdout.
type FFmpegInput struct {
	input      string
	sampleRate int

	cmd    *exec.Cmd
	pipe   *io.PipeReader
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFFmpegInput creates an input for a capture device name such as
// "hw:3,0,0" or "default", or the path of a media file.
func NewFFmpegInput(input string, sampleRate int) *FFmpegInput {
	return &FFmpegInput{
		input:      input,
		sampleRate: sampleRate,
	}
}

// inputArgs picks the demuxer for the input.
func inputArgs(input, goos string) (string, ffmpeg.KwArgs) {
	args := ffmpeg.KwArgs{
		"hide_banner": "",
		"loglevel":    "error",
	}
	if fi, err := os.Stat(input); err == nil && !fi.IsDir() {
		// pace the file at its native rate, as a live source would be
		args["re"] = ""
		return input, args
	}

	args["fflags"] = "nobuffer"
	switch goos {
	case "darwin":
		args["f"] = "avfoundation"
		if input == "" || input == "default" {
			input = ":0"
		}
	case "linux":
		if strings.HasPrefix(input, "hw:") || strings.HasPrefix(input, "plughw:") {
			args["f"] = "alsa"
		} else {
			args["f"] = "pulse"
			if input == "" {
				input = "default"
			}
		}
	case "windows":
		args["f"] = "dshow"
		if !strings.HasPrefix(input, "audio=") {
			input = "audio=" + input
		}
	}
	return input, args
}

// Start launches ffmpeg and a goroutine that frames its output.
func (d *FFmpegInput) Start() (<-chan []int16, error) {
	pipeReader, pipeWriter := io.Pipe()

	input, args := inputArgs(d.input, runtime.GOOS)
	cmd := ffmpeg.Input(input, args).
		Output("pipe:", ffmpeg.KwArgs{
			"f":   "s16le",
			"c:a": "pcm_s16le",
			"ac":  "1",
			"ar":  d.sampleRate,
		}).
		WithOutput(pipeWriter).
		ErrorToStdOut().
		Compile()

	if err := cmd.Start(); err != nil {
		pipeWriter.Close()
		return nil, err
	}
	log.Printf("audio: ffmpeg reading %s", d.input)

	ctx, cancel := context.WithCancel(context.Background())
	d.cmd = cmd
	d.pipe = pipeReader
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			log.Printf("audio: ffmpeg finished with error: %v", err)
		}
		// unblocks the reader once ffmpeg is gone
		pipeWriter.Close()
	}()

	frames := make(chan []int16, 16)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(frames)
		if err := readFrames(ctx, pipeReader, frames); err != nil {
			log.Printf("audio: ffmpeg: %v", err)
		}
	}()
	return frames, nil
}

// Stop kills ffmpeg and waits for both goroutines.
func (d *FFmpegInput) Stop() error {
	if d.cmd == nil {
		return nil
	}
	d.cancel()
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.pipe.Close()
	d.wg.Wait()
	d.cmd = nil
	return nil
}

func (d *FFmpegInput) SampleRate() int {
	return d.sampleRate
}

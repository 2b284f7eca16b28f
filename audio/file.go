package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// FileInput replays a decoded WAV or MP3 file in real time, looping at the
// end. It stands in for a live input when no capture device is available.
type FileInput struct {
	path       string
	samples    []int16
	sampleRate int

	// period between two frames; derived from the sample rate
	period time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileInput decodes the whole file up front.
func NewFileInput(path string) (*FileInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []int16
	var rate int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		samples, rate, err = decodeWAV(f)
	case ".mp3":
		samples, rate, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("unsupported audio file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%s: invalid sample rate %d", path, rate)
	}
	if len(samples) < FrameSize {
		return nil, fmt.Errorf("%s: shorter than one frame", path)
	}
	log.Printf("audio: loaded %s: %d samples at %d Hz", path, len(samples), rate)

	return &FileInput{
		path:       path,
		samples:    samples,
		sampleRate: rate,
		period:     time.Duration(FrameSize) * time.Second / time.Duration(rate),
	}, nil
}

func decodeWAV(r io.ReadSeeker) ([]int16, int, error) {
	dec := wav.NewDecoder(r)
	if dec == nil || !dec.IsValidFile() {
		return nil, 0, errors.New("wav: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}

	depth := int(dec.BitDepth)
	data := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case depth == 8:
			// 8 bit wav is unsigned
			data[i] = int16((v - 128) << 8)
		case depth > 16:
			data[i] = int16(v >> (depth - 16))
		default:
			data[i] = int16(v)
		}
	}
	return toMono(data, int(dec.NumChans)), int(dec.SampleRate), nil
}

func decodeMP3(r io.Reader) ([]int16, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w", err)
	}

	// the decoded stream is always 16 bit little endian stereo, even for
	// single channel files
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w", err)
	}
	stereo := make([]int16, len(raw)/2)
	for i := range stereo {
		stereo[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return toMono(stereo, 2), dec.SampleRate(), nil
}

// Start begins replay. Frames are delivered once per frame period.
func (d *FileInput) Start() (<-chan []int16, error) {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	frames := make(chan []int16, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(frames)

		ticker := time.NewTicker(d.period)
		defer ticker.Stop()

		pos := 0
		for {
			frame := make([]int16, FrameSize)
			for i := range frame {
				frame[i] = d.samples[pos]
				pos = (pos + 1) % len(d.samples)
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames, nil
}

func (d *FileInput) Stop() error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()
	d.wg.Wait()
	d.cancel = nil
	return nil
}

func (d *FileInput) SampleRate() int {
	return d.sampleRate
}

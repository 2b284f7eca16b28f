package audio

import (
	"fmt"
	"log"
	"strings"
)

// We'll be using portaudio for microphone input.
// macos:	brew install portaudio
// debian:	sudo apt-get install portaudio19-dev
// windows:	pacman -S mingw-w64-x86_64-portaudio
//
// The ffmpeg driver needs the ffmpeg binary on the PATH.

const (
	// SampleRate is the rate every live device is opened at.
	SampleRate = 44100
	// FrameSize is the number of mono samples in one frame.
	FrameSize = 512
)

// Device produces mono signed 16-bit frames of FrameSize samples.
type Device interface {
	// Start begins capture and returns a receive-only channel of frames. The
	// channel is closed when the device stops or runs out of data. A nil
	// channel means the device never produces anything.
	Start() (<-chan []int16, error)
	// Stop terminates capture and releases the device.
	Stop() error
	// SampleRate returns the sample rate of the device.
	SampleRate() int
}

// NullDevice produces silence.
type NullDevice struct {
	rate int
}

func NewNullDevice(sampleRate int) *NullDevice {
	return &NullDevice{rate: sampleRate}
}

// Start for NullDevice produces a channel that never sends anything.
func (d *NullDevice) Start() (<-chan []int16, error) {
	// A nil channel will block forever on receive, effectively producing silence.
	return nil, nil
}

func (d *NullDevice) Stop() error {
	return nil
}

func (d *NullDevice) SampleRate() int { return d.rate }

// Open creates the device for a driver name:
//
//	portaudio  the default input device (name is ignored)
//	ffmpeg     a capture device such as "hw:3,0,0", or a media file
//	file       a WAV or MP3 file replayed in real time
//	null       silence
func Open(driver, name string) (Device, error) {
	switch strings.ToLower(driver) {
	case "portaudio", "mic":
		return NewMicrophone(SampleRate)
	case "ffmpeg":
		return NewFFmpegInput(name, SampleRate), nil
	case "file":
		return NewFileInput(name)
	case "null", "":
		return NewNullDevice(SampleRate), nil
	}
	return nil, fmt.Errorf("audio: unknown driver %q", driver)
}

// OpenOrNull is Open, falling back to a NullDevice when the device cannot be
// opened.
func OpenOrNull(driver, name string) Device {
	d, err := Open(driver, name)
	if err != nil {
		log.Printf("audio: could not open %s %q: %v. Using silent fallback.", driver, name, err)
		return NewNullDevice(SampleRate)
	}
	return d
}

package audio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Microphone captures the default input device through portaudio.
type Microphone struct {
	sampleRate  int
	stream      *portaudio.Stream
	audioChan   chan []int16
	isStreaming bool
}

func NewMicrophone(sampleRate int) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Microphone{sampleRate: sampleRate}, nil
}

func (m *Microphone) audioCallback(in []int16) {
	// PortAudio reuses its buffer.
	dataCopy := make([]int16, len(in))
	copy(dataCopy, in)

	// never block the audio callback thread
	select {
	case m.audioChan <- dataCopy:
	default:
		log.Println("audio: frame channel full, dropping frame")
	}
}

func (m *Microphone) Start() (<-chan []int16, error) {
	m.audioChan = make(chan []int16, 16)

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		close(m.audioChan)
		return nil, err
	}
	if host.DefaultInputDevice == nil {
		close(m.audioChan)
		return nil, fmt.Errorf("no default input device on %s", host.Name)
	}

	params := portaudio.LowLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(m.sampleRate)
	params.FramesPerBuffer = FrameSize

	stream, err := portaudio.OpenStream(params, m.audioCallback)
	if err != nil {
		close(m.audioChan)
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		close(m.audioChan)
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	m.stream = stream
	m.isStreaming = true
	log.Printf("audio: capturing from %s at %d Hz", host.DefaultInputDevice.Name, m.sampleRate)

	return m.audioChan, nil
}

func (m *Microphone) Stop() error {
	if !m.isStreaming {
		return portaudio.Terminate()
	}
	m.isStreaming = false
	// the callback has returned for good once Stop does
	if err := m.stream.Stop(); err != nil {
		log.Printf("audio: stopping stream: %v", err)
	}
	err := m.stream.Close()
	close(m.audioChan)
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

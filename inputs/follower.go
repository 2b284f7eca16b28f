package inputs

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/richinsley/vcontrol/audio"
	"github.com/richinsley/vcontrol/compositor"
)

// Follower tracks the level of an audio device on its own goroutine and
// writes the smoothed value to its bound cells after every frame.
type Follower struct {
	device audio.Device
	sink   Sink
	detect Detector

	handles []compositor.Handle
	state   float32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFollower creates a follower. A nil detector selects FirstSample.
func NewFollower(device audio.Device, sink Sink, detect Detector) *Follower {
	if detect == nil {
		detect = FirstSample
	}
	return &Follower{
		device: device,
		sink:   sink,
		detect: detect,
		done:   make(chan struct{}),
	}
}

// Bind adds a cell to write the level to. Bind must be called before Start.
func (f *Follower) Bind(h compositor.Handle) {
	f.handles = append(f.handles, h)
}

// Start starts the device and the follower goroutine. A device that fails to
// start is stopped again to release it.
func (f *Follower) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return errors.New("follower already started")
	}

	frames, err := f.device.Start()
	if err != nil {
		if serr := f.device.Stop(); serr != nil {
			log.Printf("audio: releasing device: %v", serr)
		}
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.started = true
	f.done = make(chan struct{})

	go f.run(ctx, frames, f.done)
	log.Printf("audio: follower started at %d Hz", f.device.SampleRate())
	return nil
}

func (f *Follower) run(ctx context.Context, frames <-chan []int16, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				log.Printf("audio: input ended")
				return
			}
			if ctx.Err() != nil {
				return
			}
			if len(frame) == 0 {
				continue
			}
			f.update(f.detect(frame))
		}
	}
}

// update folds one level into the running average and publishes it.
func (f *Follower) update(cur float32) {
	f.state = f.state*0.6 + cur*0.4
	for _, h := range f.handles {
		f.sink.Set(h, int32(f.state))
	}
}

// Done is closed when the follower goroutine has exited.
func (f *Follower) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Stop cancels the follower, waits for its goroutine to exit and then stops
// the device. No cell is written once Stop has begun stopping the device.
func (f *Follower) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil
	}
	f.started = false
	f.cancel()
	<-f.done
	return f.device.Stop()
}

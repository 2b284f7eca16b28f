package inputs

import (
	"fmt"
	"log"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// RtMidiPort receives messages through the system MIDI API and queues their
// raw bytes.
type RtMidiPort struct {
	byteQueue
	drv  *rtmididrv.Driver
	in   drivers.In
	stop func()
}

// findIn picks the input whose name equals name, or failing that the first
// one containing it. An empty name picks the first input.
func findIn(ins []drivers.In, name string) drivers.In {
	if len(ins) == 0 {
		return nil
	}
	if name == "" {
		return ins[0]
	}
	for _, in := range ins {
		if in.String() == name {
			return in
		}
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return in
		}
	}
	return nil
}

// OpenRtMidiPort opens the named input port.
func OpenRtMidiPort(name string) (*RtMidiPort, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmidi: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("rtmidi: listing inputs: %w", err)
	}
	in := findIn(ins, name)
	if in == nil {
		drv.Close()
		return nil, fmt.Errorf("rtmidi: input %q not found", name)
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("rtmidi: opening %s: %w", in, err)
	}

	p := &RtMidiPort{drv: drv, in: in}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		p.push(msg.Bytes()...)
	}, midi.HandleError(func(listenErr error) {
		p.fail(listenErr)
	}))
	if err != nil {
		in.Close()
		drv.Close()
		return nil, fmt.Errorf("rtmidi: listening on %s: %w", in, err)
	}
	p.stop = stop
	log.Printf("midi: listening on %s", in)
	return p, nil
}

func (p *RtMidiPort) Close() error {
	p.stop()
	err := p.in.Close()
	p.drv.Close()
	return err
}

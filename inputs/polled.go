// Package inputs turns external controllers into writes on compositor
// control cells.
package inputs

import (
	"errors"
	"fmt"
	"log"

	"github.com/richinsley/vcontrol/compositor"
)

// MaxSlots is the number of controller ids a Polled source can bind.
const MaxSlots = 32

// controlChange is the status byte of a control change on MIDI channel 1.
const controlChange = 0xb0

var ErrSlotRange = errors.New("controller slot out of range")

// Sink stores control values. compositor.Registry implements it.
type Sink interface {
	Set(h compositor.Handle, v int32) bool
}

type pollState int

const (
	idle pollState = iota
	selecting
	valued
)

// Polled applies control change messages read from a Port. It is drained
// from the rendering thread once per tick.
type Polled struct {
	port Port
	sink Sink

	slots [MaxSlots]compositor.Handle
	bound [MaxSlots]bool

	state pollState
	slot  int
}

func NewPolled(port Port, sink Sink) *Polled {
	return &Polled{
		port: port,
		sink: sink,
	}
}

// Bind routes controller id slot to h.
func (p *Polled) Bind(slot int, h compositor.Handle) error {
	if slot < 0 || slot >= MaxSlots {
		return fmt.Errorf("%w: %d", ErrSlotRange, slot)
	}
	p.slots[slot] = h
	p.bound[slot] = true
	return nil
}

// Drain consumes every byte the port has buffered without blocking.
func (p *Polled) Drain() {
	for {
		b, err := p.port.ReadByte()
		if err != nil {
			if !errors.Is(err, ErrWouldBlock) {
				log.Printf("midi: read: %v", err)
			}
			return
		}
		p.feed(b)
	}
}

// feed advances the parser by one byte. A control change is the status byte,
// a controller id and a signed value. Ids outside 0..127 (another status
// byte) leave the parser waiting for an id.
func (p *Polled) feed(b byte) {
	switch p.state {
	case idle:
		if b == controlChange {
			p.state = selecting
		}
	case selecting:
		if id := int(int8(b)); id >= 0 {
			p.slot = id
			p.state = valued
		}
	case valued:
		if p.slot < MaxSlots && p.bound[p.slot] {
			p.sink.Set(p.slots[p.slot], int32(int8(b)))
		}
		p.state = idle
	}
}

// Close closes the port.
func (p *Polled) Close() error {
	return p.port.Close()
}

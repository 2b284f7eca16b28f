package inputs

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// ErrWouldBlock is returned by Port.ReadByte when no byte is buffered.
var ErrWouldBlock = errors.New("no data available")

// Port is a non-blocking byte source.
type Port interface {
	// ReadByte returns the next buffered byte, or ErrWouldBlock.
	ReadByte() (byte, error)
	Close() error
}

// maxQueued bounds the bytes held between drains.
const maxQueued = 64 * 1024

// byteQueue buffers bytes pushed by a reader goroutine until they are read
// from the rendering thread.
type byteQueue struct {
	mu      sync.Mutex
	buf     []byte
	err     error
	dropped int
}

func (q *byteQueue) push(p ...byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if room := maxQueued - len(q.buf); len(p) > room {
		q.dropped += len(p) - room
		p = p[:room]
	}
	q.buf = append(q.buf, p...)
}

// fail records a read error. It is returned once, after the queued bytes.
func (q *byteQueue) fail(err error) {
	q.mu.Lock()
	q.err = err
	q.mu.Unlock()
}

func (q *byteQueue) ReadByte() (byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.dropped > 0 {
		log.Printf("midi: input overrun, dropped %d bytes", q.dropped)
		q.dropped = 0
	}
	if len(q.buf) == 0 {
		if err := q.err; err != nil {
			q.err = nil
			return 0, err
		}
		return 0, ErrWouldBlock
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	if len(q.buf) == 0 {
		q.buf = nil
	}
	return b, nil
}

// pump copies r into q until r fails. Errors after closed is set are the
// result of closing r and are not reported.
func (q *byteQueue) pump(r io.Reader, closed func() bool) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			q.push(buf[:n]...)
		}
		if err != nil {
			if !closed() {
				q.fail(err)
			}
			return
		}
	}
}

// readerPort is a Port over a blocking reader, read by its own goroutine.
type readerPort struct {
	byteQueue
	rc io.ReadCloser

	closeMu sync.Mutex
	closed  bool
	done    chan struct{}
}

func newReaderPort(rc io.ReadCloser) *readerPort {
	p := &readerPort{
		rc:   rc,
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.pump(rc, p.isClosed)
	}()
	return p
}

func (p *readerPort) isClosed() bool {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	return p.closed
}

func (p *readerPort) Close() error {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return nil
	}
	p.closed = true
	p.closeMu.Unlock()
	return p.rc.Close()
}

// NullPort never yields data.
type NullPort struct{}

func (NullPort) ReadByte() (byte, error) { return 0, ErrWouldBlock }
func (NullPort) Close() error            { return nil }

// OpenPort opens a MIDI input for a driver name:
//
//	raw     an ALSA rawmidi device, "hw:2,0,0" or "/dev/snd/midiC2D0"
//	rtmidi  a port name as listed by the system MIDI API
//	serial  a serial device, optionally with a baud rate: "/dev/ttyUSB0@31250"
//	null    nothing
func OpenPort(driver, name string) (Port, error) {
	switch strings.ToLower(driver) {
	case "raw":
		return OpenRawPort(name)
	case "rtmidi":
		p, err := OpenRtMidiPort(name)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "serial":
		path, baud, err := parseSerialName(name)
		if err != nil {
			return nil, err
		}
		return OpenSerialPort(path, baud)
	case "null", "":
		return NullPort{}, nil
	}
	return nil, fmt.Errorf("midi: unknown driver %q", driver)
}

// OpenPortOrNull is OpenPort, falling back to a NullPort when the device
// cannot be opened.
func OpenPortOrNull(driver, name string) Port {
	p, err := OpenPort(driver, name)
	if err != nil {
		log.Printf("midi: cannot open %s device %q: %v", driver, name, err)
		return NullPort{}
	}
	return p
}

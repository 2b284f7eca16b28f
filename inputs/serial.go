package inputs

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/pkg/term"
)

// DefaultBaud suits USB serial MIDI bridges. DIN MIDI adapters that pass the
// wire rate through need 31250.
const DefaultBaud = 115200

// parseSerialName splits "path@baud".
func parseSerialName(name string) (string, int, error) {
	path, rate, ok := strings.Cut(name, "@")
	if !ok {
		return name, DefaultBaud, nil
	}
	baud, err := strconv.Atoi(rate)
	if err != nil || baud <= 0 {
		return "", 0, fmt.Errorf("invalid baud rate in %q", name)
	}
	return path, baud, nil
}

// OpenSerialPort opens a serial device in raw mode.
func OpenSerialPort(path string, baud int) (Port, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("cannot open serial device: %w", err)
	}
	log.Printf("midi: reading %s at %d baud", path, baud)
	return newReaderPort(t), nil
}

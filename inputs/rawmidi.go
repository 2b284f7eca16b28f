package inputs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// DevicePath maps an ALSA rawmidi address "hw:C,D[,S]" to its character
// device /dev/snd/midiC<C>D<D>. Anything else is returned unchanged.
func DevicePath(name string) (string, error) {
	rest, ok := strings.CutPrefix(name, "hw:")
	if !ok {
		return name, nil
	}
	parts := strings.Split(rest, ",")
	if len(parts) > 3 {
		return "", fmt.Errorf("malformed rawmidi address %q", name)
	}
	nums := []int{0, 0}
	for i := 0; i < len(parts) && i < 2; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 {
			return "", fmt.Errorf("malformed rawmidi address %q", name)
		}
		nums[i] = n
	}
	return fmt.Sprintf("/dev/snd/midiC%dD%d", nums[0], nums[1]), nil
}

// OpenRawPort opens a rawmidi character device for reading.
func OpenRawPort(name string) (Port, error) {
	path, err := DevicePath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open midi device: %w", err)
	}
	log.Printf("midi: reading %s", path)
	return newReaderPort(f), nil
}

package compositor

import (
	"fmt"
	"strings"
)

// Field selects one of a channel's control cells.
type Field int

const (
	// XOffset, YOffset and AlphaOffset are the baseline values, normally
	// driven by MIDI knobs in the range 0..127.
	XOffset Field = iota
	YOffset
	AlphaOffset
	// XControl, YControl and AlphaControl are live deltas, normally driven by
	// the audio follower.
	XControl
	YControl
	AlphaControl

	numFields
)

var fieldNames = [numFields]string{
	XOffset:      "x_offset",
	YOffset:      "y_offset",
	AlphaOffset:  "a_offset",
	XControl:     "x_control",
	YControl:     "y_control",
	AlphaControl: "a_control",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField converts a field name such as "y_offset" into a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}
	return 0, fmt.Errorf("unknown control field %q", name)
}

// Handle addresses one control cell: the channel's index in the registry and
// the field within it. Control sources hold handles rather than pointers into
// channel state.
type Handle struct {
	Channel int
	Field   Field
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%s", h.Channel, h.Field)
}

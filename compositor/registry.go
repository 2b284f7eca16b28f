package compositor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTarget is returned by Resolve for targets naming a channel that is
// not in the registry.
var ErrUnknownTarget = errors.New("unknown control target")

// Registry is the ordered collection of channels. The order channels are
// added is the order they are checked for reloads and prepared; RenderOrder
// gives the back to front drawing order.
//
// All channels must be added before any control source is started. After
// that the registry itself is read-only and Set/Get are safe to call from any
// goroutine.
type Registry struct {
	channels []*Channel
	index    map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Add appends a channel and returns its index.
func (r *Registry) Add(ch *Channel) (int, error) {
	if _, ok := r.index[ch.Name()]; ok {
		return -1, fmt.Errorf("duplicate channel name %q", ch.Name())
	}
	r.channels = append(r.channels, ch)
	idx := len(r.channels) - 1
	r.index[ch.Name()] = idx
	return idx, nil
}

func (r *Registry) Len() int {
	return len(r.channels)
}

// Channel returns the channel at index i, or nil.
func (r *Registry) Channel(i int) *Channel {
	if i < 0 || i >= len(r.channels) {
		return nil
	}
	return r.channels[i]
}

// Channels returns the channels in registry order.
func (r *Registry) Channels() []*Channel {
	return r.channels
}

// Lookup finds a channel by name.
func (r *Registry) Lookup(name string) (*Channel, int, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, -1, false
	}
	return r.channels[i], i, true
}

// RenderOrder returns background channels followed by sprite channels, each
// group in registry order.
func (r *Registry) RenderOrder() []*Channel {
	order := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		if ch.Background() {
			order = append(order, ch)
		}
	}
	for _, ch := range r.channels {
		if !ch.Background() {
			order = append(order, ch)
		}
	}
	return order
}

// Resolve turns a target of the form "<channel>.<field>", for example
// "ch1.y_control", into a Handle.
func (r *Registry) Resolve(target string) (Handle, error) {
	dot := strings.LastIndexByte(target, '.')
	if dot <= 0 || dot == len(target)-1 {
		return Handle{}, fmt.Errorf("malformed control target %q", target)
	}
	_, idx, ok := r.Lookup(target[:dot])
	if !ok {
		return Handle{}, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	f, err := ParseField(target[dot+1:])
	if err != nil {
		return Handle{}, err
	}
	return Handle{Channel: idx, Field: f}, nil
}

// Set writes v to the cell addressed by h. It returns false, writing nothing,
// when the handle does not address a cell.
func (r *Registry) Set(h Handle, v int32) bool {
	ch := r.Channel(h.Channel)
	if ch == nil || h.Field < 0 || h.Field >= numFields {
		return false
	}
	ch.cells[h.Field].Store(v)
	return true
}

// Get reads the cell addressed by h.
func (r *Registry) Get(h Handle) (int32, bool) {
	ch := r.Channel(h.Channel)
	if ch == nil || h.Field < 0 || h.Field >= numFields {
		return 0, false
	}
	return ch.cells[h.Field].Load(), true
}

// Close releases every channel's texture.
func (r *Registry) Close() {
	for _, ch := range r.channels {
		ch.Close()
	}
}

package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
)

// DownmixStereoToMono converts an interleaved stereo buffer to mono by
// averaging the left and right channels.
func DownmixStereoToMono(stereo []int16) []int16 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}
	mono := make([]int16, len(stereo)/2)
	for i := 0; i < len(mono); i++ {
		mono[i] = int16((int32(stereo[i*2]) + int32(stereo[i*2+1])) / 2)
	}
	return mono
}

// toMono reduces interleaved samples with the given channel count to mono.
// Stereo is downmixed; for more channels the first is kept.
func toMono(data []int16, channels int) []int16 {
	switch {
	case channels <= 1:
		return data
	case channels == 2:
		return DownmixStereoToMono(data)
	}
	mono := make([]int16, len(data)/channels)
	for i := range mono {
		mono[i] = data[i*channels]
	}
	return mono
}

// readFrames reads little-endian signed 16-bit mono samples from r and sends
// them to out in frames of FrameSize samples. A trailing partial frame is
// dropped. It returns nil at EOF and when ctx is cancelled.
func readFrames(ctx context.Context, r io.Reader, out chan<- []int16) error {
	buf := make([]byte, FrameSize*2)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		frame := make([]int16, FrameSize)
		for i := range frame {
			frame[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
		}
		select {
		case out <- frame:
		case <-ctx.Done():
			return nil
		}
	}
}

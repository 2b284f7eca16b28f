package inputs

import (
	"fmt"
	"math"
	"math/cmplx"

	fft "github.com/mjibson/go-dsp/fft"
)

// Detector reduces one audio frame to a non-negative level in the 16-bit
// sample range.
type Detector func(frame []int16) float32

// FirstSample is the magnitude of the frame's first sample.
func FirstSample(frame []int16) float32 {
	return float32(math.Abs(float64(frame[0])))
}

// Peak is the largest sample magnitude in the frame.
func Peak(frame []int16) float32 {
	var peak float64
	for _, s := range frame {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	return float32(peak)
}

// Bass returns a detector measuring the strongest frequency component below
// cutoff Hz, as an amplitude in sample units.
func Bass(sampleRate int, cutoff float64) Detector {
	return func(frame []int16) float32 {
		n := len(frame)
		if n < 2 {
			return 0
		}
		samples := make([]float64, n)
		for i, s := range frame {
			samples[i] = float64(s)
		}
		spectrum := fft.FFTReal(samples)

		// bin 0 is DC and is left out
		last := int(cutoff * float64(n) / float64(sampleRate))
		last = max(1, min(last, n/2-1))
		var level float64
		for i := 1; i <= last; i++ {
			level = math.Max(level, cmplx.Abs(spectrum[i])*2/float64(n))
		}
		return float32(math.Min(level, math.MaxInt16))
	}
}

// DefaultBassCutoff is the upper edge of the bass band in Hz.
const DefaultBassCutoff = 250

// DetectorByName returns "first", "peak" or "bass".
func DetectorByName(name string, sampleRate int) (Detector, error) {
	switch name {
	case "first", "":
		return FirstSample, nil
	case "peak":
		return Peak, nil
	case "bass":
		return Bass(sampleRate, DefaultBassCutoff), nil
	}
	return nil, fmt.Errorf("unknown detector %q", name)
}

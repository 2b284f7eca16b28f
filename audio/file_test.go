package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes 16 bit samples at 44100 Hz to a temporary file.
func writeWAV(t *testing.T, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loop.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, SampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileInputWAVStereo(t *testing.T) {
	const n = FrameSize * 2
	data := make([]int, n*2)
	for i := 0; i < n; i++ {
		data[i*2] = i
		data[i*2+1] = i + 2
	}
	d, err := NewFileInput(writeWAV(t, 2, data))
	if err != nil {
		t.Fatal(err)
	}
	if d.SampleRate() != SampleRate {
		t.Errorf("SampleRate() = %d, want %d", d.SampleRate(), SampleRate)
	}
	if len(d.samples) != n {
		t.Fatalf("samples = %d, want %d", len(d.samples), n)
	}

	frames, err := d.Start()
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{1, FrameSize + 1, 1}
	for i, w := range want {
		select {
		case f := <-frames:
			if len(f) != FrameSize {
				t.Fatalf("frame %d length = %d", i, len(f))
			}
			if f[0] != w {
				t.Errorf("frame %d first sample = %d, want %d", i, f[0], w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %d not delivered", i)
		}
	}

	if err := d.Stop(); err != nil {
		t.Fatal(err)
	}
	for range frames {
	}
}

func TestFileInputErrors(t *testing.T) {
	if _, err := NewFileInput(writeWAV(t, 1, make([]int, 10))); err == nil {
		t.Error("accepted a file shorter than one frame")
	}

	dir := t.TempDir()
	bogus := filepath.Join(dir, "noise.wav")
	if err := os.WriteFile(bogus, []byte("not a riff file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileInput(bogus); err == nil {
		t.Error("accepted an invalid wav file")
	}

	ogg := filepath.Join(dir, "noise.ogg")
	if err := os.WriteFile(ogg, []byte("OggS"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileInput(ogg); err == nil {
		t.Error("accepted an unsupported extension")
	}
}

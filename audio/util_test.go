package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
)

func TestDownmixStereoToMono(t *testing.T) {
	got := DownmixStereoToMono([]int16{100, 300, -32768, -32768, 32767, 32767, 7})
	want := []int16{200, -32768, 32767}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestToMono(t *testing.T) {
	in := []int16{1, 2, 3, 4, 5, 6}
	if got := toMono(in, 1); len(got) != 6 {
		t.Errorf("mono input changed length to %d", len(got))
	}
	got := toMono(in, 3)
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("got = %v, want [1 4]", got)
	}
}

func TestReadFrames(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < FrameSize*2+10; i++ {
		binary.Write(&buf, binary.LittleEndian, int16(i-600))
	}

	out := make(chan []int16, 4)
	if err := readFrames(context.Background(), &buf, out); err != nil {
		t.Fatal(err)
	}
	close(out)

	var frames [][]int16
	for f := range out {
		frames = append(frames, f)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0][0] != -600 || frames[1][0] != FrameSize-600 {
		t.Errorf("first samples = %d, %d", frames[0][0], frames[1][0])
	}
	if len(frames[1]) != FrameSize {
		t.Errorf("frame length = %d, want %d", len(frames[1]), FrameSize)
	}
}

func TestReadFramesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// nobody receives, so only cancellation can end the read
	out := make(chan []int16)
	r := bytes.NewReader(make([]byte, FrameSize*2*3))
	if err := readFrames(ctx, r, out); err != nil {
		t.Errorf("readFrames() = %v, want nil", err)
	}
}

func TestOpen(t *testing.T) {
	d, err := Open("null", "")
	if err != nil {
		t.Fatal(err)
	}
	frames, err := d.Start()
	if err != nil || frames != nil {
		t.Errorf("null Start() = %v, %v, want nil channel", frames, err)
	}
	if d.SampleRate() != SampleRate {
		t.Errorf("SampleRate() = %d, want %d", d.SampleRate(), SampleRate)
	}

	if _, err := Open("theremin", ""); err == nil {
		t.Error("Open accepted an unknown driver")
	}
	if d := OpenOrNull("file", "/nonexistent/loop.wav"); d == nil {
		t.Error("OpenOrNull returned nil")
	} else if _, ok := d.(*NullDevice); !ok {
		t.Errorf("OpenOrNull() = %T, want *NullDevice", d)
	}
}

func TestFFmpegInputArgs(t *testing.T) {
	name, args := inputArgs("hw:3,0,0", "linux")
	if name != "hw:3,0,0" || args["f"] != "alsa" {
		t.Errorf("alsa device: got %q %v", name, args)
	}
	name, args = inputArgs("", "linux")
	if name != "default" || args["f"] != "pulse" {
		t.Errorf("default device: got %q %v", name, args)
	}
	name, _ = inputArgs("Microphone", "windows")
	if name != "audio=Microphone" {
		t.Errorf("dshow device: got %q", name)
	}

	path := writeWAV(t, 1, make([]int, FrameSize))
	name, args = inputArgs(path, "linux")
	if name != path {
		t.Errorf("file input renamed to %q", name)
	}
	if _, ok := args["re"]; !ok {
		t.Error("file input not paced")
	}
	if _, ok := args["f"]; ok {
		t.Error("file input forced a demuxer")
	}
}

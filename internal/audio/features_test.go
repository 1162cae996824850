package audio

import (
	"math"
	"testing"
)

// encodePCM16 packs samples as little-endian bytes.
func encodePCM16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[2*i] = byte(uint16(s))
		out[2*i+1] = byte(uint16(s) >> 8)
	}
	return out
}

// tone synthesizes a sine wave at freq for the given duration.
func tone(freq float64, ms, rate int, amp float64) []int16 {
	n := rate * ms / 1000
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * 32000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func silence(ms, rate int) []int16 {
	return make([]int16, rate*ms/1000)
}

func TestExtract_EmptySegment(t *testing.T) {
	if _, err := Extract(Segment{Data: nil}); err == nil {
		t.Fatalf("expected error for empty segment")
	}
}

func TestExtract_DurationAndSpeechRatio(t *testing.T) {
	rate := 8000
	var samples []int16
	samples = append(samples, tone(440, 500, rate, 0.5)...)
	samples = append(samples, silence(500, rate)...)

	f, err := Extract(Segment{Data: encodePCM16(samples), SampleRate: rate})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.DurationMs != 1000 {
		t.Fatalf("expected 1000ms, got %d", f.DurationMs)
	}
	if f.SpeechRatio < 0.35 || f.SpeechRatio > 0.65 {
		t.Fatalf("expected roughly half speech, got %v", f.SpeechRatio)
	}
}

func TestExtract_CountsPauses(t *testing.T) {
	rate := 8000
	var samples []int16
	samples = append(samples, tone(300, 400, rate, 0.5)...)
	samples = append(samples, silence(400, rate)...)
	samples = append(samples, tone(300, 400, rate, 0.5)...)

	f, err := Extract(Segment{Data: encodePCM16(samples), SampleRate: rate})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.PauseCount != 1 {
		t.Fatalf("expected 1 pause, got %d", f.PauseCount)
	}
	if f.LongestRunMs < 300 || f.LongestRunMs > 500 {
		t.Fatalf("expected longest run near 400ms, got %d", f.LongestRunMs)
	}
}

func TestTail_ReturnsRequestedWindow(t *testing.T) {
	rate := 8000
	samples := tone(440, 2000, rate, 0.5)
	tail := Tail(Segment{Data: encodePCM16(samples), SampleRate: rate}, 500)
	if len(tail) != rate/2 {
		t.Fatalf("expected %d samples, got %d", rate/2, len(tail))
	}
}

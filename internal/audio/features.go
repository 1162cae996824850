package audio

import (
	"errors"
	"math"
)

// Segment is a raw audio buffer handed to the pipeline for one detection
// call. It is owned by the caller; nothing below this boundary retains a
// reference to it past the call.
//
// Encoding: 16-bit signed little-endian PCM, mono.
type Segment struct {
	Data       []byte
	SampleRate int
}

const defaultSampleRate = 8000

// frameMs is the analysis window used for energy and speech framing.
const frameMs = 20

var ErrEmptySegment = errors.New("audio: empty segment")

// Features are the low-level acoustic descriptors consumed by the
// classifier and the beep detector.
type Features struct {
	DurationMs int
	SampleRate int

	// Energy is the mean absolute amplitude normalized to [0,1].
	Energy float64
	// EnergyVariance is the variance of per-frame energy. Machine greetings
	// tend to be flatter than live speech.
	EnergyVariance float64
	// ZeroCrossRate is the mean zero-crossing rate per frame.
	ZeroCrossRate float64

	// SpeechRatio is the fraction of frames above the speech energy floor.
	SpeechRatio float64
	// PauseCount is the number of silence gaps of at least 250 ms between
	// speech frames.
	PauseCount int
	// LongestRunMs is the longest uninterrupted run of speech frames.
	LongestRunMs int
}

// Extract computes acoustic features over one segment. It performs no
// allocation proportional to input size beyond the decoded sample view.
func Extract(seg Segment) (Features, error) {
	if len(seg.Data) < 2 {
		return Features{}, ErrEmptySegment
	}
	rate := seg.SampleRate
	if rate <= 0 {
		rate = defaultSampleRate
	}

	samples := DecodePCM16(seg.Data)
	frameLen := rate * frameMs / 1000
	if frameLen == 0 {
		return Features{}, ErrEmptySegment
	}

	f := Features{
		SampleRate: rate,
		DurationMs: len(samples) * 1000 / rate,
	}

	var frameEnergies []float64
	var totalAbs float64
	var totalCross int

	for start := 0; start+frameLen <= len(samples); start += frameLen {
		frame := samples[start : start+frameLen]
		var sumAbs float64
		crossings := 0
		for i, s := range frame {
			sumAbs += math.Abs(float64(s)) / 32768.0
			if i > 0 && (frame[i-1] < 0) != (s < 0) {
				crossings++
			}
		}
		frameEnergies = append(frameEnergies, sumAbs/float64(frameLen))
		totalAbs += sumAbs
		totalCross += crossings
	}
	if len(frameEnergies) == 0 {
		return Features{}, ErrEmptySegment
	}

	f.Energy = totalAbs / float64(len(frameEnergies)*frameLen)
	f.ZeroCrossRate = float64(totalCross) / float64(len(frameEnergies)*frameLen)

	var mean float64
	for _, e := range frameEnergies {
		mean += e
	}
	mean /= float64(len(frameEnergies))
	var variance float64
	for _, e := range frameEnergies {
		variance += (e - mean) * (e - mean)
	}
	f.EnergyVariance = variance / float64(len(frameEnergies))

	// Speech framing. The floor is relative to observed energy so quiet
	// lines do not register as pure silence.
	floor := mean * 0.3
	if floor < 0.005 {
		floor = 0.005
	}

	speechFrames := 0
	runFrames := 0
	longestRun := 0
	silenceRun := 0
	seenSpeech := false
	const pauseFrames = 250 / frameMs

	for _, e := range frameEnergies {
		if e >= floor {
			if seenSpeech && silenceRun >= pauseFrames {
				f.PauseCount++
			}
			seenSpeech = true
			silenceRun = 0
			speechFrames++
			runFrames++
			if runFrames > longestRun {
				longestRun = runFrames
			}
		} else {
			silenceRun++
			runFrames = 0
		}
	}

	f.SpeechRatio = float64(speechFrames) / float64(len(frameEnergies))
	f.LongestRunMs = longestRun * frameMs
	return f, nil
}

// DecodePCM16 converts little-endian 16-bit PCM bytes to samples.
// A trailing odd byte is dropped.
func DecodePCM16(data []byte) []int16 {
	n := len(data) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
	}
	return out
}

// Tail returns up to the last d milliseconds of the segment as samples.
func Tail(seg Segment, ms int) []int16 {
	rate := seg.SampleRate
	if rate <= 0 {
		rate = defaultSampleRate
	}
	samples := DecodePCM16(seg.Data)
	n := rate * ms / 1000
	if n >= len(samples) {
		return samples
	}
	return samples[len(samples)-n:]
}

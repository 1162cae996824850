package amd

import (
	"math"

	"call-disposition/internal/audio"
)

// BeepDetector scans the tail of a segment for an answering-machine tone
// using Goertzel filters at the common voicemail beep frequencies.
type BeepDetector struct {
	// TailMs is how much trailing audio to scan. Beeps terminate machine
	// greetings, so only the tail matters.
	TailMs int

	// Frequencies to probe, in Hz.
	Frequencies []float64

	// MinToneMs is the minimum sustained tone duration to count as a beep.
	MinToneMs int
}

func NewBeepDetector() *BeepDetector {
	return &BeepDetector{
		TailMs:      1500,
		Frequencies: []float64{900, 1000, 1400},
		MinToneMs:   180,
	}
}

// Detect runs the tone scan. It never fails; an undecodable segment simply
// reports no beep.
func (d *BeepDetector) Detect(seg audio.Segment) BeepResult {
	rate := seg.SampleRate
	if rate <= 0 {
		rate = 8000
	}
	samples := audio.Tail(seg, d.TailMs)
	const windowMs = 60
	win := rate * windowMs / 1000
	if win == 0 || len(samples) < win {
		return BeepResult{}
	}

	best := BeepResult{}
	for _, freq := range d.Frequencies {
		if freq >= float64(rate)/2 {
			continue
		}
		run := 0
		runStart := 0
		for start := 0; start+win <= len(samples); start += win {
			window := samples[start : start+win]
			ratio := goertzelRatio(window, freq, rate)
			// A beep window concentrates most energy at the probe bin.
			if ratio > 0.5 {
				if run == 0 {
					runStart = start
				}
				run++
			} else {
				run = 0
			}
			toneMs := run * windowMs
			if toneMs >= d.MinToneMs {
				conf := math.Min(0.95, 0.6+float64(toneMs-d.MinToneMs)/1000.0)
				if conf > best.Confidence {
					offsetSamples := len(audio.DecodePCM16(seg.Data)) - len(samples) + runStart
					best = BeepResult{
						Detected:    true,
						FrequencyHz: freq,
						OffsetMs:    offsetSamples * 1000 / rate,
						Confidence:  conf,
					}
				}
			}
		}
	}
	return best
}

// goertzelRatio returns the fraction of window energy captured by the
// Goertzel filter at the target frequency.
func goertzelRatio(window []int16, freq float64, rate int) float64 {
	n := len(window)
	if n == 0 {
		return 0
	}
	k := 0.5 + float64(n)*freq/float64(rate)
	omega := 2 * math.Pi * math.Floor(k) / float64(n)
	coeff := 2 * math.Cos(omega)

	var q0, q1, q2 float64
	var total float64
	for _, s := range window {
		v := float64(s) / 32768.0
		q0 = coeff*q1 - q2 + v
		q2 = q1
		q1 = q0
		total += v * v
	}
	if total == 0 {
		return 0
	}
	power := q1*q1 + q2*q2 - coeff*q1*q2
	return power / (total * float64(n) / 2)
}

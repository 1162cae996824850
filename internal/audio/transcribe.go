package audio

import "context"

// Transcriber renders a speech-to-text transcript for one segment.
//
// Real deployments plug a telephony STT provider in here; the detection
// pipeline only consumes the resulting text. Implementations must not
// retain the segment after the call returns.
type Transcriber interface {
	Transcribe(ctx context.Context, seg Segment) (string, error)
}

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc func(ctx context.Context, seg Segment) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, seg Segment) (string, error) {
	return f(ctx, seg)
}

// NoopTranscriber returns an empty transcript. Used when no STT provider
// is wired; cultural matching then reports no markers.
func NoopTranscriber() Transcriber {
	return TranscriberFunc(func(ctx context.Context, seg Segment) (string, error) {
		return "", nil
	})
}

// Package tts wraps speech synthesis. Audio generation is best-effort
// everywhere in the pipeline; a failed synthesis never fails a request.
package tts

import "context"

// Synthesizer converts a script to spoken audio bytes (mp3)
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	GetName() string
}

// Package tts turns broadcast text into an audio file.
package tts

import (
	"context"
	"errors"
)

// ErrUnavailable means the engine cannot run in this environment. Callers
// treat it as "no audio" rather than a failure.
var ErrUnavailable = errors.New("tts engine unavailable")

type Engine interface {
	Synthesize(ctx context.Context, text, path string) error
	Name() string
}

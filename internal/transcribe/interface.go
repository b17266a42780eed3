package transcribe

import (
	"context"

	"github.com/Datle-2003/video-subtitle-generator/internal/subtitle"
)

// Transcriber converts an extracted audio file into timed segments.
// Implementations return the detected language code when the backend
// reports one, "" otherwise.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, language string) ([]subtitle.Segment, string, error)
}

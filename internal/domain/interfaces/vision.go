package interfaces

import (
	"context"
	"time"

	domaintypes "fortunecookie/internal/domain/types"
)

// ModelLoader loads a hand-landmark inference model.
type ModelLoader interface {
	LoadModel(ctx context.Context) (HandModel, error)
}

// HandModel runs hand-landmark inference on video frames. Close releases
// the model and must be safe to call more than once.
type HandModel interface {
	DetectHands(
		ctx context.Context,
		frame domaintypes.Frame,
		timestamp time.Duration,
	) ([]domaintypes.Hand, error)
	Close() error
}

// Camera opens the capture device. Open returns domain.ErrCameraDenied when
// the user refuses access.
type Camera interface {
	Open(ctx context.Context) (VideoStream, error)
}

// VideoStream is an opened camera. Close stops the device and must be safe
// to call more than once.
type VideoStream interface {
	// AwaitMetadata blocks until the stream reports its dimensions and can
	// deliver frames.
	AwaitMetadata(ctx context.Context) error
	CurrentFrame() (domaintypes.Frame, error)
	Close() error
}

package gesture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/metrics"
)

// session is one enable-to-release lifetime. All fields are owned by the
// goroutine running run.
type session struct {
	engine   *Engine
	gen      uint64
	detector *Detector
	log      *slog.Logger
	metrics  *metrics.GestureMetrics

	model  domain.HandModel
	stream domain.VideoStream
}

func (s *session) run(ctx context.Context) {
	defer s.release()

	if err := s.acquire(ctx); err != nil {
		if ctx.Err() != nil {
			s.engine.transition(s.gen, StateDisabled, nil)
			return
		}
		s.engine.transition(s.gen, StateError, err)
		return
	}
	if !s.engine.transition(s.gen, StateTracking, nil) {
		return
	}
	s.track(ctx)
	s.engine.transition(s.gen, StateDisabled, nil)
}

// acquire loads the model and opens the camera. Liveness is checked after
// every blocking step; anything obtained after the session was cancelled is
// released on return.
func (s *session) acquire(ctx context.Context) error {
	cfg := s.engine.cfg
	initCtx, cancel := context.WithTimeout(ctx, cfg.InitTimeout)
	defer cancel()

	if !s.engine.transition(s.gen, StateModelLoading, nil) {
		return context.Canceled
	}
	model, err := s.engine.loader.LoadModel(initCtx)
	if model != nil {
		s.model = model
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		if initCtx.Err() != nil {
			return fmt.Errorf("%w: after %s", domain.ErrInitTimeout, cfg.InitTimeout)
		}
		return fmt.Errorf("%w: %w", domain.ErrModelLoad, err)
	}
	if s.model == nil {
		return fmt.Errorf("%w: loader returned no model", domain.ErrModelLoad)
	}

	if !s.engine.transition(s.gen, StateCameraPending, nil) {
		return context.Canceled
	}
	stream, err := s.engine.camera.Open(initCtx)
	if stream != nil {
		s.stream = stream
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCameraDenied):
			return err
		case initCtx.Err() != nil:
			return fmt.Errorf("%w: waiting for camera", domain.ErrInitTimeout)
		}
		return fmt.Errorf("%w: %w", domain.ErrCameraUnavailable, err)
	}
	if s.stream == nil {
		return fmt.Errorf("%w: camera returned no stream", domain.ErrCameraUnavailable)
	}

	metaCtx, cancelMeta := context.WithTimeout(initCtx, cfg.CameraTimeout)
	defer cancelMeta()
	err = s.stream.AwaitMetadata(metaCtx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		switch {
		case initCtx.Err() != nil:
			return fmt.Errorf("%w: waiting for camera metadata", domain.ErrInitTimeout)
		case metaCtx.Err() != nil:
			return fmt.Errorf("%w: no metadata after %s", domain.ErrCameraStalled, cfg.CameraTimeout)
		}
		return fmt.Errorf("%w: %w", domain.ErrCameraUnavailable, err)
	}
	return nil
}

// track runs the frame loop until the session is cancelled. A cycle is
// scheduled only after the previous inference returned.
func (s *session) track(ctx context.Context) {
	cfg := s.engine.cfg
	start := cfg.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.cycle(ctx, cfg.Now().Sub(start))
		if ctx.Err() != nil {
			return
		}
		timer.Reset(cfg.FrameInterval)
	}
}

func (s *session) cycle(ctx context.Context, ts time.Duration) {
	frame, err := s.stream.CurrentFrame()
	if err != nil {
		s.log.Debug("no frame", "err", err)
		return
	}
	hands, err := s.model.DetectHands(ctx, frame, ts)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("hand detection failed", "seq", frame.Seq, "err", err)
		}
		return
	}
	s.metrics.RecordFrame()

	report := FrameReport{Seq: frame.Seq}
	for _, h := range hands {
		if p, ok := h.Reference(); ok {
			report.References = append(report.References, p)
		}
	}
	if a, b, ok := Pair(hands); ok {
		report.HasPair = true
		report.Distance = Distance(a, b)
		report.Triggered = s.detector.Observe(report.Distance)
	}
	if s.engine.onFrame != nil {
		s.engine.onFrame(report)
	}
	if report.Triggered && ctx.Err() == nil {
		s.metrics.RecordTrigger()
		s.log.Info("crack gesture detected", "seq", frame.Seq, "distance", report.Distance)
		s.engine.onTrigger()
	}
}

// release closes whatever the session still holds. Safe to call twice.
func (s *session) release() {
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			s.log.Debug("close camera", "err", err)
		}
		s.stream = nil
	}
	if s.model != nil {
		if err := s.model.Close(); err != nil {
			s.log.Debug("close model", "err", err)
		}
		s.model = nil
	}
}

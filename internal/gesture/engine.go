package gesture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/observability/metrics"
)

// State is where a gesture session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateModelLoading
	StateCameraPending
	StateTracking
	StateError
	StateDisabled
)

var stateNames = [...]string{"idle", "model_loading", "camera_pending", "tracking", "error", "disabled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Diagnostics shown when a session ends in StateError.
const (
	MsgInitTimeout       = "Hand tracking took too long to load. Please enable camera access or try again."
	MsgModelLoad         = "Failed to load hand tracking. Please try again."
	MsgCameraDenied      = "Hand gesture mode requires camera access. You can still crack cookies manually."
	MsgCameraStalled     = "Camera stream failed to load."
	MsgCameraUnavailable = "Camera access failed. Please check permissions or try again."
)

// Diagnostic maps a session error to its message.
func Diagnostic(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInitTimeout):
		return MsgInitTimeout
	case errors.Is(err, domain.ErrCameraDenied):
		return MsgCameraDenied
	case errors.Is(err, domain.ErrCameraStalled):
		return MsgCameraStalled
	case errors.Is(err, domain.ErrModelLoad):
		return MsgModelLoad
	}
	return MsgCameraUnavailable
}

// Config tunes the engine. Zero fields take the defaults.
type Config struct {
	// InitTimeout bounds everything from model loading until the camera
	// delivers metadata.
	InitTimeout time.Duration

	// CameraTimeout bounds the wait for metadata once the camera is open.
	CameraTimeout time.Duration

	FrameInterval time.Duration
	Low           float64
	High          float64
	Refractory    time.Duration
	Now           func() time.Time
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		InitTimeout:   10 * time.Second,
		CameraTimeout: 5 * time.Second,
		FrameInterval: 33 * time.Millisecond,
		Low:           DefaultLow,
		High:          DefaultHigh,
		Refractory:    DefaultRefractory,
		Now:           time.Now,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.InitTimeout <= 0 {
		c.InitTimeout = def.InitTimeout
	}
	if c.CameraTimeout <= 0 {
		c.CameraTimeout = def.CameraTimeout
	}
	if c.FrameInterval < 0 {
		c.FrameInterval = 0
	}
	if c.Low == 0 && c.High == 0 {
		c.Low, c.High = def.Low, def.High
	}
	if c.Refractory == 0 {
		c.Refractory = def.Refractory
	}
	if c.Now == nil {
		c.Now = def.Now
	}
	return c
}

// FrameReport describes one processed frame for overlays.
type FrameReport struct {
	Seq        uint64
	References []domain.Landmark
	Distance   float64
	HasPair    bool
	Triggered  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = logging.OrDefault(l) } }

// OnTrigger sets the trigger callback. It runs on the session goroutine and
// must not block.
func OnTrigger(fn func()) Option { return func(e *Engine) { e.onTrigger = fn } }

// OnFrame sets an observer for processed frames. It runs on the session
// goroutine and must not block.
func OnFrame(fn func(FrameReport)) Option { return func(e *Engine) { e.onFrame = fn } }

// OnState sets an observer for state changes.
func OnState(fn func(State, error)) Option { return func(e *Engine) { e.onState = fn } }

// Engine turns a camera and a hand model into trigger events. At most one
// session is live at a time; each session owns its model and camera
// exclusively and releases both before it ends.
type Engine struct {
	loader domain.ModelLoader
	camera domain.Camera
	cfg    Config
	log    *slog.Logger

	onTrigger func()
	onFrame   func(FrameReport)
	onState   func(State, error)

	mu     sync.Mutex
	state  State
	err    error
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an idle Engine.
func New(loader domain.ModelLoader, camera domain.Camera, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		loader:    loader,
		camera:    camera,
		cfg:       cfg.withDefaults(),
		log:       logging.Discard(),
		onTrigger: func() {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enable starts a fresh session unless one is already running. A session
// that ended in StateError is replaced. Cancelling ctx tears the session
// down the same way Disable does.
func (e *Engine) Enable(ctx context.Context) {
	e.mu.Lock()
	if e.done != nil {
		select {
		case <-e.done:
		default:
			e.mu.Unlock()
			return
		}
	}
	e.gen++
	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		engine:   e,
		gen:      e.gen,
		detector: NewDetector(e.cfg.Low, e.cfg.High, e.cfg.Refractory, e.cfg.Now),
		log:      e.log.With("session", e.gen),
		metrics:  metrics.Gesture(),
	}
	e.cancel, e.done = cancel, make(chan struct{})
	done := e.done
	e.mu.Unlock()

	e.transition(s.gen, StateIdle, nil)
	go func() {
		defer close(done)
		s.run(sctx)
	}()
}

// Disable ends the current session and returns once its camera and model
// have been released. Calling it with no live session is a no-op apart from
// the state change.
func (e *Engine) Disable() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	e.transition(gen, StateDisabled, nil)
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error that put the last session into StateError.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Done is closed when the current session has ended and released its
// resources. It is nil before the first Enable.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// transition applies a state change from generation gen. Changes from a
// session that has been superseded are dropped.
func (e *Engine) transition(gen uint64, to State, err error) bool {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return false
	}
	if e.state == to && err == nil {
		e.mu.Unlock()
		return true
	}
	e.state, e.err = to, err
	e.mu.Unlock()

	metrics.Gesture().RecordTransition(to.String())
	if err != nil {
		e.log.Warn("gesture session failed", "state", to.String(), "err", err)
	} else {
		e.log.Debug("gesture state", "state", to.String())
	}
	if e.onState != nil {
		e.onState(to, err)
	}
	return true
}

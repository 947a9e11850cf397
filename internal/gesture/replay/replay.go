package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"fortunecookie/internal/domain"
)

// Trace scripts a camera and a hand model.
//
//	model:
//	  load_delay: 200ms
//	camera:
//	  open_delay: 100ms
//	frames:
//	  - hands:
//	      - landmarks: [{x: 0.45, y: 0.5}]
//	      - landmarks: [{x: 0.55, y: 0.5}]
//	    repeat: 5
type Trace struct {
	Model  ModelScript   `yaml:"model"`
	Camera CameraScript  `yaml:"camera"`
	Frames []FrameScript `yaml:"frames"`
}

// ModelScript controls LoadModel. A non-empty Fail makes loading fail with
// that message.
type ModelScript struct {
	LoadDelay time.Duration `yaml:"load_delay"`
	Fail      string        `yaml:"fail"`
}

// CameraScript controls Open and AwaitMetadata. Stall keeps the stream from
// ever reporting metadata.
type CameraScript struct {
	OpenDelay   time.Duration `yaml:"open_delay"`
	Deny        bool          `yaml:"deny"`
	Unavailable string        `yaml:"unavailable"`
	Stall       bool          `yaml:"stall"`
}

// FrameScript is the inference result for Repeat consecutive frames
// (at least one).
type FrameScript struct {
	Hands  []domain.Hand `yaml:"hands"`
	Repeat int           `yaml:"repeat"`
}

// Source plays a Trace. It is both the model loader and the camera.
type Source struct {
	trace  Trace
	frames [][]domain.Hand

	next     atomic.Uint64
	finished chan struct{}
	once     sync.Once

	modelsOpen  atomic.Int32
	streamsOpen atomic.Int32
}

// Load reads a trace file.
func Load(path string) (*Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	src, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Parse decodes a YAML trace. Unknown keys are rejected.
func Parse(b []byte) (*Source, error) {
	var tr Trace
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return New(tr), nil
}

// New returns a Source for tr.
func New(tr Trace) *Source {
	s := &Source{trace: tr, finished: make(chan struct{})}
	for _, f := range tr.Frames {
		n := max(f.Repeat, 1)
		for i := 0; i < n; i++ {
			s.frames = append(s.frames, f.Hands)
		}
	}
	return s
}

// Len is the number of scripted frames.
func (s *Source) Len() int { return len(s.frames) }

// Finished is closed once every scripted frame has been through inference.
func (s *Source) Finished() <-chan struct{} { return s.finished }

// Open reports how many models and streams are held and not yet closed.
func (s *Source) Open() (models, streams int) {
	return int(s.modelsOpen.Load()), int(s.streamsOpen.Load())
}

// LoadModel implements domain.ModelLoader.
func (s *Source) LoadModel(ctx context.Context) (domain.HandModel, error) {
	if err := sleep(ctx, s.trace.Model.LoadDelay); err != nil {
		return nil, err
	}
	if s.trace.Model.Fail != "" {
		return nil, errors.New(s.trace.Model.Fail)
	}
	s.modelsOpen.Add(1)
	return &model{src: s}, nil
}

// Camera returns the camera half of the source.
func (s *Source) Camera() domain.Camera { return camera{src: s} }

type camera struct{ src *Source }

func (c camera) Open(ctx context.Context) (domain.VideoStream, error) {
	sc := c.src.trace.Camera
	if err := sleep(ctx, sc.OpenDelay); err != nil {
		return nil, err
	}
	if sc.Deny {
		return nil, domain.ErrCameraDenied
	}
	if sc.Unavailable != "" {
		return nil, errors.New(sc.Unavailable)
	}
	c.src.streamsOpen.Add(1)
	return &stream{src: c.src, start: time.Now()}, nil
}

type stream struct {
	src    *Source
	start  time.Time
	closed atomic.Bool
}

func (st *stream) AwaitMetadata(ctx context.Context) error {
	if st.src.trace.Camera.Stall {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (st *stream) CurrentFrame() (domain.Frame, error) {
	if st.closed.Load() {
		return domain.Frame{}, errors.New("stream closed")
	}
	return domain.Frame{
		Seq:        st.src.next.Add(1) - 1,
		Width:      640,
		Height:     480,
		CapturedAt: time.Now(),
	}, nil
}

func (st *stream) Close() error {
	if st.closed.CompareAndSwap(false, true) {
		st.src.streamsOpen.Add(-1)
	}
	return nil
}

type model struct {
	src    *Source
	closed atomic.Bool
}

// DetectHands returns the scripted hands for frame.Seq and no hands once the
// script is exhausted.
func (m *model) DetectHands(ctx context.Context, frame domain.Frame, _ time.Duration) ([]domain.Hand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.closed.Load() {
		return nil, errors.New("model closed")
	}
	frames := m.src.frames
	if frame.Seq+1 >= uint64(len(frames)) {
		m.src.once.Do(func() { close(m.src.finished) })
	}
	if frame.Seq >= uint64(len(frames)) {
		return nil, nil
	}
	return frames[frame.Seq], nil
}

func (m *model) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.src.modelsOpen.Add(-1)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compile-time assertions.
var (
	_ domain.ModelLoader = (*Source)(nil)
	_ domain.Camera      = camera{}
)

// Package service implements the request handler and the process lifecycle
// of the search service: load the artifact once, then answer queries against
// the shared read-only runtime.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle state of a Service.
type State int32

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Loader builds the runtime. It runs once, during the Loading state.
type Loader func(ctx context.Context) (*Runtime, error)

// Service owns the lifecycle. Start moves it from Uninitialized through
// Loading to Ready or Failed; there is no way back.
type Service struct {
	load    Loader
	logger  *slog.Logger
	once    sync.Once
	state   atomic.Int32
	handler atomic.Pointer[Handler]
	err     error // set before the state becomes Failed
}

// New creates an uninitialized service.
func New(load Loader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{load: load, logger: logger}
}

// Start runs the loader exactly once. Later calls return the first outcome.
func (s *Service) Start(ctx context.Context) error {
	s.once.Do(func() {
		s.state.Store(int32(Loading))
		started := time.Now()
		s.logger.Info("service loading")
		rt, err := s.runLoader(ctx)
		if err != nil {
			s.err = asStartupError(err)
			s.state.Store(int32(Failed))
			s.logger.Error("service failed to start", "error", s.err, "elapsed", time.Since(started))
			return
		}
		s.handler.Store(NewHandler(rt, s.logger))
		s.state.Store(int32(Ready))
		s.logger.Info("service ready",
			"documents", rt.Store.Len(),
			"dim", rt.Engine.Dim(),
			"metric", rt.Engine.Metric(),
			"index", rt.Store.Index().Kind(),
			"embedder", rt.Embedder.Name(),
			"artifact", rt.Store.ArtifactID(),
			"elapsed", time.Since(started))
	})
	if s.State() == Failed {
		return s.err
	}
	return nil
}

func (s *Service) runLoader(ctx context.Context) (rt *Runtime, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StartupError{Op: "load", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.load(ctx)
}

func asStartupError(err error) error {
	var se *StartupError
	if errors.As(err, &se) {
		return err
	}
	return &StartupError{Op: "load", Err: err}
}

// State returns the current lifecycle state.
func (s *Service) State() State { return State(s.state.Load()) }

// Err returns the startup error of a Failed service.
func (s *Service) Err() error {
	if s.State() != Failed {
		return nil
	}
	return s.err
}

// Runtime returns the shared runtime of a Ready service, nil otherwise.
func (s *Service) Runtime() *Runtime {
	if h := s.handler.Load(); h != nil {
		return h.rt
	}
	return nil
}

// Handle dispatches one request. Outside Ready it answers 503 with a fixed body.
func (s *Service) Handle(ctx context.Context, raw []byte) Response {
	switch s.State() {
	case Ready:
		return s.handler.Load().Handle(ctx, raw)
	case Failed:
		return Response{Status: http.StatusServiceUnavailable, Body: startupFailedBody}
	}
	return Response{Status: http.StatusServiceUnavailable, Body: notReadyBody}
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

// DefaultSynthesisTimeout bounds a single remote synthesis call.
const DefaultSynthesisTimeout = 60 * time.Second

// State is the synthesis session lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// SessionSnapshot is a read-only copy of a Session.
type SessionSnapshot struct {
	State   State
	Source  *Source
	Style   *domain.Style
	Result  string
	Failure error
}

// Session tracks one synthesis attempt: Idle -> Submitting -> Succeeded|Failed.
// Succeeded and Failed are terminal until Reset.
type Session struct {
	synth   domain.Synthesizer
	timeout time.Duration
	logger  *infra.Logger

	mu      sync.Mutex
	state   State
	source  *Source
	style   *domain.Style
	result  string
	failure error
	// epoch increments on Reset so a late outcome from an abandoned call is
	// dropped instead of landing in a fresh session.
	epoch uint64
}

// NewSession creates an idle session. A non-positive timeout falls back to
// DefaultSynthesisTimeout.
func NewSession(synth domain.Synthesizer, timeout time.Duration, logger *infra.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultSynthesisTimeout
	}
	return &Session{
		synth:   synth,
		timeout: timeout,
		logger:  infra.OrNop(logger),
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot copies the session.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{State: s.state, Result: s.result, Failure: s.failure}
	if s.source != nil {
		src := *s.source
		snap.Source = &src
	}
	if s.style != nil {
		st := *s.style
		snap.Style = &st
	}
	return snap
}

// SetSource replaces the source image. Only allowed while idle.
func (s *Session) SetSource(src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("%w: %s", domain.ErrSessionLocked, s.state)
	}
	s.source = &src
	return nil
}

// SetStyle replaces or clears (nil) the style. Only allowed while idle.
func (s *Session) SetStyle(style *domain.Style) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("%w: %s", domain.ErrSessionLocked, s.state)
	}
	if style == nil {
		s.style = nil
		return nil
	}
	st := *style
	s.style = &st
	return nil
}

// Ready reports whether Submit's preconditions hold.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Session) readyLocked() bool {
	return s.state == StateIdle && s.source != nil && s.source.Synthesizable() && s.style != nil
}

type synthOutcome struct {
	image string
	err   error
}

// Submit runs the remote synthesis and blocks until it succeeds, fails or
// times out. The returned error carries domain.ErrSynthesisTimeout or
// domain.ErrSynthesisRejected on failure; precondition violations are
// returned without changing state.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return domain.ErrSubmissionInFlight
	case StateSucceeded, StateFailed:
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrSessionTerminal, s.state)
	}
	if !s.readyLocked() {
		s.mu.Unlock()
		return domain.ErrNotReady
	}
	if s.synth == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no synthesizer configured", domain.ErrNotReady)
	}
	image, _ := s.source.SynthesisInput()
	styleID := s.style.ID
	epoch := s.epoch
	s.state = StateSubmitting
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info().Str("style_id", styleID).Int("bytes", len(image.Data)).Msg("synthesis submitted")

	result, err := s.call(ctx, image, styleID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Info().Str("style_id", styleID).Msg("synthesis outcome discarded after reset")
		return domain.ErrSessionReset
	}
	if err != nil {
		s.state = StateFailed
		s.failure = err
		s.logger.Warn().Err(err).Str("kind", domain.KindOf(err)).Dur("took", time.Since(start)).Msg("synthesis failed")
		return err
	}
	s.state = StateSucceeded
	s.result = result
	s.logger.Info().Str("style_id", styleID).Dur("took", time.Since(start)).Msg("synthesis succeeded")
	return nil
}

// call issues the remote request detached from the caller so a synthesizer
// that ignores its context still cannot hold the session past the deadline.
func (s *Session) call(ctx context.Context, image domain.RawBinary, styleID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan synthOutcome, 1)
	go func() {
		img, err := s.synth.Synthesize(callCtx, image, styleID)
		done <- synthOutcome{image: img, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: %w", domain.ErrSynthesisTimeout, out.err)
			}
			return "", fmt.Errorf("%w: %w", domain.ErrSynthesisRejected, out.err)
		}
		if strings.TrimSpace(out.image) == "" {
			return "", fmt.Errorf("%w: no result image returned", domain.ErrSynthesisRejected)
		}
		return out.image, nil
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: no response within %s", domain.ErrSynthesisTimeout, s.timeout)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesisRejected, callCtx.Err())
	}
}

// Reset returns the session to Idle and clears source, style and result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.state = StateIdle
	s.source = nil
	s.style = nil
	s.result = ""
	s.failure = nil
}

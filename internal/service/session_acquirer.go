package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
)

const (
	// defaultAcquireTimeout bounds the provider's current-session call.
	defaultAcquireTimeout = 8 * time.Second
	// maxAcquireAttempts bounds repeated initialization failures per cache key.
	maxAcquireAttempts = 3
)

// SessionAcquirerOptions groups dependencies for SessionAcquirer.
type SessionAcquirerOptions struct {
	Provider  ports.IdentityProvider
	Snapshots ports.SessionSnapshotStore
	Timeout   time.Duration // default 8s when zero
	Logger    *slog.Logger
}

// SessionAcquirer obtains the current session from the identity provider with
// a hard timeout, degrading to the persisted snapshot when the provider is
// slow or unreachable. It never hangs the caller.
type SessionAcquirer struct {
	provider  ports.IdentityProvider
	snapshots ports.SessionSnapshotStore
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	attempts map[string]int
}

// NewSessionAcquirer constructs a new SessionAcquirer.
func NewSessionAcquirer(opts SessionAcquirerOptions) *SessionAcquirer {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultAcquireTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionAcquirer{
		provider:  opts.Provider,
		snapshots: opts.Snapshots,
		timeout:   timeout,
		logger:    logger,
		attempts:  make(map[string]int),
	}
}

// AcquireResult is the outcome of one acquisition attempt.
type AcquireResult struct {
	// Session is set when a session exists; zero otherwise.
	Session domainauth.Session
	// Authenticated reports whether a session (verified or not) was obtained.
	Authenticated bool
	// Unverified is set when the result came from the persisted snapshot
	// because the provider could not be reached in time.
	Unverified bool
	// Snapshot carries the fallback snapshot when Unverified is set.
	Snapshot domainauth.Snapshot
	// Checked reports whether the session check is complete for guard
	// purposes. Always true on return; callers rely on it after retries are
	// exhausted.
	Checked bool
}

// Acquire races the provider's session verification against the configured
// timeout. Stored must carry the last known tokens (zero value when none).
//
// Outcomes:
//   - provider answers with a session: verified result;
//   - provider answers "no session": unauthenticated, not an error;
//   - timeout or transport failure: snapshot fallback, flagged unverified on a
//     hit, error propagated on a miss.
//
// After maxAcquireAttempts consecutive failures for the same key the acquirer
// settles to unauthenticated-with-check-complete instead of erroring, so the
// caller's state machine can leave its loading state.
func (a *SessionAcquirer) Acquire(ctx context.Context, key string, stored domainauth.Session) (AcquireResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	sess, err := a.currentSession(ctx, stored)
	switch {
	case err == nil:
		a.resetAttempts(key)
		return AcquireResult{Session: sess, Authenticated: true, Checked: true}, nil

	case errors.Is(err, ports.ErrNoSession):
		a.resetAttempts(key)
		return AcquireResult{Checked: true}, nil
	}

	// Provider did not answer in time (or the transport failed): degrade.
	a.logger.Warn("session verification failed, trying persisted snapshot",
		"error", err, "timeout", a.timeout)

	snap, ok, loadErr := a.snapshots.Load(ctx, key)
	if loadErr != nil {
		a.logger.Warn("snapshot load failed during fallback", "error", loadErr)
		ok = false
	}
	if ok && snap.Authenticated {
		a.resetAttempts(key)
		return AcquireResult{
			Authenticated: true,
			Unverified:    true,
			Snapshot:      snap,
			Checked:       true,
		}, nil
	}

	if a.recordFailure(key) >= maxAcquireAttempts {
		a.logger.Warn("session acquisition attempts exhausted, settling unauthenticated", "key", key)
		a.resetAttempts(key)
		return AcquireResult{Checked: true}, nil
	}
	return AcquireResult{}, apperrors.Wrap(err, apperrors.ErrCodeNetworkOrTimeout, "could not verify session")
}

// currentSession runs the provider call in its own goroutine so a provider
// that ignores context cancellation still cannot block the caller past the
// deadline.
func (a *SessionAcquirer) currentSession(ctx context.Context, stored domainauth.Session) (domainauth.Session, error) {
	type answer struct {
		sess domainauth.Session
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		sess, err := a.provider.CurrentSession(ctx, stored)
		ch <- answer{sess, err}
	}()

	select {
	case an := <-ch:
		return an.sess, an.err
	case <-ctx.Done():
		return domainauth.Session{}, ctx.Err()
	}
}

func (a *SessionAcquirer) recordFailure(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts[key]++
	return a.attempts[key]
}

func (a *SessionAcquirer) resetAttempts(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.attempts, key)
}

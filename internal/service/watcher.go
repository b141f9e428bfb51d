package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
	"golang.org/x/sync/errgroup"
)

// PrincipalResolver resolves a session token into a principal.
// *AuthService is the production implementation.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (domainauth.Principal, error)
	Logout(ctx context.Context, uid, token string) error
}

// WatcherOptions groups dependencies for a session watcher.
type WatcherOptions struct {
	Token    string
	Events   ports.SessionEvents
	Resolver PrincipalResolver
	Logger   *slog.Logger
}

// Watcher holds the live auth state for one session token. It starts in the
// loading state, resolves the principal once, then follows the identity
// platform's session-change stream until closed. Subscribers are notified on
// every state change; the state is monotonic and never regresses to loading.
type Watcher struct {
	token    string
	events   ports.SessionEvents
	resolver PrincipalResolver
	logger   *slog.Logger

	mu     sync.Mutex
	snap   domainauth.Snapshot
	subs   map[string]chan domainauth.Snapshot
	uid    string
	closed bool

	// ready closes once the initial resolution settles, success or not.
	ready chan struct{}

	cancel context.CancelFunc
	group  *errgroup.Group
}

// StartWatcher creates a watcher and begins resolving in the background.
// The returned watcher reports Loading until the first resolution completes.
func StartWatcher(ctx context.Context, opts WatcherOptions) (*Watcher, error) {
	if opts.Token == "" {
		return nil, errors.New("token is required")
	}
	if opts.Events == nil {
		return nil, errors.New("session events source is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("principal resolver is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	group, runCtx := errgroup.WithContext(runCtx)

	w := &Watcher{
		token:    opts.Token,
		events:   opts.Events,
		resolver: opts.Resolver,
		logger:   logger,
		snap:     domainauth.Snapshot{Loading: true},
		subs:     make(map[string]chan domainauth.Snapshot),
		ready:    make(chan struct{}),
		cancel:   cancel,
		group:    group,
	}

	group.Go(func() error {
		w.run(runCtx)
		return nil
	})

	return w, nil
}

// run performs the initial resolution, then follows the session stream.
func (w *Watcher) run(ctx context.Context) {
	principal, err := w.resolver.ResolvePrincipal(ctx, w.token)
	if err != nil {
		// Fail closed: any verification or profile failure is "no session".
		w.setPrincipal(nil)
		close(w.ready)
		return
	}
	w.mu.Lock()
	w.uid = principal.UID
	w.mu.Unlock()
	w.setPrincipal(&principal)
	close(w.ready)

	sub, err := w.events.Subscribe(ctx, principal.UID)
	if err != nil {
		w.logger.Warn("session stream subscribe failed, treating as signed out", "error", err)
		w.setPrincipal(nil)
		return
	}
	defer func() {
		if closeErr := sub.Close(); closeErr != nil {
			w.logger.Warn("session stream close failed", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			w.handle(ctx, event)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event domainauth.SessionEvent) {
	switch event.Kind {
	case domainauth.SessionRevoked:
		w.setPrincipal(nil)
	case domainauth.SessionActive:
		principal, err := w.resolver.ResolvePrincipal(ctx, w.token)
		if err != nil {
			w.setPrincipal(nil)
			return
		}
		w.setPrincipal(&principal)
	default:
		w.logger.Warn("unknown session event kind", "kind", event.Kind)
	}
}

// setPrincipal publishes a resolved snapshot. Loading is never set back to
// true for the same session.
func (w *Watcher) setPrincipal(principal *domainauth.Principal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	w.snap = domainauth.Snapshot{Loading: false, Principal: principal}
	for _, ch := range w.subs {
		// Replace a pending value rather than block: subscribers only care
		// about the latest state.
		select {
		case ch <- w.snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- w.snap
		}
	}
}

// Snapshot returns the current auth state.
func (w *Watcher) Snapshot() domainauth.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Subscribe registers for state-change notifications. The channel immediately
// carries the current state. The returned cancel func detaches the
// subscriber; it is safe to call more than once.
func (w *Watcher) Subscribe() (<-chan domainauth.Snapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan domainauth.Snapshot, 1)
	ch <- w.snap
	id := uuid.NewString()
	w.subs[id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Logout revokes the platform session and settles the state to signed out.
// The relay cookie is cleared by the HTTP layer.
func (w *Watcher) Logout(ctx context.Context) error {
	// Revocation needs the subject id from the initial resolution; wait for
	// it to settle so a logout issued mid-load still reaches the platform.
	select {
	case <-w.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	uid := w.uid
	w.mu.Unlock()

	err := w.resolver.Logout(ctx, uid, w.token)
	w.setPrincipal(nil)
	return err
}

// Close cancels the stream subscription and detaches all subscribers. No
// state update is delivered after Close returns.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.group.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return err
	}
	w.closed = true
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
	return err
}

// WatcherRegistry lazily creates one watcher per session token and shares it
// across requests, mirroring a per-tab auth context held process-wide.
type WatcherRegistry struct {
	mu       sync.Mutex
	watchers map[string]*Watcher
	events   ports.SessionEvents
	resolver PrincipalResolver
	logger   *slog.Logger
}

// RegistryOptions groups dependencies for the watcher registry.
type RegistryOptions struct {
	Events   ports.SessionEvents
	Resolver PrincipalResolver
	Logger   *slog.Logger
}

// NewWatcherRegistry constructs an empty registry.
func NewWatcherRegistry(opts RegistryOptions) *WatcherRegistry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WatcherRegistry{
		watchers: make(map[string]*Watcher),
		events:   opts.Events,
		resolver: opts.Resolver,
		logger:   logger,
	}
}

// Acquire returns the watcher for token, creating it on first use.
func (r *WatcherRegistry) Acquire(ctx context.Context, token string) (*Watcher, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.watchers[token]; ok {
		return w, nil
	}

	w, err := StartWatcher(ctx, WatcherOptions{
		Token:    token,
		Events:   r.events,
		Resolver: r.resolver,
		Logger:   r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.watchers[token] = w
	return w, nil
}

// Snapshot implements the guard-facing session source over the registry.
func (r *WatcherRegistry) Snapshot(ctx context.Context, token string) domainauth.Snapshot {
	if token == "" {
		return domainauth.Snapshot{}
	}
	w, err := r.Acquire(ctx, token)
	if err != nil {
		r.logger.WarnContext(ctx, "acquire watcher failed, treating as signed out", "error", err)
		return domainauth.Snapshot{}
	}
	return w.Snapshot()
}

// Drop closes and forgets the watcher for token, if any. Used on sign-out and
// cookie clear so a stale watcher does not outlive its session.
func (r *WatcherRegistry) Drop(token string) {
	r.mu.Lock()
	w, ok := r.watchers[token]
	if ok {
		delete(r.watchers, token)
	}
	r.mu.Unlock()

	if ok {
		if err := w.Close(); err != nil {
			r.logger.Warn("close watcher failed", "error", err)
		}
	}
}

// Close tears down every watcher. Called on service shutdown.
func (r *WatcherRegistry) Close() {
	r.mu.Lock()
	watchers := r.watchers
	r.watchers = make(map[string]*Watcher)
	r.mu.Unlock()

	for _, w := range watchers {
		if err := w.Close(); err != nil {
			r.logger.Warn("close watcher failed", "error", err)
		}
	}
}

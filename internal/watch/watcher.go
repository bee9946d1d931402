package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nearmark/nearmark/internal/domain"
	"github.com/nearmark/nearmark/internal/geo"
	"github.com/nearmark/nearmark/internal/notify"
	"github.com/nearmark/nearmark/internal/position"
)

// ErrAlreadyTracking is returned by Start while a previous session is live.
var ErrAlreadyTracking = errors.New("tracking already started")

// markerSource is the subset of store.MarkerStore the watcher requires.
type markerSource interface {
	List(ctx context.Context) ([]*domain.Marker, error)
}

type Config struct {
	// NotifyEveryUpdate re-dispatches a notification on every sample while
	// the user stays inside a marker's radius, matching the behavior of the
	// original mobile client. The default notifies only on entry and re-arms
	// when the user leaves the radius.
	NotifyEveryUpdate bool
}

// Watcher bridges a live position stream to proximity evaluation against the
// current marker set, dispatching one notification per match.
type Watcher struct {
	provider position.Provider
	markers  markerSource
	notifier notify.Notifier
	cfg      Config
	logger   *slog.Logger

	snapshot atomic.Pointer[[]*domain.Marker]

	mu      sync.Mutex
	running bool
	radius  float64
	cancel  context.CancelFunc
	done    chan struct{}

	// inside tracks which markers the user is currently within; touched only
	// by the run loop after Start resets it.
	inside map[string]bool
}

func New(provider position.Provider, markers markerSource, notifier notify.Notifier, cfg Config, logger *slog.Logger) *Watcher {
	w := &Watcher{
		provider: provider,
		markers:  markers,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
	empty := []*domain.Marker{}
	w.snapshot.Store(&empty)
	return w
}

// Start acquires an initial fix, loads the marker snapshot, and begins
// consuming the sample stream, notifying for markers strictly closer than
// radiusMeters. It fails with position.ErrPermissionDenied or
// position.ErrProviderUnavailable when no session can be established.
func (w *Watcher) Start(ctx context.Context, radiusMeters float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrAlreadyTracking
	}

	if _, err := w.provider.Current(ctx); err != nil {
		return fmt.Errorf("failed to acquire initial fix: %w", err)
	}

	if err := w.Refresh(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	samples, err := w.provider.Subscribe(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to position stream: %w", err)
	}

	w.inside = make(map[string]bool)
	w.radius = radiusMeters
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.run(runCtx, samples)

	w.logger.Info("tracking started", "radius_m", radiusMeters)
	return nil
}

// Stop cancels the position subscription and waits for the run loop to exit.
// Stopping a watcher that is not running is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	w.cancel()
	<-w.done
	w.running = false
	w.logger.Info("tracking stopped")
}

// Refresh re-fetches the marker snapshot used by the evaluation loop. The
// replacement is a single pointer swap, so an in-flight evaluation never sees
// a partially updated set.
func (w *Watcher) Refresh(ctx context.Context) error {
	markers, err := w.markers.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh marker snapshot: %w", err)
	}
	w.snapshot.Store(&markers)
	return nil
}

func (w *Watcher) run(ctx context.Context, samples <-chan domain.Position) {
	defer close(w.done)
	for sample := range samples {
		w.evaluate(ctx, sample)
	}
}

func (w *Watcher) evaluate(ctx context.Context, user domain.Position) {
	markers := *w.snapshot.Load()
	near := geo.Nearby(user, markers, w.radius)

	nowInside := make(map[string]bool, len(near))
	for _, id := range near {
		nowInside[id] = true
		if !w.cfg.NotifyEveryUpdate && w.inside[id] {
			continue
		}
		w.dispatch(ctx, user, markers, id)
	}
	w.inside = nowInside
}

func (w *Watcher) dispatch(ctx context.Context, user domain.Position, markers []*domain.Marker, id string) {
	body := fmt.Sprintf("You are near marker %s", id)
	for _, m := range markers {
		if m.ID == id {
			d := geo.Distance(user, domain.Position{Latitude: m.Latitude, Longitude: m.Longitude})
			body = fmt.Sprintf("You are near marker %s (%.0f m away)", id, d)
			break
		}
	}

	// One marker's failure must not prevent notifying the rest.
	if err := w.notifier.Notify(ctx, "Nearby marker", body); err != nil {
		w.logger.Error("failed to dispatch notification", "marker_id", id, "error", err)
	}
}

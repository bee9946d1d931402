package position

import (
	"context"
	"errors"

	"github.com/nearmark/nearmark/internal/domain"
)

var (
	// ErrPermissionDenied is returned when the platform refuses access to the
	// user's position. It is terminal for a tracking session.
	ErrPermissionDenied = errors.New("position permission denied")

	// ErrProviderUnavailable is returned when no position fix is obtainable.
	ErrProviderUnavailable = errors.New("position provider unavailable")
)

// Provider supplies live position samples.
//
// Current is the one-shot fix used when tracking starts. Subscribe returns a
// stream of samples in delivery order; the channel is closed when ctx is
// cancelled, which is the subscriber's teardown handle.
type Provider interface {
	Current(ctx context.Context) (domain.Position, error)
	Subscribe(ctx context.Context) (<-chan domain.Position, error)
}

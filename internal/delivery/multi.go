package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// MultiPusher pushes to several pushers in order. The recipient counts as
// active if any leg reports an active channel. Every leg is attempted; the
// errors are joined.
type MultiPusher []Pusher

// Push implements Pusher.
func (m MultiPusher) Push(ctx context.Context, recipientID uuid.UUID, event string, payload any) (bool, error) {
	var (
		active bool
		errs   []error
	)
	for _, p := range m {
		ok, err := p.Push(ctx, recipientID, event, payload)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		active = active || ok
	}
	return active, errors.Join(errs...)
}

package ports

import (
	"context"
	"errors"
)

// ErrInvalidRecipient reports a device token the push provider rejected as
// no longer valid. The dispatcher prunes such tokens instead of retrying.
var ErrInvalidRecipient = errors.New("recipient token is invalid")

// Notifier sends a push notification to a single device token.
type Notifier interface {
	Send(ctx context.Context, deviceToken string, title string, body string) error
}

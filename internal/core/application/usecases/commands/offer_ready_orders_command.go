package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrOfferReadyOrdersCommandIsNotConstructed = errors.New(
	"OfferReadyOrdersCommand must be created via NewOfferReadyOrdersCommand constructor",
)

// OfferReadyOrdersCommand re-offers every unclaimed ready order to drivers.
// The offer job runs it on a schedule so drivers that come online after an
// order first became ready still hear about it.
type OfferReadyOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewOfferReadyOrdersCommand creates a command to broadcast claimable orders.
// This is a parameterless command that covers all ready unassigned orders.
func NewOfferReadyOrdersCommand() OfferReadyOrdersCommand {
	return OfferReadyOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *OfferReadyOrdersCommand) Validate() error {
	return c.guard.Validate(ErrOfferReadyOrdersCommandIsNotConstructed)
}

package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Ledger is the only writer of on-hand stock. Implementations lock the stock
// row before reading it and keep the lock until the enclosing unit of work
// commits or rolls back, so two reservations against the same batch never
// commit more than was on hand when the first lock was taken.
type Ledger interface {
	// Reserve takes up to amount units and returns how many were taken.
	Reserve(ctx context.Context, id uuid.UUID, amount int) (int, error)
	// Release puts amount units back unconditionally.
	Release(ctx context.Context, id uuid.UUID, amount int) error
}

// Reservable returns how much of amount can be taken from onHand.
func Reservable(onHand, amount int) int {
	if amount <= 0 || onHand <= 0 {
		return 0
	}
	return min(amount, onHand)
}

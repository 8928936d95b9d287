package storefront

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound         = errors.New("product not found")
	ErrProductInUse            = errors.New("product is referenced by orders")
	ErrProductAlreadyListed    = errors.New("this stock item is already listed in the storefront")
	ErrProductUnavailable      = errors.New("product is not available online")
	ErrInvalidVariant          = errors.New("product kind does not match its stock reference")
	ErrCartNotFound            = errors.New("cart not found")
	ErrCartItemNotFound        = errors.New("cart item not found")
	ErrCartEmpty               = errors.New("cart is empty")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrExpiredMedicine         = errors.New("medicine batch has expired and cannot be sold")
)

// InsufficientStockError aborts a checkout. Nothing has been reserved when
// it is returned.
type InsufficientStockError struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.Name, e.Available, e.Requested)
}

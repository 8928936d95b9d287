package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrItemNotFound         = errors.New("prescription item not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInteractionNotFound  = errors.New("drug interaction not found")
	ErrInteractionExists    = errors.New("drug interaction pair already recorded")
	ErrDuplicateItem        = errors.New("medicine already has a line on this prescription")

	ErrInvalidQuantity      = errors.New("requested quantity must be at least 1")
	ErrBatchImmutable       = errors.New("the medicine batch of a prescription item cannot be changed; remove the item and add it again")
	ErrEmptyPrescription    = errors.New("prescription has no dispensed items")
	ErrInvalidPaymentMethod = errors.New("payment method must be cash, card or insurance")

	// ErrPaymentExists blocks deletion of a prescription with a payment on record.
	ErrPaymentExists = errors.New("prescription has a related payment; cancel the payment instead")
	ErrAlreadyPaid   = errors.New("prescription already has a payment")
)

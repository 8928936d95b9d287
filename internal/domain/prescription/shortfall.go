package prescription

import (
	"fmt"

	"github.com/google/uuid"
)

// Shortfall describes a request that stock could not fully cover.
// For updates Available counts what the line already holds plus what is on hand.
type Shortfall struct {
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	BatchNumber  string    `json:"batch_number"`
	Available    int       `json:"available"`
	Requested    int       `json:"requested"`
}

func (s Shortfall) String() string {
	return fmt.Sprintf("insufficient stock for %s (batch %s): %d available, %d requested",
		s.MedicineName, s.BatchNumber, s.Available, s.Requested)
}

// InsufficientStockError is returned when a request needs confirmation to be
// dispensed partially. No stock has been taken when it is returned.
type InsufficientStockError struct {
	Shortfall Shortfall
}

func (e *InsufficientStockError) Error() string {
	return e.Shortfall.String()
}

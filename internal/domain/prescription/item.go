package prescription

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one medicine line. DispensedQuantity always equals the net stock
// taken from the batch for this line.
type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PrescriptionID uuid.UUID           `gorm:"column:prescription_id;type:uuid;not null;index;uniqueIndex:uq_item_batch"`
	MedicineID     uuid.UUID           `gorm:"column:medicine_id;type:uuid;not null;index;uniqueIndex:uq_item_batch"`
	Medicine       *inventory.Medicine `gorm:"foreignKey:MedicineID;constraint:OnDelete:RESTRICT"`
	Position       int                 `gorm:"column:position;not null"`

	RequestedQuantity int             `gorm:"column:requested_quantity;not null;check:chk_items_requested_positive,requested_quantity >= 1"`
	DispensedQuantity int             `gorm:"column:dispensed_quantity;not null;check:chk_items_dispensed_range,dispensed_quantity >= 0 AND dispensed_quantity <= requested_quantity"`
	Dosage            string          `gorm:"column:dosage;type:varchar(100);not null"`
	Duration          string          `gorm:"column:duration;type:varchar(100);not null"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
}

func (Item) TableName() string {
	return "pharmacy.prescription_items"
}

// TotalPrice is the cost of what was actually dispensed on this line.
func (i *Item) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.DispensedQuantity)))
}

// DispenseCommand adds a medicine to a prescription. ConfirmPartial is the
// caller's explicit consent to dispense less than requested.
type DispenseCommand struct {
	PrescriptionID    uuid.UUID
	MedicineID        uuid.UUID
	RequestedQuantity int
	Dosage            string
	Duration          string
	ConfirmPartial    bool
}

type UpdateItemCommand struct {
	PrescriptionID    uuid.UUID
	ItemID            uuid.UUID
	MedicineID        *uuid.UUID
	RequestedQuantity int
	Dosage            *string
	Duration          *string
	ConfirmPartial    bool
}

// DispenseResult reports what a dispense or update committed. Item is nil
// when nothing could be dispensed. Shortfall is set whenever less than the
// requested quantity was committed.
type DispenseResult struct {
	Item      *Item      `json:"item"`
	Shortfall *Shortfall `json:"shortfall,omitempty"`
	Merged    bool       `json:"merged"`
}

// Partial reports whether the result carries a shortfall warning.
func (r *DispenseResult) Partial() bool {
	return r.Shortfall != nil
}

type RemovalResult struct {
	ItemID           uuid.UUID `json:"item_id"`
	MedicineName     string    `json:"medicine_name"`
	ReturnedQuantity int       `json:"returned_quantity"`
}

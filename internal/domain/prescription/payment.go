package prescription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCash      PaymentMethod = "cash"
	MethodCard      PaymentMethod = "card"
	MethodInsurance PaymentMethod = "insurance"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodInsurance:
		return true
	}
	return false
}

// Payment settles a prescription at the counter. While it exists the
// prescription cannot be deleted.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PrescriptionID uuid.UUID       `gorm:"column:prescription_id;type:uuid;not null;uniqueIndex"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	Method         PaymentMethod   `gorm:"column:method;type:varchar(20);not null"`
	Reference      string          `gorm:"column:reference;type:varchar(100)"`
	ReceivedBy     uuid.UUID       `gorm:"column:received_by;type:uuid;not null"`
}

func (Payment) TableName() string {
	return "pharmacy.payments"
}

type RecordPaymentCommand struct {
	PrescriptionID uuid.UUID
	Method         PaymentMethod
	Reference      string
	ReceivedBy     uuid.UUID
}

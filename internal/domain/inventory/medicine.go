package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryAnalgesic         Category = "Analgesic"
	CategoryAntibiotic        Category = "Antibiotic"
	CategoryAntiviral         Category = "Antiviral"
	CategoryAntifungal        Category = "Antifungal"
	CategoryAntihistamine     Category = "Antihistamine"
	CategoryAntacid           Category = "Antacid"
	CategoryAntipyretic       Category = "Antipyretic"
	CategoryAntiInflammatory  Category = "Anti-inflammatory"
	CategoryAntihypertensive  Category = "Antihypertensive"
	CategoryAntidiabetic      Category = "Antidiabetic"
	CategoryAntidepressant    Category = "Antidepressant"
	CategoryAnticoagulant     Category = "Anticoagulant"
	CategoryDiuretic          Category = "Diuretic"
	CategorySedative          Category = "Sedative"
	CategoryBronchodilator    Category = "Bronchodilator"
	CategoryVaccine           Category = "Vaccine"
	CategorySteroid           Category = "Steroid"
	CategoryContraceptive     Category = "Contraceptive"
	CategoryAntiemetic        Category = "Antiemetic"
	CategoryAntipsychotic     Category = "Antipsychotic"
	CategoryMuscleRelaxant    Category = "Muscle Relaxant"
	CategoryChemotherapy      Category = "Chemotherapy"
	CategoryImmunosuppressant Category = "Immunosuppressant"
	CategoryOphthalmic        Category = "Ophthalmic"
	CategoryDermatological    Category = "Dermatological"
	CategoryNutritional       Category = "Nutritional Supplement"
	CategoryRespiratoryAgent  Category = "Respiratory Agent"
	CategoryLocalAnesthetic   Category = "Local Anesthetic"
)

var categories = map[Category]struct{}{
	CategoryAnalgesic: {}, CategoryAntibiotic: {}, CategoryAntiviral: {}, CategoryAntifungal: {},
	CategoryAntihistamine: {}, CategoryAntacid: {}, CategoryAntipyretic: {}, CategoryAntiInflammatory: {},
	CategoryAntihypertensive: {}, CategoryAntidiabetic: {}, CategoryAntidepressant: {}, CategoryAnticoagulant: {},
	CategoryDiuretic: {}, CategorySedative: {}, CategoryBronchodilator: {}, CategoryVaccine: {},
	CategorySteroid: {}, CategoryContraceptive: {}, CategoryAntiemetic: {}, CategoryAntipsychotic: {},
	CategoryMuscleRelaxant: {}, CategoryChemotherapy: {}, CategoryImmunosuppressant: {}, CategoryOphthalmic: {},
	CategoryDermatological: {}, CategoryNutritional: {}, CategoryRespiratoryAgent: {}, CategoryLocalAnesthetic: {},
}

func (c Category) IsValid() bool {
	_, ok := categories[c]
	return ok
}

type MedicineType string

const (
	TypePrescription MedicineType = "RX"
	TypeOverCounter  MedicineType = "OTC"
)

func (t MedicineType) IsValid() bool {
	return t == TypePrescription || t == TypeOverCounter
}

const DefaultReorderLevel = 10

// Medicine is a single batch of a medicine. QuantityInStock is owned by the
// Ledger; everything else is catalogue data.
type Medicine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name        string       `gorm:"column:name;type:varchar(100);not null;index"`
	Brand       string       `gorm:"column:brand;type:varchar(100);not null"`
	Category    Category     `gorm:"column:category;type:varchar(50);not null;index"`
	Type        MedicineType `gorm:"column:medicine_type;type:varchar(10);not null;default:'RX'"`
	Description string       `gorm:"column:description;type:text"`
	Dosage      string       `gorm:"column:dosage;type:varchar(50);not null"`
	ImageURL    string       `gorm:"column:image_url;type:varchar(255)"`

	CostPrice    decimal.Decimal `gorm:"column:cost_price;type:numeric(10,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:numeric(10,2);not null;default:0"`

	QuantityInStock int `gorm:"column:quantity_in_stock;not null;check:chk_medicines_stock_non_negative,quantity_in_stock >= 0"`
	ReorderLevel    int `gorm:"column:reorder_level;not null;default:10"`

	ManufactureDate time.Time `gorm:"column:manufacture_date;type:date;not null"`
	ExpiryDate      time.Time `gorm:"column:expiry_date;type:date;not null;index"`
	BatchNumber     string    `gorm:"column:batch_number;type:varchar(150);uniqueIndex;not null"`
	Supplier        string    `gorm:"column:supplier;type:varchar(100);not null"`
}

func (Medicine) TableName() string {
	return "inventory.medicines"
}

// Label is the human-readable form used in messages and documents.
func (m *Medicine) Label() string {
	return fmt.Sprintf("%s - %s (%s)", m.Name, m.Dosage, m.BatchNumber)
}

// IsExpired reports whether the batch expires on or before the given day.
func (m *Medicine) IsExpired(now time.Time) bool {
	return !truncateDay(now).Before(truncateDay(m.ExpiryDate))
}

// IsNearExpiry reports whether the batch is still valid but expires within window.
func (m *Medicine) IsNearExpiry(now time.Time, window time.Duration) bool {
	today := truncateDay(now)
	expiry := truncateDay(m.ExpiryDate)
	return today.Before(expiry) && expiry.Sub(today) <= window
}

func (m *Medicine) NeedsReorder() bool {
	return m.QuantityInStock <= m.ReorderLevel
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// MedicineAction is the change history of the catalogue. Name and batch are
// copied so the row stays readable after the medicine is deleted.
type MedicineAction struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MedicineID   *uuid.UUID `gorm:"column:medicine_id;type:uuid;index"`
	Medicine     *Medicine  `gorm:"foreignKey:MedicineID;constraint:OnDelete:SET NULL"`
	MedicineName string     `gorm:"column:medicine_name;type:varchar(255)"`
	BatchNumber  string     `gorm:"column:batch_number;type:varchar(255)"`
	Action       Action     `gorm:"column:action;type:varchar(10);not null"`
	Timestamp    time.Time  `gorm:"column:timestamp;autoCreateTime;index"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
}

func (MedicineAction) TableName() string {
	return "inventory.medicine_actions"
}

type CreateMedicineCommand struct {
	Name            string
	Brand           string
	Category        Category
	Type            MedicineType
	Description     string
	Dosage          string
	ImageURL        string
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	QuantityInStock int
	ReorderLevel    *int
	ManufactureDate time.Time
	ExpiryDate      time.Time
	BatchNumber     string
	Supplier        string
}

// UpdateMedicineCommand never carries stock; stock changes go through Restock
// or the dispensing workflow.
type UpdateMedicineCommand struct {
	Name            *string
	Brand           *string
	Category        *Category
	Type            *MedicineType
	Description     *string
	Dosage          *string
	ImageURL        *string
	CostPrice       *decimal.Decimal
	SellingPrice    *decimal.Decimal
	ReorderLevel    *int
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	Supplier        *string
}

// Apply copies the set fields onto m.
func (c *UpdateMedicineCommand) Apply(m *Medicine) {
	if c.Name != nil {
		m.Name = *c.Name
	}
	if c.Brand != nil {
		m.Brand = *c.Brand
	}
	if c.Category != nil {
		m.Category = *c.Category
	}
	if c.Type != nil {
		m.Type = *c.Type
	}
	if c.Description != nil {
		m.Description = *c.Description
	}
	if c.Dosage != nil {
		m.Dosage = *c.Dosage
	}
	if c.ImageURL != nil {
		m.ImageURL = *c.ImageURL
	}
	if c.CostPrice != nil {
		m.CostPrice = *c.CostPrice
	}
	if c.SellingPrice != nil {
		m.SellingPrice = *c.SellingPrice
	}
	if c.ReorderLevel != nil {
		m.ReorderLevel = *c.ReorderLevel
	}
	if c.ManufactureDate != nil {
		m.ManufactureDate = *c.ManufactureDate
	}
	if c.ExpiryDate != nil {
		m.ExpiryDate = *c.ExpiryDate
	}
	if c.Supplier != nil {
		m.Supplier = *c.Supplier
	}
}

type ListMedicinesQuery struct {
	Search   string // name, brand or batch number
	Category *Category
	Type     *MedicineType
	LowStock bool
	Page     int
	PageSize int
}

type PagedMedicines struct {
	Medicines  []*Medicine
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

package storefront

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindMedicine   Kind = "medicine"
	KindNonMedical Kind = "non_medical"
)

func (k Kind) IsValid() bool {
	return k == KindMedicine || k == KindNonMedical
}

// Listing is what the storefront shows for a product regardless of what
// backs it.
type Listing interface {
	Kind() Kind
	StockID() uuid.UUID
	Name() string
	Price() decimal.Decimal
	Stock() int
	Description() string
	ImageURL() string
}

// MedicineListing sells a medicine batch.
type MedicineListing struct {
	Medicine *inventory.Medicine
}

func (l MedicineListing) Kind() Kind             { return KindMedicine }
func (l MedicineListing) StockID() uuid.UUID     { return l.Medicine.ID }
func (l MedicineListing) Name() string           { return l.Medicine.Name }
func (l MedicineListing) Price() decimal.Decimal { return l.Medicine.SellingPrice }
func (l MedicineListing) Stock() int             { return l.Medicine.QuantityInStock }
func (l MedicineListing) ImageURL() string       { return l.Medicine.ImageURL }

func (l MedicineListing) Description() string {
	if l.Medicine.Description == "" {
		return "No description available"
	}
	return l.Medicine.Description
}

// GoodsListing sells a non-medical product.
type GoodsListing struct {
	Product *inventory.NonMedicalProduct
}

func (l GoodsListing) Kind() Kind             { return KindNonMedical }
func (l GoodsListing) StockID() uuid.UUID     { return l.Product.ID }
func (l GoodsListing) Name() string           { return l.Product.Name }
func (l GoodsListing) Price() decimal.Decimal { return l.Product.SellingPrice }
func (l GoodsListing) Stock() int             { return l.Product.QuantityInStock }
func (l GoodsListing) ImageURL() string       { return l.Product.ImageURL }

func (l GoodsListing) Description() string {
	if l.Product.Description == "" {
		return "No description available"
	}
	return l.Product.Description
}

// Product is the storefront row. Exactly one of MedicineID and
// NonMedicalProductID is set, matching Kind; callers use Listing instead of
// reading the references directly.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Kind Kind `gorm:"column:kind;type:varchar(20);not null;index;check:chk_product_variant,(kind = 'medicine' AND medicine_id IS NOT NULL AND non_medical_product_id IS NULL) OR (kind = 'non_medical' AND non_medical_product_id IS NOT NULL AND medicine_id IS NULL)"`

	MedicineID          *uuid.UUID                   `gorm:"column:medicine_id;type:uuid;uniqueIndex"`
	Medicine            *inventory.Medicine          `gorm:"foreignKey:MedicineID;constraint:OnDelete:CASCADE"`
	NonMedicalProductID *uuid.UUID                   `gorm:"column:non_medical_product_id;type:uuid;uniqueIndex"`
	NonMedicalProduct   *inventory.NonMedicalProduct `gorm:"foreignKey:NonMedicalProductID;constraint:OnDelete:CASCADE"`

	Featured        bool `gorm:"column:featured;not null;default:false;index"`
	AvailableOnline bool `gorm:"column:available_online;not null;default:true;index"`
}

func (Product) TableName() string {
	return "storefront.products"
}

// NewMedicineProduct lists a medicine batch in the storefront.
func NewMedicineProduct(m *inventory.Medicine) *Product {
	id := m.ID
	return &Product{Kind: KindMedicine, MedicineID: &id, Medicine: m, AvailableOnline: true}
}

// NewGoodsProduct lists a non-medical product in the storefront.
func NewGoodsProduct(g *inventory.NonMedicalProduct) *Product {
	id := g.ID
	return &Product{Kind: KindNonMedical, NonMedicalProductID: &id, NonMedicalProduct: g, AvailableOnline: true}
}

// Listing resolves the variant. The backing record must be loaded.
func (p *Product) Listing() (Listing, error) {
	switch p.Kind {
	case KindMedicine:
		if p.Medicine == nil || p.NonMedicalProductID != nil {
			return nil, ErrInvalidVariant
		}
		return MedicineListing{Medicine: p.Medicine}, nil
	case KindNonMedical:
		if p.NonMedicalProduct == nil || p.MedicineID != nil {
			return nil, ErrInvalidVariant
		}
		return GoodsListing{Product: p.NonMedicalProduct}, nil
	}
	return nil, ErrInvalidVariant
}

type CreateProductCommand struct {
	Kind            Kind
	StockID         uuid.UUID
	Featured        bool
	AvailableOnline bool
}

type UpdateProductCommand struct {
	Featured        *bool
	AvailableOnline *bool
}

type CatalogueQuery struct {
	Kind         *Kind
	FeaturedOnly bool
	// IncludeOffline also returns products hidden from the online shop.
	IncludeOffline bool
}

package storefront

import (
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestOrderTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderPending, OrderShipped, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderShipped, false},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.from}
		if got := o.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestListingResolvesVariant(t *testing.T) {
	med := &inventory.Medicine{ID: uuid.New(), Name: "Paracetamol", SellingPrice: decimal.RequireFromString("1.10"), QuantityInStock: 40}
	goods := &inventory.NonMedicalProduct{ID: uuid.New(), Name: "Thermometer", Description: "Digital", SellingPrice: decimal.RequireFromString("12"), QuantityInStock: 3}

	l, err := NewMedicineProduct(med).Listing()
	if err != nil {
		t.Fatalf("medicine listing: %v", err)
	}
	if l.Kind() != KindMedicine || l.StockID() != med.ID || l.Stock() != 40 {
		t.Errorf("medicine listing = kind %s stock id %s stock %d", l.Kind(), l.StockID(), l.Stock())
	}
	if l.Description() != "No description available" {
		t.Errorf("empty description rendered as %q", l.Description())
	}

	l, err = NewGoodsProduct(goods).Listing()
	if err != nil {
		t.Fatalf("goods listing: %v", err)
	}
	if l.Kind() != KindNonMedical || l.Name() != "Thermometer" || l.Description() != "Digital" {
		t.Errorf("goods listing = kind %s name %q description %q", l.Kind(), l.Name(), l.Description())
	}
}

func TestListingRejectsMismatchedReferences(t *testing.T) {
	medID := uuid.New()
	goodsID := uuid.New()
	tests := []struct {
		name string
		p    *Product
	}{
		{"medicine not loaded", &Product{Kind: KindMedicine, MedicineID: &medID}},
		{"medicine with goods ref", &Product{Kind: KindMedicine, MedicineID: &medID, Medicine: &inventory.Medicine{}, NonMedicalProductID: &goodsID}},
		{"goods with medicine ref", &Product{Kind: KindNonMedical, NonMedicalProductID: &goodsID, NonMedicalProduct: &inventory.NonMedicalProduct{}, MedicineID: &medID}},
		{"unknown kind", &Product{Kind: "bundle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.p.Listing(); !errors.Is(err, ErrInvalidVariant) {
				t.Errorf("Listing() error = %v, want ErrInvalidVariant", err)
			}
		})
	}
}

func TestCartTotalSkipsUnloadedLines(t *testing.T) {
	goods := &inventory.NonMedicalProduct{ID: uuid.New(), SellingPrice: decimal.RequireFromString("2.25")}
	productID := uuid.New()
	cart := &Cart{Items: []CartItem{
		{ProductID: productID, Product: NewGoodsProduct(goods), Quantity: 4},
		{ProductID: uuid.New(), Quantity: 10},
	}}
	if got := cart.Total(); !got.Equal(decimal.RequireFromString("9")) {
		t.Errorf("Total() = %s, want 9", got)
	}
	if cart.Line(productID) != &cart.Items[0] {
		t.Error("Line did not find the product")
	}
}

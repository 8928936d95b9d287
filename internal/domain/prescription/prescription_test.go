package prescription

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func line(pos, requested, dispensed int, price string) Item {
	return Item{
		ID:                uuid.New(),
		MedicineID:        uuid.New(),
		Position:          pos,
		RequestedQuantity: requested,
		DispensedQuantity: dispensed,
		UnitPrice:         decimal.RequireFromString(price),
	}
}

func TestTotalCostUsesDispensedQuantity(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{"empty", nil, "0"},
		{"full fill", []Item{line(1, 4, 4, "2.50")}, "10"},
		{"partial fill", []Item{line(1, 8, 5, "2.50")}, "12.5"},
		{"zero dispensed", []Item{line(1, 3, 0, "9.99")}, "0"},
		{"several lines", []Item{line(1, 2, 2, "1.20"), line(2, 3, 1, "0.35")}, "2.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rx := &Prescription{Items: tt.items}
			if got := rx.TotalCost(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("TotalCost() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	rx := &Prescription{}
	if !rx.MarkPaid() {
		t.Fatal("first MarkPaid should report a change")
	}
	if !rx.IsPaid {
		t.Fatal("prescription not paid")
	}
	if rx.MarkPaid() {
		t.Error("second MarkPaid should be a no-op")
	}
}

func TestValidationFlag(t *testing.T) {
	rx := &Prescription{}
	rx.MarkValidated("")
	if !rx.IsValidated || rx.InteractionWarning != nil {
		t.Fatalf("clean validation: validated=%v warning=%v", rx.IsValidated, rx.InteractionWarning)
	}

	rx.MarkValidated("MAJOR: a + b - bleeding")
	if rx.InteractionWarning == nil || *rx.InteractionWarning != "MAJOR: a + b - bleeding" {
		t.Fatalf("warning = %v", rx.InteractionWarning)
	}

	rx.Invalidate()
	if rx.IsValidated || rx.InteractionWarning != nil {
		t.Errorf("Invalidate left validated=%v warning=%v", rx.IsValidated, rx.InteractionWarning)
	}
}

func TestNextPositionAndSort(t *testing.T) {
	rx := &Prescription{}
	if got := rx.NextPosition(); got != 1 {
		t.Fatalf("NextPosition() on empty = %d, want 1", got)
	}

	rx.Items = []Item{line(3, 1, 1, "1"), line(1, 1, 1, "1"), line(7, 1, 1, "1")}
	if got := rx.NextPosition(); got != 8 {
		t.Errorf("NextPosition() = %d, want 8", got)
	}

	rx.SortItems()
	for i, want := range []int{1, 3, 7} {
		if rx.Items[i].Position != want {
			t.Errorf("Items[%d].Position = %d, want %d", i, rx.Items[i].Position, want)
		}
	}

	if rx.ItemFor(rx.Items[1].MedicineID) != &rx.Items[1] {
		t.Error("ItemFor did not return the matching line")
	}
	if rx.ItemFor(uuid.New()) != nil {
		t.Error("ItemFor returned a line for an unknown batch")
	}
}

func TestInteractionNormalize(t *testing.T) {
	d := &DrugInteraction{MedicineA: "  Warfarin ", MedicineB: "Aspirin"}
	d.Normalize()
	if d.MedicineA != "aspirin" || d.MedicineB != "warfarin" {
		t.Errorf("pair = (%q, %q), want (aspirin, warfarin)", d.MedicineA, d.MedicineB)
	}
}

func TestInteractionWarning(t *testing.T) {
	if got := InteractionWarning(nil); got != "" {
		t.Errorf("no interactions: got %q", got)
	}

	got := InteractionWarning([]*DrugInteraction{
		{MedicineA: "aspirin", MedicineB: "warfarin", Severity: SeverityMajor, Description: "bleeding risk"},
		{MedicineA: "ibuprofen", MedicineB: "lisinopril", Severity: SeverityModerate, Description: "reduced effect"},
	})
	want := "MAJOR: aspirin + warfarin - bleeding risk; MODERATE: ibuprofen + lisinopril - reduced effect"
	if got != want {
		t.Errorf("InteractionWarning() = %q, want %q", got, want)
	}
}

func TestShortfallMessage(t *testing.T) {
	err := &InsufficientStockError{Shortfall: Shortfall{
		MedicineName: "Amoxicillin",
		BatchNumber:  "B100",
		Available:    5,
		Requested:    8,
	}}
	want := "insufficient stock for Amoxicillin (batch B100): 5 available, 8 requested"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	partial := &DispenseResult{Shortfall: &err.Shortfall}
	if !partial.Partial() {
		t.Error("result with a shortfall should be partial")
	}
	if (&DispenseResult{}).Partial() {
		t.Error("result without a shortfall should not be partial")
	}
}

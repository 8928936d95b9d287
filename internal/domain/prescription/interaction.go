package prescription

import (
	"strings"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// DrugInteraction is a known interacting pair of medicine names. It backs the
// validation flag only; it is not a clinical decision engine.
type DrugInteraction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MedicineA   string    `gorm:"column:medicine_a;type:varchar(100);not null;uniqueIndex:uq_interaction_pair"`
	MedicineB   string    `gorm:"column:medicine_b;type:varchar(100);not null;uniqueIndex:uq_interaction_pair"`
	Severity    Severity  `gorm:"column:severity;type:varchar(20);not null"`
	Description string    `gorm:"column:description;type:text;not null"`
}

func (DrugInteraction) TableName() string {
	return "pharmacy.drug_interactions"
}

// Normalize stores the pair lower-cased and in lexical order so (a,b) and
// (b,a) are the same row.
func (d *DrugInteraction) Normalize() {
	a := strings.ToLower(strings.TrimSpace(d.MedicineA))
	b := strings.ToLower(strings.TrimSpace(d.MedicineB))
	if b < a {
		a, b = b, a
	}
	d.MedicineA, d.MedicineB = a, b
}

// InteractionWarning joins the descriptions of the given interactions into
// the text stored on a prescription. It returns "" for no interactions.
func InteractionWarning(found []*DrugInteraction) string {
	if len(found) == 0 {
		return ""
	}
	parts := make([]string, 0, len(found))
	for _, d := range found {
		parts = append(parts, strings.ToUpper(string(d.Severity))+": "+d.MedicineA+" + "+d.MedicineB+" - "+d.Description)
	}
	return strings.Join(parts, "; ")
}

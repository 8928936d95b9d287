// Package export renders documents handed to patients.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/go-pdf/fpdf"
)

// Letterhead identifies the pharmacy on printed documents.
type Letterhead struct {
	Name           string
	Address        string
	Phone          string
	CurrencySymbol string
}

var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Medicine (batch)", 44, "L"},
	{"Description", 44, "L"},
	{"Dosage", 24, "L"},
	{"Duration", 22, "L"},
	{"Qty", 14, "R"},
	{"Unit price", 21, "R"},
	{"Total", 21, "R"},
}

const paymentNotice = "Please present this PDF at the billing counter for payment."

// PrescriptionPDF writes rx as an A4 PDF. rx must be loaded with its items,
// their medicines, the patient and the doctor.
func PrescriptionPDF(w io.Writer, rx *prescription.Prescription, head Letterhead, generatedAt time.Time) error {
	if err := prescriptionDoc(rx, head, generatedAt).Output(w); err != nil {
		return fmt.Errorf("rendering prescription pdf: %w", err)
	}
	return nil
}

func prescriptionDoc(rx *prescription.Prescription, head Letterhead, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(v interface{ StringFixed(int32) string }) string {
		return head.CurrencySymbol + v.StringFixed(2)
	}

	pdf.SetTitle(tr("Prescription "+rx.ID.String()), false)
	pdf.SetAuthor(tr(head.Name), false)
	pdf.SetCreationDate(generatedAt)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generated %s - page %d/{nb}", generatedAt.Format("2006-01-02 15:04"), pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Letterhead
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr(head.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr(head.Address+" | "+head.Phone), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 7, "PRESCRIPTION", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(32, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}
	field("Number:", rx.ID.String())
	field("Date:", rx.PrescriptionDate.Format("2006-01-02"))
	if rx.Patient != nil {
		field("Patient:", rx.Patient.FullName())
		if rx.Patient.Phone != "" {
			field("Phone:", rx.Patient.Phone)
		}
	}
	if rx.Doctor != nil {
		field("Doctor:", fmt.Sprintf("%s (%s)", rx.Doctor.FullName(), rx.Doctor.MedicalCode))
	}
	status := "UNPAID"
	if rx.IsPaid {
		status = "PAID"
	}
	field("Status:", status)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 236, 242)
	for _, c := range itemColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i := range rx.Items {
		it := &rx.Items[i]
		name, description := it.MedicineID.String(), "N/A"
		if it.Medicine != nil {
			name = fmt.Sprintf("%s (%s)", it.Medicine.Name, it.Medicine.BatchNumber)
			if d := strings.TrimSpace(it.Medicine.Description); d != "" {
				description = d
			}
		}
		qty := fmt.Sprintf("%d", it.DispensedQuantity)
		if it.DispensedQuantity < it.RequestedQuantity {
			qty = fmt.Sprintf("%d/%d", it.DispensedQuantity, it.RequestedQuantity)
		}
		cells := []string{name, description, it.Dosage, it.Duration, qty, money(it.UnitPrice), money(it.TotalPrice())}
		for j, c := range itemColumns {
			pdf.CellFormat(c.width, 6, fit(pdf, tr(cells[j]), c.width-2), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	last := itemColumns[len(itemColumns)-1].width
	pdf.CellFormat(190-last, 7, "Total cost", "1", 0, "R", false, 0, "")
	pdf.CellFormat(last, 7, tr(money(rx.TotalCost())), "1", 1, "R", false, 0, "")

	if rx.InteractionWarning != nil {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(170, 30, 30)
		pdf.MultiCell(0, 5, tr("Interaction warning: "+*rx.InteractionWarning), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if rx.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(rx.Notes), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, paymentNotice, "", 1, "C", false, 0, "")
	return pdf
}

// fit shortens s with an ellipsis until it is at most width wide in the
// current font. s is already translated to the single-byte font encoding.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

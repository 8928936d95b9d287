package clinic

import (
	"testing"
	"time"
)

func TestPatientAge(t *testing.T) {
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 36},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), 36},
	}
	p := &Patient{DateOfBirth: dob}
	for _, tt := range tests {
		if got := p.Age(tt.now); got != tt.want {
			t.Errorf("Age(%s) = %d, want %d", tt.now.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestUpdatePatientAppliesOnlySetFields(t *testing.T) {
	p := &Patient{FirstName: "Ana", LastName: "Silva"}
	p.Email = "ana@example.com"
	p.Phone = "555-0100"

	email := "  Ana.Silva@Example.COM "
	last := " Souza "
	allergies := []string{"penicillin"}
	(&UpdatePatientCommand{Email: &email, LastName: &last, Allergies: &allergies}).Apply(p)

	if p.FullName() != "Ana Souza" {
		t.Errorf("FullName() = %q", p.FullName())
	}
	if p.Email != "ana.silva@example.com" {
		t.Errorf("Email = %q", p.Email)
	}
	if p.Phone != "555-0100" {
		t.Errorf("unset Phone changed to %q", p.Phone)
	}
	if len(p.Allergies) != 1 || p.Allergies[0] != "penicillin" {
		t.Errorf("Allergies = %v", p.Allergies)
	}
}

func TestUpdateDoctorTrimsCode(t *testing.T) {
	d := &Doctor{FirstName: "Lee", LastName: "Park", MedicalCode: "MC-1"}
	code := " MC-2 "
	(&UpdateDoctorCommand{MedicalCode: &code}).Apply(d)
	if d.MedicalCode != "MC-2" || d.FullName() != "Lee Park" {
		t.Errorf("doctor = %q %q", d.MedicalCode, d.FullName())
	}
}

func TestGenderIsValid(t *testing.T) {
	if Gender("robot").IsValid() {
		t.Error("unknown gender accepted")
	}
}

package clinic

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type ContactInfo struct {
	Phone   string `gorm:"column:phone;type:varchar(20)"`
	Email   string `gorm:"column:email;type:varchar(255)"`
	Address string `gorm:"column:address;type:text"`
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FirstName   string    `gorm:"column:first_name;type:varchar(100);not null;index"`
	LastName    string    `gorm:"column:last_name;type:varchar(100);not null;index"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;type:date;not null"`
	Gender      Gender    `gorm:"column:gender;type:varchar(20);not null;default:'unknown'"`

	ContactInfo

	Allergies []string `gorm:"column:allergies;serializer:json"`
}

func (Patient) TableName() string {
	return "clinic.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}

// Doctor is a prescriber. Doctors do not log in; they are referenced by
// prescriptions entered by pharmacy staff.
type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FirstName      string `gorm:"column:first_name;type:varchar(100);not null;index"`
	LastName       string `gorm:"column:last_name;type:varchar(100);not null;index"`
	MedicalCode    string `gorm:"column:medical_code;type:varchar(50);uniqueIndex;not null"`
	Specialization string `gorm:"column:specialization;type:varchar(100)"`

	ContactInfo
}

func (Doctor) TableName() string {
	return "clinic.doctors"
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

type CreatePatientCommand struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      Gender
	Phone       string
	Email       string
	Address     string
	Allergies   []string
}

type UpdatePatientCommand struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
	Gender      *Gender
	Phone       *string
	Email       *string
	Address     *string
	Allergies   *[]string
}

func (c *UpdatePatientCommand) Apply(p *Patient) {
	if c.FirstName != nil {
		p.FirstName = strings.TrimSpace(*c.FirstName)
	}
	if c.LastName != nil {
		p.LastName = strings.TrimSpace(*c.LastName)
	}
	if c.DateOfBirth != nil {
		p.DateOfBirth = *c.DateOfBirth
	}
	if c.Gender != nil {
		p.Gender = *c.Gender
	}
	if c.Phone != nil {
		p.Phone = strings.TrimSpace(*c.Phone)
	}
	if c.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*c.Email))
	}
	if c.Address != nil {
		p.Address = *c.Address
	}
	if c.Allergies != nil {
		p.Allergies = *c.Allergies
	}
}

type CreateDoctorCommand struct {
	FirstName      string
	LastName       string
	MedicalCode    string
	Specialization string
	Phone          string
	Email          string
	Address        string
}

type UpdateDoctorCommand struct {
	FirstName      *string
	LastName       *string
	MedicalCode    *string
	Specialization *string
	Phone          *string
	Email          *string
	Address        *string
}

func (c *UpdateDoctorCommand) Apply(d *Doctor) {
	if c.FirstName != nil {
		d.FirstName = strings.TrimSpace(*c.FirstName)
	}
	if c.LastName != nil {
		d.LastName = strings.TrimSpace(*c.LastName)
	}
	if c.MedicalCode != nil {
		d.MedicalCode = strings.TrimSpace(*c.MedicalCode)
	}
	if c.Specialization != nil {
		d.Specialization = *c.Specialization
	}
	if c.Phone != nil {
		d.Phone = strings.TrimSpace(*c.Phone)
	}
	if c.Email != nil {
		d.Email = strings.ToLower(strings.TrimSpace(*c.Email))
	}
	if c.Address != nil {
		d.Address = *c.Address
	}
}

// ListQuery filters patients or doctors by a case-insensitive name search.
// For doctors the search also matches specialization and medical code.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

type PagedDoctors struct {
	Doctors    []*Doctor
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

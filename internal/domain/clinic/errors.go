package clinic

import "errors"

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrMedicalCodeTaken    = errors.New("a doctor with this medical code already exists")
	ErrHasPrescriptions    = errors.New("record is referenced by an existing prescription and cannot be deleted")
	ErrInvalidGender       = errors.New("invalid gender value")
	ErrInvalidDateOfBirth  = errors.New("date of birth cannot be in the future")
	ErrMedicalCodeRequired = errors.New("medical code is required")
)

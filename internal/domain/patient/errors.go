package patient

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrInvalidSex      = errors.New("invalid sex value")
	ErrInvalidAge      = errors.New("age must be between 0 and 150")
	ErrNameRequired    = errors.New("patient name is required")
)

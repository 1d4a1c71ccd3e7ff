package medication

import "errors"

var (
	ErrMedicationRequired  = errors.New("medication name is required")
	ErrDuplicateMedication = errors.New("medication already added")
	ErrMedicationNotFound  = errors.New("medication not found")
	ErrUnknownSeverity     = errors.New("unknown interaction severity")
)

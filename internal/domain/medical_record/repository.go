package medical_record

import "context"

type Repository interface {
	Append(ctx context.Context, r *MedicalRecord) error
	// List returns the stored records in insertion order.
	List(ctx context.Context) ([]*MedicalRecord, error)
}

package medical_record

import (
	"time"
)

type RecordType string

const (
	TypeCheckup      RecordType = "checkup"
	TypeConsultation RecordType = "consultation"
	TypeLabReport    RecordType = "lab_report"
	TypePrescription RecordType = "prescription"
	TypeSkinAnalysis RecordType = "skin_analysis"
)

func (t RecordType) IsValid() bool {
	switch t {
	case TypeCheckup, TypeConsultation, TypeLabReport, TypePrescription, TypeSkinAnalysis:
		return true
	}
	return false
}

// Attachment points at an uploaded file, e.g. the image behind a skin analysis.
type Attachment struct {
	FileName    string    `json:"file_name,omitempty"`
	ContentType string    `json:"content_type"`
	Key         string    `json:"key"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Once created, records cannot be deleted or edited
type MedicalRecord struct {
	ID          string       `json:"id"`
	Type        RecordType   `json:"type"`
	Date        string       `json:"date"`
	Doctor      string       `json:"doctor"`
	Diagnosis   string       `json:"diagnosis"`
	Notes       string       `json:"notes"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Seeded is the record every session starts with.
func Seeded() *MedicalRecord {
	return &MedicalRecord{
		ID:        "1",
		Type:      TypeCheckup,
		Date:      "2026-01-20",
		Doctor:    "Dr. Ahmed Hassan",
		Diagnosis: "Routine Check-up",
		Notes:     "Patient is in good health",
		CreatedAt: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
	}
}

type CreateRecordCommand struct {
	Type      RecordType
	Date      string
	Doctor    string
	Diagnosis string
	Notes     string
}

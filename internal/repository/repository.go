// Package repository implements the domain repositories on top of the record
// store. Portal-wide repositories live under store.PortalScope; the rest are
// built per browser session.
package repository

import (
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/chat"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/contact"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"go.uber.org/zap"
)

// Keys of the stored documents.
const (
	keyPatients     = "patients"
	keyAuditLog     = "audit_log"
	keyAppointments = "appointments"
	keyMedications  = "medications"
	keyRecords      = "records"
	keyCurrentUser  = "currentUser"
	keyHealthID     = "healthId"

	prefixUser       = "user_"
	prefixNationalID = "nationalId_"
	prefixSlot       = "slot_"
	prefixContact    = "contact"
	prefixChat       = "chat"
	prefixDrugCheck  = "drugCheck"
	prefixDerm       = "dermatology"
)

type Repositories struct {
	base   store.Store
	portal store.Store
	log    *zap.Logger
}

func New(base store.Store, log *zap.Logger) *Repositories {
	return &Repositories{
		base:   base,
		portal: store.Scoped(base, store.PortalScope),
		log:    log,
	}
}

func (r *Repositories) session(sessionID string) store.Store {
	return store.Scoped(r.base, store.SessionScope(sessionID))
}

func (r *Repositories) Patients() patient.Repository {
	return &PatientRepository{items: store.NewCollection[patient.Patient](r.portal, keyPatients, r.log)}
}

func (r *Repositories) Users() *UserRepository {
	return &UserRepository{store: r.portal, log: r.log}
}

func (r *Repositories) Contacts() contact.Repository {
	return &ContactRepository{store: r.portal}
}

func (r *Repositories) Audit() *AuditRepository {
	return &AuditRepository{
		items:     store.NewCollection[domain.AuditLog](r.portal, keyAuditLog, r.log),
		retention: auditRetention,
	}
}

func (r *Repositories) Appointments(sessionID string) appointment.Repository {
	return &AppointmentRepository{
		items: store.NewCollection[appointment.Appointment](r.session(sessionID), keyAppointments, r.log),
		slots: r.portal,
		log:   r.log,
	}
}

func (r *Repositories) Medications(sessionID string) medication.ListRepository {
	return &MedicationListRepository{items: store.NewCollection[string](r.session(sessionID), keyMedications, r.log)}
}

func (r *Repositories) DrugChecks(sessionID string) medication.CheckRepository {
	return &DrugCheckRepository{docs: newTimestamped[medication.CheckResult](r.session(sessionID), prefixDrugCheck, r.log)}
}

func (r *Repositories) Conversations(sessionID string) chat.Repository {
	return &ConversationRepository{docs: newTimestamped[chat.Conversation](r.session(sessionID), prefixChat, r.log)}
}

func (r *Repositories) Analyses(sessionID string) dermatology.Repository {
	return &AnalysisRepository{docs: newTimestamped[dermatology.Analysis](r.session(sessionID), prefixDerm, r.log)}
}

func (r *Repositories) Records(sessionID string) mr.Repository {
	return &RecordRepository{items: store.NewCollection[mr.MedicalRecord](r.session(sessionID), keyRecords, r.log)}
}

func (r *Repositories) Session(sessionID string) domain.SessionRepository {
	return &SessionRepository{store: r.session(sessionID)}
}

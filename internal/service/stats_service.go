package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/contact"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/samber/lo"
)

type PlatformStats struct {
	TotalPatients    int    `json:"total_patients"`
	RegisteredUsers  int    `json:"registered_users"`
	TotalDoctors     int    `json:"total_doctors"`
	ContactMessages  int    `json:"contact_messages"`
	SupportAvailable string `json:"support_available"`
}

type StatsService struct {
	patients patient.Repository
	users    UserRepository
	contacts contact.Repository
}

func NewStatsService(patients patient.Repository, users UserRepository, contacts contact.Repository) *StatsService {
	return &StatsService{patients: patients, users: users, contacts: contacts}
}

func (s *StatsService) Platform(ctx context.Context) (*PlatformStats, error) {
	patients, err := s.patients.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	contacts, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting contact messages: %w", err)
	}

	return &PlatformStats{
		TotalPatients:   patients,
		RegisteredUsers: len(users),
		TotalDoctors: lo.CountBy(users, func(u *domain.User) bool {
			return u.Role == domain.RoleDoctor
		}),
		ContactMessages:  contacts,
		SupportAvailable: "24/7",
	}, nil
}

package patient

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// IDPrefix starts every patient ID; the rest is the registration time in
// unix milliseconds.
const IDPrefix = "MH"

const MaxAge = 150

// Patient is a walk-in registration. Records are append-only: never updated
// or deleted once written.
type Patient struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Sex            Sex       `json:"sex"`
	ChiefComplaint string    `json:"chief_complaint,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// NextID returns the ID for a registration at t that does not collide with
// any of taken. Collisions advance the millisecond component.
func NextID(t time.Time, taken func(id string) bool) string {
	ms := t.UnixMilli()
	for {
		id := IDPrefix + strconv.FormatInt(ms, 10)
		if !taken(id) {
			return id
		}
		ms++
	}
}

// Matches reports whether query is a case-insensitive substring of the
// patient's name or ID. The empty query matches everyone.
func (p *Patient) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.ID), q)
}

// SortByName orders patients for display, keeping registration order between
// equal names.
func SortByName(ps []*Patient) {
	slices.SortStableFunc(ps, func(a, b *Patient) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

type RegisterPatientCommand struct {
	Name           string
	Age            int
	Sex            Sex
	ChiefComplaint string
	Phone          string
}

type Order string

const (
	OrderByName         Order = "name"
	OrderByRegistration Order = "registration"
)

type SearchQuery struct {
	Query string
	Order Order
}

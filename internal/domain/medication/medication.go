package medication

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeveritySafe     Severity = "safe"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeveritySafe:     1,
	SeverityModerate: 2,
	SeverityHigh:     3,
}

func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Compare orders severities none < safe < moderate < high.
func (s Severity) Compare(o Severity) int {
	return severityRank[s] - severityRank[o]
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := Severity(raw)
	if !v.IsValid() {
		return ErrUnknownSeverity
	}
	*s = v
	return nil
}

// Interaction names the two drugs as the caller typed them.
type Interaction struct {
	Drug1       string   `json:"drug1"`
	Drug2       string   `json:"drug2"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

type CheckResult struct {
	ID           string        `json:"id"`
	Drugs        []string      `json:"drugs"`
	Interactions []Interaction `json:"interactions"`
	RiskLevel    Severity      `json:"risk_level"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// Normalize trims a typed medication name. Case is kept as typed.
func Normalize(name string) string {
	return strings.TrimSpace(name)
}

// Dedupe drops blank names and repeats, keeping the first occurrence.
// Comparison is case-sensitive.
func Dedupe(drugs []string) []string {
	names := lo.Map(drugs, func(d string, _ int) string { return Normalize(d) })
	return lo.Uniq(lo.Compact(names))
}

// PairKey is the lookup key of the interaction table.
func PairKey(a, b string) string {
	return strings.ToLower(a) + "_" + strings.ToLower(b)
}

type CheckCommand struct {
	Drugs []string
}

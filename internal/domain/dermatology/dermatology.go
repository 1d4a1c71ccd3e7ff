package dermatology

import (
	"strings"
	"time"
)

// State transitions possibilities:
//
//	analyzing → completed
//	analyzing → cancelled
type Status string

const (
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Condition string

const (
	ConditionAcne      Condition = "Acne"
	ConditionEczema    Condition = "Eczema"
	ConditionNormal    Condition = "Normal"
	ConditionPsoriasis Condition = "Psoriasis"
	ConditionMoles     Condition = "Moles"
	ConditionRashes    Condition = "Rashes"
)

var Conditions = []Condition{
	ConditionAcne, ConditionEczema, ConditionNormal,
	ConditionPsoriasis, ConditionMoles, ConditionRashes,
}

type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
)

var Severities = []Severity{SeverityLow, SeverityModerate, SeverityHigh}

// Recommendations are returned with every finding.
var Recommendations = []string{
	"Consult with a dermatologist for detailed assessment",
	"Apply recommended skincare products",
	"Avoid potential irritants",
	"Maintain proper skin hygiene routine",
}

const (
	MinConfidence = 0.70
	MaxConfidence = 0.99
	FullProgress  = 100
)

type Finding struct {
	Condition       Condition `json:"condition"`
	Severity        Severity  `json:"severity"`
	Confidence      float64   `json:"confidence"`
	Recommendations []string  `json:"recommendations"`
}

type Analysis struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	ImageKey    string     `json:"image_key"`
	FileName    string     `json:"file_name,omitempty"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Finding     *Finding   `json:"finding,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (a *Analysis) InFlight() bool {
	return a.Status == StatusAnalyzing
}

// Advance adds step to the progress, capped at FullProgress, and reports
// whether the analysis has reached the end.
func (a *Analysis) Advance(step int) (done bool, err error) {
	if !a.InFlight() {
		return false, ErrAnalysisFinished
	}
	a.Progress += step
	if a.Progress >= FullProgress {
		a.Progress = FullProgress
		return true, nil
	}
	return false, nil
}

func (a *Analysis) Complete(f Finding, now time.Time) error {
	if !a.InFlight() {
		return ErrAnalysisFinished
	}
	a.Status = StatusCompleted
	a.Progress = FullProgress
	a.Finding = &f
	a.CompletedAt = &now
	return nil
}

func (a *Analysis) Cancel(now time.Time) error {
	if !a.InFlight() {
		return ErrAnalysisFinished
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	return nil
}

// IsImage reports whether a declared content type names an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

type SubmitImageCommand struct {
	FileName    string
	ContentType string
	Data        []byte
}

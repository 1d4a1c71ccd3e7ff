package responder

import (
	"regexp"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInteractions(t *testing.T) {
	g := New(42)

	tests := []struct {
		name     string
		drugs    []string
		want     []medication.Interaction
		wantRisk medication.Severity
	}{
		{
			name:  "aspirin and ibuprofen",
			drugs: []string{"Aspirin", "Ibuprofen"},
			want: []medication.Interaction{
				{Drug1: "Aspirin", Drug2: "Ibuprofen", Severity: medication.SeverityHigh, Description: "Increased GI bleeding risk"},
			},
			wantRisk: medication.SeverityHigh,
		},
		{
			name:  "reverse order matches",
			drugs: []string{"Contrast", "Metformin"},
			want: []medication.Interaction{
				{Drug1: "Contrast", Drug2: "Metformin", Severity: medication.SeverityModerate, Description: "Kidney function risk"},
			},
			wantRisk: medication.SeverityModerate,
		},
		{
			name:  "non adjacent pair is checked",
			drugs: []string{"Aspirin", "Calcium", "Ibuprofen"},
			want: []medication.Interaction{
				{Drug1: "Aspirin", Drug2: "Ibuprofen", Severity: medication.SeverityHigh, Description: "Increased GI bleeding risk"},
			},
			wantRisk: medication.SeverityHigh,
		},
		{
			name:  "beneficial combination stays safe",
			drugs: []string{"Vitamin D", "Calcium"},
			want: []medication.Interaction{
				{Drug1: "Vitamin D", Drug2: "Calcium", Severity: medication.SeveritySafe, Description: "Beneficial combination"},
			},
			wantRisk: medication.SeveritySafe,
		},
		{
			name:     "unknown pair",
			drugs:    []string{"Paracetamol", "Amoxicillin"},
			want:     []medication.Interaction{},
			wantRisk: medication.SeveritySafe,
		},
		{
			name:     "single drug",
			drugs:    []string{"Aspirin"},
			want:     []medication.Interaction{},
			wantRisk: medication.SeveritySafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, risk := g.CheckInteractions(tt.drugs)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRisk, risk)
		})
	}
}

func TestCheckInteractions_IsDeterministic(t *testing.T) {
	drugs := []string{"Warfarin", "NSAID", "Metformin", "Contrast"}
	first, risk := New(1).CheckInteractions(drugs)
	for seed := uint64(2); seed < 20; seed++ {
		got, r := New(seed).CheckInteractions(drugs)
		assert.Equal(t, first, got)
		assert.Equal(t, risk, r)
	}
	assert.Len(t, first, 2)
	assert.Equal(t, medication.SeverityHigh, risk)
}

func TestChatReply_IsCanned(t *testing.T) {
	g := New(7)
	for i := 0; i < 50; i++ {
		assert.Contains(t, chatReplies, g.ChatReply())
	}
}

func TestAnalyzeSkin_StaysInClosedSets(t *testing.T) {
	g := New(99)
	for i := 0; i < 200; i++ {
		f := g.AnalyzeSkin()
		assert.Contains(t, dermatology.Conditions, f.Condition)
		assert.Contains(t, dermatology.Severities, f.Severity)
		assert.GreaterOrEqual(t, f.Confidence, dermatology.MinConfidence)
		assert.LessOrEqual(t, f.Confidence, dermatology.MaxConfidence)
		assert.Equal(t, dermatology.Recommendations, f.Recommendations)
	}
}

func TestAnalyzeSkin_SameSeedSameFinding(t *testing.T) {
	assert.Equal(t, New(5).AnalyzeSkin(), New(5).AnalyzeSkin())
}

func TestProgressStep_Bounds(t *testing.T) {
	g := New(3)
	for i := 0; i < 500; i++ {
		step := g.ProgressStep()
		require.GreaterOrEqual(t, step, MinProgressStep)
		require.LessOrEqual(t, step, MaxProgressStep)
	}
}

func TestHealthID_Format(t *testing.T) {
	id := New(11).HealthID(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^NH-2026-[A-Z0-9]{6}$`), id)
}

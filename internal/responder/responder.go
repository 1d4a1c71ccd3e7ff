// Package responder produces the portal's canned clinical responses: drug
// interaction lookups, doctor chat replies and dermatology findings.
package responder

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
)

const (
	MinProgressStep = 5
	MaxProgressStep = 20
)

const healthIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Generator seeded with seed, or from the clock when seed is 0.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewWithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// CheckInteractions looks up every unordered pair of drugs in the interaction
// table. Callers dedupe first. Interactions keep the names as given, in input
// order; the risk level is the highest severity found, or safe.
func (g *Generator) CheckInteractions(drugs []string) ([]medication.Interaction, medication.Severity) {
	found := []medication.Interaction{}
	risk := medication.SeveritySafe

	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			known, ok := lookup(drugs[i], drugs[j])
			if !ok {
				continue
			}
			found = append(found, medication.Interaction{
				Drug1:       drugs[i],
				Drug2:       drugs[j],
				Severity:    known.Severity,
				Description: known.Description,
			})
			if known.Severity.Compare(risk) > 0 {
				risk = known.Severity
			}
		}
	}
	return found, risk
}

func lookup(a, b string) (knownInteraction, bool) {
	if k, ok := interactions[medication.PairKey(a, b)]; ok {
		return k, true
	}
	k, ok := interactions[medication.PairKey(b, a)]
	return k, ok
}

// ChatReply picks a canned doctor reply. The patient's text is not consulted.
func (g *Generator) ChatReply() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return chatReplies[g.rng.IntN(len(chatReplies))]
}

func (g *Generator) AnalyzeSkin() dermatology.Finding {
	g.mu.Lock()
	defer g.mu.Unlock()

	confidence := dermatology.MinConfidence + g.rng.Float64()*(dermatology.MaxConfidence-dermatology.MinConfidence)
	confidence = math.Round(confidence*100) / 100

	return dermatology.Finding{
		Condition:       dermatology.Conditions[g.rng.IntN(len(dermatology.Conditions))],
		Severity:        dermatology.Severities[g.rng.IntN(len(dermatology.Severities))],
		Confidence:      confidence,
		Recommendations: append([]string(nil), dermatology.Recommendations...),
	}
}

// ProgressStep returns how far an analysis advances per tick, in
// [MinProgressStep, MaxProgressStep].
func (g *Generator) ProgressStep() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return MinProgressStep + g.rng.IntN(MaxProgressStep-MinProgressStep+1)
}

// HealthID returns an ID of the form NH-<year>-XXXXXX.
func (g *Generator) HealthID(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.WriteString("NH-")
	b.WriteString(now.Format("2006"))
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		b.WriteByte(healthIDAlphabet[g.rng.IntN(len(healthIDAlphabet))])
	}
	return b.String()
}

package responder

import "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"

type knownInteraction struct {
	Severity    medication.Severity
	Description string
}

// interactions is keyed by medication.PairKey. Lookups try both orders.
var interactions = map[string]knownInteraction{
	"aspirin_ibuprofen":  {medication.SeverityHigh, "Increased GI bleeding risk"},
	"warfarin_nsaid":     {medication.SeverityHigh, "Increased bleeding risk"},
	"metformin_contrast": {medication.SeverityModerate, "Kidney function risk"},
	"vitamin d_calcium":  {medication.SeveritySafe, "Beneficial combination"},
}

var chatReplies = []string{
	"Thank you for your message. I'm reviewing your symptoms. Can you provide more details?",
	"Simulated advice for your query. Doctor will follow up.",
}

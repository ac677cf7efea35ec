package types

import "time"

// Values for CAPProfile.InformationDensity.
const (
	DensitySummary  = "summary"
	DensityModerate = "moderate"
	DensityFull     = "full"
)

// Values for CAPProfile.SupportLevel.
const (
	SupportReminder   = "reminder"
	SupportStepByStep = "step-by-step"
	SupportFullAgent  = "full-agent"
)

// CAPProfile is a student's Cognitive/Accessibility Profile. Density and
// support level select the Pass 2 prompt wording; TimeHorizon drives the
// dashboard task filter.
type CAPProfile struct {
	DisplayName        string    `json:"displayName"`
	InformationDensity string    `json:"informationDensity"`
	TimeHorizon        string    `json:"timeHorizon"`
	SensoryFlags       []string  `json:"sensoryFlags"`
	SupportLevel       string    `json:"supportLevel"`
	CreatedAt          time.Time `json:"createdAt"`
}

// DefaultCAPProfile returns the profile used when a student skips onboarding.
func DefaultCAPProfile() CAPProfile {
	return CAPProfile{
		DisplayName:        "Student",
		InformationDensity: DensityModerate,
		TimeHorizon:        "72h",
		SensoryFlags:       []string{},
		SupportLevel:       SupportStepByStep,
	}
}

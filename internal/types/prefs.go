//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// DefaultLanguage is used when no preference has been stored.
const DefaultLanguage = "English"

// UserPrefs is the process-wide preference record.
type UserPrefs struct {
	Language            string `json:"language" validate:"required"`
	IsEInkMode          bool   `json:"isEInkMode"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

// DefaultUserPrefs returns the record used when storage is empty or unreadable.
func DefaultUserPrefs() UserPrefs {
	return UserPrefs{Language: DefaultLanguage}
}

// Validate validates the UserPrefs using the validator.
func (p *UserPrefs) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// Validate validates the Project using the validator.
func (p *Project) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ComputeProgress returns round(100*done/total) rounding half up, or 0 when total is 0.
func ComputeProgress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}

// RecomputeProgress sets Progress from the current step completion state.
func (p *Project) RecomputeProgress() {
	p.Progress = ComputeProgress(p.CompletedSteps(), len(p.Steps))
}

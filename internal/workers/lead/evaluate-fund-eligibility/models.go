// internal/workers/lead/evaluate-fund-eligibility/models.go
package evaluatefundeligibility

import "lead-qualifier/internal/models"

type Input struct {
	Profile models.Profile `json:"profile"`
	Score   *int           `json:"score"`
}

type Output struct {
	Eligibility models.EligibilityResult `json:"eligibility"`
	Recommended []string                 `json:"recommendedFunds"`
	HasMatch    bool                     `json:"hasMatch"`
}

// internal/workers/lead/deliver-lead-event/models.go
package deliverleadevent

import "lead-qualifier/internal/models"

type Input struct {
	Profile     models.Profile           `json:"profile"`
	Eligibility models.EligibilityResult `json:"eligibility"`
	Meta        models.SubmissionMeta    `json:"meta"`
}

type Output struct {
	Outcome models.DeliveryOutcome `json:"outcome"`
}

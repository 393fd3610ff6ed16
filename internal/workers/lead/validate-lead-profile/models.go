// internal/workers/lead/validate-lead-profile/models.go
package validateleadprofile

import "lead-qualifier/internal/models"

type Input struct {
	Submission map[string]interface{} `json:"submission"`
}

type Output struct {
	Profile models.Profile `json:"profile"`
}

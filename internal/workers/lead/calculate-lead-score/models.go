// internal/workers/lead/calculate-lead-score/models.go
package calculateleadscore

import "lead-qualifier/internal/models"

type Input struct {
	Profile models.Profile `json:"profile"`
}

type Output struct {
	Steps      []models.StepScore `json:"steps"`
	Score      int                `json:"score"`
	Percentage string             `json:"percentage"`
}

package dto

import "github.com/lac-hong-legacy/portfolio_api/model"

type FailedLoginRequest struct {
	AttemptedPassword string `json:"attemptedPassword" validate:"max=256"`
}

func (r FailedLoginRequest) Validate() error {
	return GetValidator().Struct(r)
}

type FailedLoginResponse struct {
	Success           bool `json:"success"`
	AttemptsRemaining int  `json:"attemptsRemaining"`
	Blocked           bool `json:"blocked"`
}

type BlockedResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Blocked bool   `json:"blocked"`
}

type FailedLoginStatsResponse struct {
	Success        bool                       `json:"success"`
	TotalAttempts  int                        `json:"totalAttempts"`
	ActiveBlocks   int                        `json:"activeBlocks"`
	RecentAttempts []model.FailedLoginAttempt `json:"recentAttempts"`
}

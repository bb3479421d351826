package dto

type TokenPair struct {
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"`
}

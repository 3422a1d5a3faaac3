package models

// TokenPair is what the backend grants on login, captcha login or refresh.
// Refresh may be empty: the captcha flow and some refresh replies rotate
// only the access token.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token,omitempty"`
}

package models

// User is the authenticated account as reported by /auth/user/info.
type User struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

package admin

import "time"

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type LoginResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

type DashboardResponse struct {
	TotalRegistrations int64    `json:"total_registrations"`
	Colleges           []string `json:"colleges"`
	Courses            []string `json:"courses"`
	StoreConnected     bool     `json:"store_connected"`
}

package models

import "time"

// EventType identifies a server-push message category on the realtime channel.
type EventType string

const (
	EventTelemetry    EventType = "telemetry"
	EventAlert        EventType = "alert"
	EventMlEvent      EventType = "ml_event"
	EventHealthStatus EventType = "health_status"
)

// ValidEventType reports whether t is one of the declared push categories.
func ValidEventType(t EventType) bool {
	switch t {
	case EventTelemetry, EventAlert, EventMlEvent, EventHealthStatus:
		return true
	}
	return false
}

// PushMessage is the wire envelope for realtime pushes.
type PushMessage struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// APIResponse wraps every REST response body.
type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PaginatedResponse wraps list payloads with paging metadata.
type PaginatedResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// LoginRequest is the credential payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=50"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
}

// SessionUser is the public view of an authenticated account.
type SessionUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the minted token and its account.
type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Clamp01 clamps confidence-style values into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampPercent clamps percentage values into [0,100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package models

import (
	"time"
)

// Action tags a usage log entry with the lifecycle transition it records.
type Action string

const (
	ActionGenerated Action = "generated"
	ActionUsed      Action = "used"
	ActionExpired   Action = "expired"
	ActionRevoked   Action = "revoked"
)

// AccessCode is a short-lived shared secret gating the connection URL.
// IsActive only ever transitions from true to false; UsedAt and UsedBy are
// set on the first successful validation and never change afterwards.
type AccessCode struct {
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	IsActive  bool       `json:"isActive"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	UsedBy    string     `json:"usedBy,omitempty"`
}

// UsageLogEntry is one record in the append-only audit trail. Entries are
// never mutated or deleted; the admin view only projects the most recent
// ones.
type UsageLogEntry struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// ActiveCodeView is the admin projection of a live access code.
type ActiveCodeView struct {
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	UsedBy    string     `json:"usedBy,omitempty"`
}

// AdminView is the payload returned by the admin listing endpoint.
type AdminView struct {
	ActiveCodes []ActiveCodeView `json:"activeCodes"`
	TotalCodes  int              `json:"totalCodes"`
	UsageLogs   []UsageLogEntry  `json:"usageLogs"`
}

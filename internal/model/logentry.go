package model

import "time"

// LogEntry is one audit log record.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"actionKind"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
}

// Audit action kinds.
const (
	ActionLogin      = "LOGIN"
	ActionDelivery   = "DELIVERY"
	ActionEdit       = "EDIT"
	ActionRemoval    = "REMOVAL"
	ActionAdjustment = "ADJUSTMENT"
	ActionIssue      = "ISSUE"
	ActionAdmin      = "ADMIN"
	ActionBackup     = "BACKUP"
	ActionError      = "ERROR"
)

// ActionKinds lists every audit kind.
var ActionKinds = []string{
	ActionLogin, ActionDelivery, ActionEdit, ActionRemoval, ActionAdjustment,
	ActionIssue, ActionAdmin, ActionBackup, ActionError,
}

// SystemActor is recorded when no user triggered the action.
const SystemActor = "System"

package models

import (
	"time"

	"github.com/google/uuid"
)

type ModerationActionType string

const (
	ActionApproveEvent    ModerationActionType = "APPROVE_EVENT"
	ActionRejectEvent     ModerationActionType = "REJECT_EVENT"
	ActionApproveCampaign ModerationActionType = "APPROVE_CAMPAIGN"
	ActionRejectCampaign  ModerationActionType = "REJECT_CAMPAIGN"
	ActionSuspendUser     ModerationActionType = "SUSPEND_USER"
	ActionActivateUser    ModerationActionType = "ACTIVATE_USER"
	ActionDeleteUser      ModerationActionType = "DELETE_USER"
	ActionDeleteContent   ModerationActionType = "DELETE_CONTENT"
)

// ModerationAction is an append-only audit record of an admin decision.
// IDs are ULIDs so the log sorts by creation time.
type ModerationAction struct {
	ID         string               `json:"id" db:"id"`
	AdminID    uuid.UUID            `json:"adminId" db:"admin_id"`
	Action     ModerationActionType `json:"action" db:"action"`
	TargetType string               `json:"targetType" db:"target_type"`
	TargetID   uuid.UUID            `json:"targetId" db:"target_id"`
	Reason     *string              `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time            `json:"createdAt" db:"created_at"`
}

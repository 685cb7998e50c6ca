package dto

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

// SuspendUserRequest carries an optional suspension reason
type SuspendUserRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=2000"`
}

// DeleteContentRequest names content an admin removes
type DeleteContentRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=2000"`
}

// UserStats counts users by status
type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	NewLast7d int64 `json:"newLast7Days"`
}

// ModerationQueueStats counts an approval-gated entity
type ModerationQueueStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
}

// DashboardView is the admin overview
type DashboardView struct {
	Users            UserStats            `json:"users"`
	Events           ModerationQueueStats `json:"events"`
	Campaigns        ModerationQueueStats `json:"campaigns"`
	Jobs             int64                `json:"jobs"`
	Posts            int64                `json:"posts"`
	RecentUsers      []*UserView          `json:"recentUsers"`
	PendingEvents    []*EventView         `json:"pendingEvents"`
	PendingCampaigns []*CampaignView      `json:"pendingCampaigns"`
}

package models

import "time"

// Query types shared by the repositories and the services that drive them.
// Zero values mean "no filter".

type UserQuery struct {
	Status       UserStatus
	Role         Role
	LeadInternID *uint
	ExcludeAdmin bool
}

type HourQuery struct {
	UserIDs     []uint
	RestrictIDs bool
	FromDate    string
	ToDate      string
	PendingOnly bool
}

type DeliverableQuery struct {
	UserIDs     []uint
	RestrictIDs bool
	Status      DeliverableStatus
}

type LeadRecordQuery struct {
	LeadInternID uint
	CoreInternID uint
	PlanStatus   SupportPlanStatus
}

// ReportWindow bounds an aggregation. FromDate/ToDate are inclusive YYYY-MM-DD days;
// SubmittedFrom/SubmittedBefore are the same bounds as instants for timestamp columns.
type ReportWindow struct {
	FromDate        string
	ToDate          string
	SubmittedFrom   *time.Time
	SubmittedBefore *time.Time
}

type HourTotals struct {
	TotalHours    float64 `gorm:"column:total_hours" json:"total_hours"`
	ApprovedHours float64 `gorm:"column:approved_hours" json:"approved_hours"`
	PendingHours  float64 `gorm:"column:pending_hours" json:"pending_hours"`
	Entries       int64   `gorm:"column:entries" json:"entries"`
}

type DeliverableCounts struct {
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	NeedsRevision int64 `json:"needs_revision"`
	Rejected      int64 `json:"rejected"`
}

func (counts DeliverableCounts) Total() int64 {
	return counts.Pending + counts.Approved + counts.NeedsRevision + counts.Rejected
}

// DeliverableRevision carries the optional replacements sent with a re-submission.
// Nil fields keep the stored value.
type DeliverableRevision struct {
	Description *string
	Links       []string
	ProofLinks  []string
}

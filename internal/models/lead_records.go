package models

import "time"

type VibeRating string

const (
	VibeLetsChat     VibeRating = "lets_chat"
	VibeGettingThere VibeRating = "getting_there"
	VibeOnTrack      VibeRating = "on_track"
	VibeCrushingIt   VibeRating = "crushing_it"
)

func VibeRatings() []VibeRating {
	return []VibeRating{VibeLetsChat, VibeGettingThere, VibeOnTrack, VibeCrushingIt}
}

type SupportNeed string

const (
	SupportNeedNo    SupportNeed = "no"
	SupportNeedMaybe SupportNeed = "maybe"
	SupportNeedYes   SupportNeed = "yes"
)

func SupportNeeds() []SupportNeed {
	return []SupportNeed{SupportNeedNo, SupportNeedMaybe, SupportNeedYes}
}

// Review metric option lists, shown as selects in the check-in form.
var (
	HoursComplianceOptions   = []string{"100% (4-6 hours)", "75% (3-4 hours)", "50% (2-3 hours)", "Below 50%"}
	ContentCreatedOptions    = []string{"2+ Reels", "1 Reel", "Other content only", "No content"}
	MeetingAttendanceOptions = []string{"All meetings", "Most meetings", "Some meetings", "Missed multiple"}
	DMResponseRateOptions    = []string{"Excellent", "Good", "Needs Improvement", "Poor"}
	ProofUploadedOptions     = []string{"Yes - All uploaded", "Partial", "Not yet"}
)

type CoreReview struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	LeadInternID      uint        `gorm:"not null;index" json:"lead_intern_id"`
	CoreInternID      uint        `gorm:"not null;index" json:"core_intern_id"`
	ReviewPeriod      string      `gorm:"not null" json:"review_period"`
	ReviewDate        string      `gorm:"not null" json:"review_date"`
	OverallVibe       VibeRating  `gorm:"not null" json:"overall_vibe"`
	WhatsWorking      string      `json:"whats_working"`
	GrowthAreas       string      `json:"growth_areas"`
	NeedsSupport      SupportNeed `gorm:"not null;default:no" json:"needs_support"`
	HoursCompliance   string      `json:"hours_compliance"`
	ContentCreated    string      `json:"content_created"`
	MeetingAttendance string      `json:"meeting_attendance"`
	DMResponseRate    string      `gorm:"column:dm_response_rate" json:"dm_response_rate"`
	ProofUploaded     string      `json:"proof_uploaded"`
	Notes             string      `json:"notes"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type SupportPlanStatus string

const (
	PlanActive     SupportPlanStatus = "active"
	PlanInProgress SupportPlanStatus = "in_progress"
	PlanCompleted  SupportPlanStatus = "completed"
	PlanOnHold     SupportPlanStatus = "on_hold"
)

func SupportPlanStatuses() []SupportPlanStatus {
	return []SupportPlanStatus{PlanActive, PlanInProgress, PlanCompleted, PlanOnHold}
}

type SupportPlan struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	LeadInternID uint              `gorm:"not null;index" json:"lead_intern_id"`
	CoreInternID uint              `gorm:"not null;index" json:"core_intern_id"`
	StartDate    string            `gorm:"not null" json:"start_date"`
	Challenge    string            `gorm:"not null" json:"challenge"`
	Goal         string            `gorm:"not null" json:"goal"`
	ActionSteps  string            `gorm:"not null" json:"action_steps"`
	CheckInDate  string            `json:"check_in_date"`
	Status       SupportPlanStatus `gorm:"not null;default:active" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type Win struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	LeadInternID uint      `gorm:"not null;index" json:"lead_intern_id"`
	CoreInternID uint      `gorm:"not null;index" json:"core_intern_id"`
	WinDate      string    `gorm:"not null" json:"win_date"`
	Description  string    `gorm:"not null" json:"description"`
	WhyMatters   string    `json:"why_matters"`
	Celebrated   bool      `gorm:"not null;default:false" json:"celebrated"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type HourEntry struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Date        string     `gorm:"not null" json:"date"`
	StartTime   string     `gorm:"not null" json:"start_time"`
	EndTime     string     `gorm:"not null" json:"end_time"`
	TotalHours  float64    `gorm:"not null" json:"total_hours"`
	Description string     `gorm:"not null" json:"description"`
	Approved    bool       `gorm:"not null;default:false" json:"approved"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *uint      `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (HourEntry) TableName() string {
	return "hours"
}

func (entry HourEntry) Reviewed() bool {
	return entry.ReviewedAt != nil
}

// HourEntryWithUser is the admin listing row with the owner joined in.
type HourEntryWithUser struct {
	HourEntry
	UserName  string `gorm:"column:user_name" json:"user_name"`
	UserEmail string `gorm:"column:user_email" json:"user_email"`
}

package models

import (
	"strings"
	"time"
)

type DeliverableType string

const (
	DeliverableReel            DeliverableType = "reel"
	DeliverableIGLive          DeliverableType = "ig_live"
	DeliverableEvent           DeliverableType = "event"
	DeliverableMeeting         DeliverableType = "meeting"
	DeliverableBlogPost        DeliverableType = "blog_post"
	DeliverableSocialMediaPost DeliverableType = "social_media_post"
	DeliverableVideoContent    DeliverableType = "video_content"
	DeliverableOther           DeliverableType = "other"
)

func DeliverableTypes() []DeliverableType {
	return []DeliverableType{
		DeliverableReel,
		DeliverableIGLive,
		DeliverableEvent,
		DeliverableMeeting,
		DeliverableBlogPost,
		DeliverableSocialMediaPost,
		DeliverableVideoContent,
		DeliverableOther,
	}
}

func ParseDeliverableType(raw string) (DeliverableType, bool) {
	candidate := DeliverableType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range DeliverableTypes() {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

type DeliverableStatus string

const (
	DeliverablePending       DeliverableStatus = "pending"
	DeliverableApproved      DeliverableStatus = "approved"
	DeliverableNeedsRevision DeliverableStatus = "needs_revision"
	DeliverableRejected      DeliverableStatus = "rejected"
)

func DeliverableStatuses() []DeliverableStatus {
	return []DeliverableStatus{
		DeliverablePending,
		DeliverableApproved,
		DeliverableNeedsRevision,
		DeliverableRejected,
	}
}

func ParseDeliverableStatus(raw string) (DeliverableStatus, bool) {
	candidate := DeliverableStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range DeliverableStatuses() {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

type Deliverable struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"not null;index" json:"user_id"`
	Type           DeliverableType   `gorm:"not null" json:"type"`
	Description    string            `gorm:"not null" json:"description"`
	Links          []string          `gorm:"serializer:json" json:"links"`
	ProofLinks     []string          `gorm:"serializer:json" json:"proof_links"`
	Status         DeliverableStatus `gorm:"not null;default:pending" json:"status"`
	AdminComment   string            `gorm:"not null;default:''" json:"admin_comment"`
	CommentVisible bool              `gorm:"not null;default:false" json:"comment_visible"`
	SubmittedAt    time.Time         `gorm:"not null" json:"submitted_at"`
	ReviewedAt     *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy     *uint             `json:"reviewed_by,omitempty"`
}

type DeliverableWithUser struct {
	Deliverable
	UserName  string `gorm:"column:user_name" json:"user_name"`
	UserEmail string `gorm:"column:user_email" json:"user_email"`
}

// DeliverableReview is one appended row of a deliverable's decision history.
type DeliverableReview struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	DeliverableID uint              `gorm:"not null;index" json:"deliverable_id"`
	ActorID       uint              `gorm:"not null" json:"actor_id"`
	FromStatus    DeliverableStatus `gorm:"not null" json:"from_status"`
	ToStatus      DeliverableStatus `gorm:"not null" json:"to_status"`
	Comment       string            `gorm:"not null;default:''" json:"comment"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
}

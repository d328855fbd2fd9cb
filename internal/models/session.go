package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionConfirmed SessionStatus = "confirmed"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is a mentoring session document. Token operations reference it
// by SessionID at confirm/complete/cancel.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	LearnerID uint               `bson:"learner_id" json:"learner_id"`
	MentorID  uint               `bson:"mentor_id" json:"mentor_id"`
	SkillID   uint               `bson:"skill_id" json:"skill_id"`

	Status SessionStatus `bson:"status" json:"status"`

	ScheduledAt  *time.Time `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt  *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CancelledAt  *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancelReason string     `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
}

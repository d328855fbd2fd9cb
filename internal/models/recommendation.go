package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recommendation is one ranked entry of a mentor recommendation result.
// It is computed per request and not persisted unless the caller records
// it for audit (see RecommendationRecord).
type Recommendation struct {
	MentorID           uint     `json:"mentor_id"`
	MentorName         string   `json:"mentor_name"`
	MentorEmail        string   `json:"mentor_email"`
	SimilarityScore    float64  `json:"similarity_score"`
	Rating             *float64 `json:"rating"` // nil for mentors with no reviews
	ActivityScore      float64  `json:"activity_score"`
	CompatibilityScore float64  `json:"compatibility_score"`
	TotalReviews       int      `json:"total_reviews"`
	Rank               int      `json:"rank"`
	Explanation        string   `json:"explanation,omitempty"`
}

// RecommendationRecord is the persisted audit trail of a served
// recommendation. Components snapshots the score inputs at serve time.
type RecommendationRecord struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	LearnerID          uint           `gorm:"column:learner_id;index;not null" json:"learner_id"`
	MentorID           uint           `gorm:"column:mentor_id;index;not null" json:"mentor_id"`
	SkillID            *uint          `gorm:"column:skill_id" json:"skill_id,omitempty"`
	SimilarityScore    float64        `gorm:"column:similarity_score;not null" json:"similarity_score"`
	CompatibilityScore float64        `gorm:"column:compatibility_score;not null" json:"compatibility_score"`
	Rank               int            `gorm:"column:rank;not null" json:"rank"`
	Components         datatypes.JSON `gorm:"column:components;type:jsonb" json:"components,omitempty"`
	CreatedAt          time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (RecommendationRecord) TableName() string { return "recommendations" }

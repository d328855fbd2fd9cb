package models

import "time"

// MentorRating is the per-mentor review rollup maintained by the review
// module. Absence of a row means the mentor has no reviews yet.
type MentorRating struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MentorID      uint      `gorm:"column:mentor_id;uniqueIndex;not null" json:"mentor_id"`
	AverageRating float64   `gorm:"column:average_rating;not null;default:0" json:"average_rating"`
	TotalReviews  int       `gorm:"column:total_reviews;not null;default:0" json:"total_reviews"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (MentorRating) TableName() string { return "mentor_ratings" }

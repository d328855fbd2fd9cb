package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// SkillRole is the canonical side of a user-skill link. Legacy rows may
// still carry the old spellings ("offer", "need"); always go through
// CanonicalRole instead of comparing SkillType strings directly.
type SkillRole string

const (
	RoleTeach SkillRole = "teach"
	RoleLearn SkillRole = "learn"
)

var roleAliases = map[string]SkillRole{
	"teach": RoleTeach,
	"offer": RoleTeach,
	"learn": RoleLearn,
	"need":  RoleLearn,
}

// CanonicalRole resolves a stored skill_type value to its canonical role.
func CanonicalRole(s string) (SkillRole, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

// Aliases returns the accepted skill_type spellings for a role,
// canonical spelling first.
func (r SkillRole) Aliases() []string {
	switch r {
	case RoleTeach:
		return []string{"teach", "offer"}
	case RoleLearn:
		return []string{"learn", "need"}
	default:
		return []string{string(r)}
	}
}

func (r SkillRole) Valid() bool {
	return r == RoleTeach || r == RoleLearn
}

type Skill struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"column:title;size:100;uniqueIndex;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;size:50" json:"category"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Skill) TableName() string { return "skills" }

// Document is the combined text the vectorizer is trained on.
func (s Skill) Document() string {
	return strings.TrimSpace(s.Title + " " + s.Description + " " + s.Category)
}

type UserSkill struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"column:user_id;index;not null" json:"user_id"`
	SkillID     uint           `gorm:"column:skill_id;index;not null" json:"skill_id"`
	SkillType   string         `gorm:"column:skill_type;size:20;not null" json:"skill_type"`
	Proficiency string         `gorm:"column:proficiency_level;size:20" json:"proficiency_level"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`

	Skill *Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

func (UserSkill) TableName() string { return "user_skills" }

// Role resolves the stored skill_type, accepting legacy aliases.
func (us UserSkill) Role() (SkillRole, bool) {
	return CanonicalRole(us.SkillType)
}

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/models"
)

func TestCollapseAliasLinksEmpty(t *testing.T) {
	assert.Empty(t, CollapseAliasLinks(nil))
}

func TestCollapseAliasLinksCanonicalWins(t *testing.T) {
	rows := []models.UserSkill{
		{ID: 1, UserID: 1, SkillID: 10, SkillType: "offer"},
		{ID: 2, UserID: 1, SkillID: 10, SkillType: "teach"},
	}
	out := CollapseAliasLinks(rows)
	require.Len(t, out, 1)
	assert.Equal(t, uint(2), out[0].ID)
	assert.Equal(t, "teach", out[0].SkillType)
}

func TestCollapseAliasLinksLowestIDBreaksTies(t *testing.T) {
	rows := []models.UserSkill{
		{ID: 5, UserID: 1, SkillID: 10, SkillType: "need"},
		{ID: 3, UserID: 1, SkillID: 10, SkillType: "need"},
	}
	out := CollapseAliasLinks(rows)
	require.Len(t, out, 1)
	assert.Equal(t, uint(3), out[0].ID)
}

func TestCollapseAliasLinksDropsUnknownTypes(t *testing.T) {
	rows := []models.UserSkill{
		{ID: 1, UserID: 1, SkillID: 10, SkillType: "mentor"},
		{ID: 2, UserID: 1, SkillID: 11, SkillType: "learn"},
	}
	out := CollapseAliasLinks(rows)
	require.Len(t, out, 1)
	assert.Equal(t, uint(2), out[0].ID)
}

func TestCollapseAliasLinksKeepsDistinctSkills(t *testing.T) {
	rows := []models.UserSkill{
		{ID: 4, UserID: 1, SkillID: 11, SkillType: "teach"},
		{ID: 1, UserID: 1, SkillID: 10, SkillType: "teach"},
		{ID: 2, UserID: 1, SkillID: 10, SkillType: "offer"},
	}
	out := CollapseAliasLinks(rows)
	require.Len(t, out, 2)
	// output ordered by id
	assert.Equal(t, uint(1), out[0].ID)
	assert.Equal(t, uint(4), out[1].ID)
}

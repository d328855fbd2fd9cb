package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRole(t *testing.T) {
	cases := map[string]SkillRole{
		"teach":   RoleTeach,
		"offer":   RoleTeach,
		"learn":   RoleLearn,
		"need":    RoleLearn,
		" TEACH ": RoleTeach,
		"Need":    RoleLearn,
	}
	for in, want := range cases {
		got, ok := CanonicalRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := CanonicalRole("mentor")
	assert.False(t, ok)
	_, ok = CanonicalRole("")
	assert.False(t, ok)
}

func TestRoleAliases(t *testing.T) {
	assert.Equal(t, []string{"teach", "offer"}, RoleTeach.Aliases())
	assert.Equal(t, []string{"learn", "need"}, RoleLearn.Aliases())
}

func TestSkillDocument(t *testing.T) {
	s := Skill{Title: "Python Programming", Description: "intro to python", Category: "Technology"}
	assert.Equal(t, "Python Programming intro to python Technology", s.Document())

	assert.Equal(t, "Guitar", Skill{Title: "Guitar"}.Document())
	assert.Equal(t, "", Skill{}.Document())
}

func TestUserSkillRole(t *testing.T) {
	r, ok := UserSkill{SkillType: "offer"}.Role()
	assert.True(t, ok)
	assert.Equal(t, RoleTeach, r)

	_, ok = UserSkill{SkillType: "bogus"}.Role()
	assert.False(t, ok)
}

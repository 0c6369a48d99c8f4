package ledger

import (
	"testing"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonster() *model.Monster {
	return &model.Monster{
		ID:       7,
		Element:  model.ElementFire,
		Progress: model.Progress{Level: 1, ExperienceToNext: 100},
		Stats:    model.Stats{HP: 1000, ATK: 300, DEF: 200, VIT: 50},
		Skills: []model.Skill{
			{Slot: 1, Name: "Strike", BaseDamage: 100, Scaling: model.Scaling{Stat: model.StatATK, Percent: 20}, Level: 1, MaxLevel: 3},
			{Slot: 2, Name: "Burst", BaseDamage: 400, Scaling: model.Scaling{Stat: model.StatATK, Percent: 40}, Cooldown: 3, CurrentCooldown: 3, Level: 1, MaxLevel: 5},
		},
		SkillPoints: 3,
	}
}

func TestPlayerLevelUp(t *testing.T) {
	l := New(nil)
	p := model.DefaultRules().NewPlayer(1, "p")
	p.Experience = 45

	require.NoError(t, l.GrantExperience(p, 10))
	assert.Equal(t, 1, l.CheckLevelUp(p))
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 5, p.Experience)
	assert.Equal(t, 55, p.ExperienceToNext)
	assert.Equal(t, 11, p.MaxMonsters)
}

func TestGrantExperienceRejectsNegative(t *testing.T) {
	p := model.DefaultRules().NewPlayer(1, "p")
	err := New(nil).GrantExperience(p, -1)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Zero(t, p.Experience)
}

func TestCheckLevelUpMultipleLevels(t *testing.T) {
	l := New(nil)
	m := newMonster()

	// 100 + 110 + 121 = 331
	gained, err := l.Settle(m, 340)
	require.NoError(t, err)
	assert.Equal(t, 3, gained)
	assert.Equal(t, 4, m.Level)
	assert.Equal(t, 9, m.Experience)
	assert.Equal(t, 133, m.ExperienceToNext)
	assert.Equal(t, model.Stats{HP: 1150, ATK: 330, DEF: 230, VIT: 65}, m.Stats)
	assert.Equal(t, 6, m.SkillPoints)
}

func TestCheckLevelUpNoop(t *testing.T) {
	m := newMonster()
	m.Experience = 99
	assert.Zero(t, New(nil).CheckLevelUp(m))
	assert.Equal(t, 1, m.Level)
}

func TestThresholdGrowsAtLeastOne(t *testing.T) {
	rules := model.DefaultRules()
	rules.GrowthRate = 1
	l := New(rules)
	m := newMonster()
	m.ExperienceToNext = 2

	require.NoError(t, l.GrantExperience(m, 5))
	assert.Equal(t, 2, l.CheckLevelUp(m))
	assert.Equal(t, 4, m.ExperienceToNext)
	assert.Equal(t, 0, m.Experience)
}

func TestCheckLevelUpPanicsOnCorruptedThreshold(t *testing.T) {
	l := New(nil)
	for _, threshold := range []int{0, -5} {
		m := newMonster()
		m.ExperienceToNext = threshold
		m.Experience = 10
		assert.Panics(t, func() { l.CheckLevelUp(m) }, "threshold %d", threshold)
		assert.Equal(t, 1, m.Level)
		assert.Equal(t, 10, m.Experience)
	}

	p := model.DefaultRules().NewPlayer(1, "p")
	p.ExperienceToNext = 0
	assert.Panics(t, func() { _, _ = l.Settle(p, 1) })
}

func TestPlayerLevelCap(t *testing.T) {
	l := New(nil)
	p := model.DefaultRules().NewPlayer(1, "p")
	p.Level = 49

	_, err := l.Settle(p, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Level)
	assert.Equal(t, 59, p.MaxMonsters)
	assert.Zero(t, l.CheckLevelUp(p))
}

func TestUpgradeSkill(t *testing.T) {
	l := New(nil)

	t.Run("scales damage and shortens cooldown on even levels", func(t *testing.T) {
		m := newMonster()
		require.NoError(t, l.UpgradeSkill(m, 2))

		s := m.SkillBySlot(2)
		assert.Equal(t, 2, s.Level)
		assert.InDelta(t, 440, s.BaseDamage, 1e-9)
		assert.InDelta(t, 42, s.Scaling.Percent, 1e-9)
		assert.Equal(t, 2, s.Cooldown)
		assert.Equal(t, 2, s.CurrentCooldown)
		assert.Equal(t, 2, m.SkillPoints)

		require.NoError(t, l.UpgradeSkill(m, 2))
		assert.Equal(t, 3, s.Level)
		assert.Equal(t, 2, s.Cooldown)
		assert.NoError(t, m.CheckInvariants())
	})

	t.Run("zero cooldown stays zero", func(t *testing.T) {
		m := newMonster()
		require.NoError(t, l.UpgradeSkill(m, 1))
		assert.Zero(t, m.SkillBySlot(1).Cooldown)
	})

	t.Run("errors", func(t *testing.T) {
		m := newMonster()
		assert.ErrorIs(t, l.UpgradeSkill(m, 9), model.ErrNotFound)

		m.Skills[0].Level = m.Skills[0].MaxLevel
		assert.ErrorIs(t, l.UpgradeSkill(m, 1), model.ErrSkillMaxLevel)

		m.SkillPoints = 0
		assert.ErrorIs(t, l.UpgradeSkill(m, 2), model.ErrNoSkillPoints)
		assert.Equal(t, 1, m.SkillBySlot(2).Level)
	})
}

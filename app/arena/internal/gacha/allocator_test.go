package gacha

import (
	"testing"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/idgen"
	"github.com/lk2023060901/xdooria-arena/pkg/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool() []*model.Template {
	return []*model.Template{
		{
			ID: 1, Name: "Fire Demon Warrior", Element: model.ElementFire, Weight: 3,
			Stats: model.Stats{HP: 1200, ATK: 450, DEF: 300, VIT: 85},
			Skills: []model.SkillTemplate{
				{Name: "Flame Strike", BaseDamage: 125, Scaling: model.Scaling{Stat: model.StatATK, Percent: 25}, MaxLevel: 5},
				{Name: "Hellfire", BaseDamage: 425, Scaling: model.Scaling{Stat: model.StatATK, Percent: 40}, Cooldown: 5, MaxLevel: 5},
			},
		},
		{
			ID: 2, Name: "Wind Guardian", Element: model.ElementWind, Weight: 1,
			Stats: model.Stats{HP: 1500, ATK: 200, DEF: 450, VIT: 80},
		},
	}
}

func newAllocator() *Allocator {
	return NewAllocator(nil, idgen.NewSequence(1000))
}

func playerWith(owned, capacity int) *model.Player {
	p := model.DefaultRules().NewPlayer(1, "tester")
	p.MaxMonsters = capacity
	for i := range owned {
		p.MonsterIDs = append(p.MonsterIDs, int64(i+1))
	}
	return p
}

func TestSummonOneBuildsLevelOneInstance(t *testing.T) {
	m, err := newAllocator().SummonOne(playerWith(0, 10), testPool()[:1], rng.New(1))
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.PlayerID)
	assert.Equal(t, int64(1), m.TemplateID)
	assert.Equal(t, 1, m.Level)
	assert.Equal(t, 100, m.ExperienceToNext)
	assert.Equal(t, 3, m.SkillPoints)
	require.Len(t, m.Skills, 2)
	assert.Equal(t, 1, m.Skills[0].Slot)
	assert.Equal(t, 2, m.Skills[1].Slot)
	assert.Equal(t, 5, m.Skills[1].Cooldown)
	assert.Zero(t, m.Skills[1].CurrentCooldown)
	assert.NoError(t, m.CheckInvariants())
}

func TestSummonOneAtCapacityDrawsNothing(t *testing.T) {
	src := rng.New(77)
	_, err := newAllocator().SummonOne(playerWith(10, 10), testPool(), src)
	assert.ErrorIs(t, err, model.ErrCapacityExceeded)
	assert.Zero(t, src.Position())
	assert.Equal(t, rng.New(77).Float64(), src.Float64())
}

func TestSummonEmptyPool(t *testing.T) {
	_, err := newAllocator().SummonOne(playerWith(0, 10), nil, rng.New(1))
	assert.ErrorIs(t, err, model.ErrNotFound)

	zero := []*model.Template{{ID: 1, Weight: 0}}
	_, err = newAllocator().SummonMany(playerWith(0, 10), zero, 2, rng.New(1))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSummonManyPartialBatch(t *testing.T) {
	ms, err := newAllocator().SummonMany(playerWith(6, 10), testPool(), 10, rng.New(3))
	require.NoError(t, err)
	require.Len(t, ms, 4)

	seen := map[int64]bool{}
	for _, m := range ms {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestSummonManyLimits(t *testing.T) {
	a := newAllocator()

	_, err := a.SummonMany(playerWith(0, 10), testPool(), 0, rng.New(1))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = a.SummonMany(playerWith(10, 10), testPool(), 3, rng.New(1))
	assert.ErrorIs(t, err, model.ErrCapacityExceeded)

	ms, err := a.SummonMany(playerWith(0, 50), testPool(), 25, rng.New(1))
	require.NoError(t, err)
	assert.Len(t, ms, 10)
}

func TestSummonDoesNotMutatePlayer(t *testing.T) {
	p := playerWith(2, 10)
	_, err := newAllocator().SummonMany(p, testPool(), 3, rng.New(1))
	require.NoError(t, err)
	assert.Len(t, p.MonsterIDs, 2)
}

func TestWeightedFidelity(t *testing.T) {
	a := newAllocator()
	p := playerWith(0, 10)
	pool := testPool()
	src := rng.New(2024)

	counts := map[int64]int{}
	for range 100000 {
		m, err := a.SummonOne(p, pool, src)
		require.NoError(t, err)
		counts[m.TemplateID]++
	}
	ratio := float64(counts[1]) / float64(counts[2])
	assert.InDelta(t, 3.0, ratio, 0.1)
}

package battle

import (
	"testing"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster() []*model.Monster {
	return []*model.Monster{
		fireDemon(1),
		windGuardian(2),
		fireDemon(3),
		windGuardian(4),
		basic(5, 3000, 300, 200, 90),
	}
}

func TestResolveRumbleSingleWinner(t *testing.T) {
	r := NewResolver(nil)
	for seed := int64(0); seed < 50; seed++ {
		rec, err := r.ResolveRumble(roster(), rng.New(seed))
		require.NoError(t, err)

		require.NotEmpty(t, rec.Rounds)
		prev := len(rec.ParticipantIDs)
		for _, round := range rec.Rounds {
			assert.LessOrEqual(t, len(round.RemainingMonsterIDs), prev)
			prev = len(round.RemainingMonsterIDs)
		}
		last := rec.Rounds[len(rec.Rounds)-1]
		require.Len(t, last.RemainingMonsterIDs, 1)
		assert.Equal(t, last.RemainingMonsterIDs[0], rec.WinnerID)
		assert.Equal(t, model.DecisionKnockout, rec.Decision)
		assert.Equal(t, 100, rec.Experience)
		assert.Equal(t, seed, rec.Seed)
	}
}

func TestResolveRumbleDeterministic(t *testing.T) {
	r := NewResolver(nil)
	a, err := r.ResolveRumble(roster(), rng.New(99))
	require.NoError(t, err)
	b, err := r.ResolveRumble(roster(), rng.New(99))
	require.NoError(t, err)

	assert.Equal(t, a.Log, b.Log)
	assert.Equal(t, a.Rounds, b.Rounds)
	assert.Equal(t, a.WinnerID, b.WinnerID)
}

func TestResolveRumbleActionsTargetLiving(t *testing.T) {
	rec, err := NewResolver(nil).ResolveRumble(roster(), rng.New(5))
	require.NoError(t, err)

	alive := map[int64]bool{}
	for _, id := range rec.ParticipantIDs {
		alive[id] = true
	}
	for _, round := range rec.Rounds {
		for _, a := range round.Actions {
			assert.True(t, alive[a.MonsterID], "dead monster %d acted", a.MonsterID)
			assert.True(t, alive[a.TargetID], "dead monster %d targeted", a.TargetID)
			assert.NotEqual(t, a.MonsterID, a.TargetID)
			if a.RemainingHP == 0 {
				alive[a.TargetID] = false
			}
		}
	}
}

func TestResolveRumbleActingOrder(t *testing.T) {
	ps := []*model.Monster{
		basic(1, 5000, 10, 10, 20),
		basic(3, 5000, 10, 10, 80),
		basic(2, 5000, 10, 10, 80),
		basic(4, 5000, 10, 10, 50),
	}
	for seed := int64(0); seed < 5; seed++ {
		rec, err := NewResolver(nil).ResolveRumble(ps, rng.New(seed))
		require.NoError(t, err)

		// VIT 高者先手，同 VIT 取较小 ID，与随机源无关
		var order []int64
		for _, a := range rec.Rounds[0].Actions {
			order = append(order, a.MonsterID)
		}
		assert.Equal(t, []int64{2, 3, 4, 1}, order)
	}
}

func TestResolveRumbleLog(t *testing.T) {
	rec, err := NewResolver(nil).ResolveRumble(roster()[:3], rng.New(1))
	require.NoError(t, err)

	assert.Contains(t, rec.Log[0], "Round 1 begins, remaining monsters: ")
	assert.Contains(t, rec.Log[len(rec.Log)-1], "is the final victor!")
	var defeated int
	for _, line := range rec.Log {
		if len(line) > 0 && line[len(line)-1] == '!' && line != rec.Log[len(rec.Log)-1] {
			defeated++
		}
	}
	assert.Equal(t, 2, defeated)
	require.Len(t, rec.Participants, 3)
	assert.Equal(t, model.ElementFire, rec.Participants[0].Element)
}

func TestResolveRumbleValidation(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.ResolveRumble(roster()[:2], rng.New(1))
	assert.ErrorIs(t, err, model.ErrInsufficientParticipants)

	dup := []*model.Monster{fireDemon(1), windGuardian(2), fireDemon(1)}
	_, err = r.ResolveRumble(dup, rng.New(1))
	assert.ErrorIs(t, err, model.ErrInsufficientParticipants)
}

func TestResolveRumbleRoundCap(t *testing.T) {
	rules := model.DefaultRules()
	rules.MaxRounds = 2
	ps := []*model.Monster{
		basic(1, 1000, 1, 1000, 3),
		basic(2, 5000, 1, 1000, 2),
		basic(3, 900, 1, 1000, 1),
	}

	rec, err := NewResolver(rules).ResolveRumble(ps, rng.New(3))
	require.NoError(t, err)
	assert.Equal(t, model.DecisionHPFraction, rec.Decision)
	assert.Len(t, rec.Rounds, 2)
	// 每次只造成 1 点伤害，两回合后 2 号剩余血量最高
	assert.Equal(t, int64(2), rec.WinnerID)
}

func TestResolveRumbleDoesNotMutateInputs(t *testing.T) {
	ps := roster()
	_, err := NewResolver(nil).ResolveRumble(ps, rng.New(11))
	require.NoError(t, err)
	for _, p := range ps {
		assert.Greater(t, p.Stats.HP, 0)
		for _, s := range p.Skills {
			assert.Zero(t, s.CurrentCooldown)
		}
	}
}

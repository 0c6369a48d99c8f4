package dao

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/compress"
	"github.com/lk2023060901/xdooria-arena/pkg/database/redis"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMonster() *model.Monster {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.Monster{
		ID:         42,
		PlayerID:   7,
		TemplateID: 1,
		Name:       "Fire Demon Warrior",
		Element:    model.ElementFire,
		Progress:   model.Progress{Level: 3, Experience: 12, ExperienceToNext: 121},
		Stats:      model.Stats{HP: 1300, ATK: 470, DEF: 320, VIT: 95},
		Skills: []model.Skill{
			{Slot: 1, Name: "Flame Strike", BaseDamage: 137.5, Scaling: model.Scaling{Stat: model.StatATK, Percent: 26.25}, Level: 2, MaxLevel: 5},
			{Slot: 2, Name: "Hellfire", BaseDamage: 425, Scaling: model.Scaling{Stat: model.StatATK, Percent: 40}, Cooldown: 5, CurrentCooldown: 2, Level: 1, MaxLevel: 5},
		},
		SkillPoints: 4,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMonsterRowMapping(t *testing.T) {
	m := sampleMonster()
	values, err := monsterValues(m)
	require.NoError(t, err)
	require.Len(t, values, len(monsterColumns))

	row := &monsterRow{
		ID: m.ID, PlayerID: m.PlayerID, TemplateID: m.TemplateID, Name: m.Name, Element: string(m.Element),
		Level: m.Level, Experience: m.Experience, ExperienceToNext: m.ExperienceToNext,
		HP: m.Stats.HP, ATK: m.Stats.ATK, DEF: m.Stats.DEF, VIT: m.Stats.VIT,
		Skills: values[12].([]byte), SkillPoints: m.SkillPoints,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
	got, err := row.toModel()
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMonsterRowBadSkills(t *testing.T) {
	_, err := (&monsterRow{ID: 1, Skills: []byte("{")}).toModel()
	assert.Error(t, err)
}

func TestUnprocessedQuery(t *testing.T) {
	before := time.Now()
	sql, args, err := psql.Select(summonColumns...).From(summonTable).
		Where("processed = ?", false).
		Where("created_at < ?", before).
		OrderBy("created_at", "id").
		Limit(50).
		ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "processed = $1 AND created_at < $2")
	assert.Equal(t, []any{false, before}, args)
}

func TestMonsterBattlesQuery(t *testing.T) {
	sql, args, err := monsterBattlesQuery(9, 20).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM battle_records")
	assert.Contains(t, sql, "(monster_a = $1 OR monster_b = $2)")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC LIMIT 20")
	assert.Equal(t, []any{int64(9), int64(9)}, args)
}

func newTestCache(t *testing.T) *CacheDAO {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	addr := os.Getenv("ARENA_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := redis.NewClient(&redis.Config{Addrs: []string{addr}, KeyPrefix: fmt.Sprintf("arena-dao-%d:", time.Now().UnixNano())})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return NewCacheDAO(c, time.Minute, logger.NewNoop(), nil)
}

func TestCacheMonster(t *testing.T) {
	d := newTestCache(t)
	ctx := context.Background()
	m := sampleMonster()

	got, err := d.GetMonster(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, d.SetMonster(ctx, m))
	got, err = d.GetMonster(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.Skills, got.Skills)
	assert.Equal(t, m.Progress, got.Progress)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, d.Invalidate(ctx, nil, []int64{m.ID}))
	got, err = d.GetMonster(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheCompressedPlayer(t *testing.T) {
	base := newTestCache(t)
	c, err := compress.New(compress.TypeSnappy)
	require.NoError(t, err)
	d := NewCacheDAO(base.redis, time.Minute, logger.NewNoop(), nil, WithCompressor(c))
	ctx := context.Background()

	p := &model.Player{
		ID:          77,
		Username:    "zip",
		Progress:    model.Progress{Level: 3, Experience: 12, ExperienceToNext: 121},
		MonsterIDs:  []int64{1, 2, 3},
		MaxMonsters: 12,
	}
	require.NoError(t, d.SetPlayer(ctx, p))

	got, err := d.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Username, got.Username)
	assert.Equal(t, p.Progress, got.Progress)
	assert.Equal(t, p.MonsterIDs, got.MonsterIDs)
	assert.Equal(t, p.MaxMonsters, got.MaxMonsters)
}

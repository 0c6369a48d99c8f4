package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/battle"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/event"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/ledger"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/manager"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/repository"
	"github.com/lk2023060901/xdooria-arena/pkg/idgen"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/pool/worker"
	"github.com/lk2023060901/xdooria-arena/pkg/rng"
)

// Pools 结算任务池
type Pools struct {
	Battles *worker.Pool[*model.BattleRecord]
	Rumbles *worker.Pool[*model.RumbleRecord]
}

// Close 实现 app.Closer
func (p *Pools) Close() error {
	p.Battles.Release()
	p.Rumbles.Release()
	return nil
}

// NewPools 按同一配置创建两个任务池
func NewPools(cfg worker.Config) (*Pools, error) {
	battles, err := worker.NewPool[*model.BattleRecord](cfg)
	if err != nil {
		return nil, err
	}
	rumbles, err := worker.NewPool[*model.RumbleRecord](cfg)
	if err != nil {
		battles.Release()
		return nil, err
	}
	return &Pools{Battles: battles, Rumbles: rumbles}, nil
}

// BattleService 1v1 对战与混战
type BattleService struct {
	repo      repository.RosterRepository
	locks     *manager.LockManager
	rules     *RuleSet
	pools     *Pools
	ids       idgen.Generator
	publisher event.Publisher
	metrics   *metrics.ArenaMetrics
	logger    logger.Logger
}

// NewBattleService 创建对战服务
func NewBattleService(
	repo repository.RosterRepository,
	locks *manager.LockManager,
	rules *RuleSet,
	pools *Pools,
	ids idgen.Generator,
	publisher event.Publisher,
	m *metrics.ArenaMetrics,
	l logger.Logger,
) *BattleService {
	return &BattleService{
		repo:      repo,
		locks:     locks,
		rules:     rules,
		pools:     pools,
		ids:       ids,
		publisher: publisher,
		metrics:   m,
		logger:    l.Named("service.battle"),
	}
}

func newRandom(seed *int64) *rng.RNG {
	if seed != nil {
		return rng.New(*seed)
	}
	return rng.New(rng.NewSeed())
}

func checkOwner(playerID int64, ms []*model.Monster) error {
	for _, m := range ms {
		if m.PlayerID != playerID {
			return errors.Wrapf(model.ErrForbidden, "monster %d does not belong to player %d", m.ID, playerID)
		}
	}
	return nil
}

func findMonster(ms []*model.Monster, id int64) *model.Monster {
	for _, m := range ms {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Battle 结算一场 1v1，胜者获得经验并可能升级
func (s *BattleService) Battle(ctx context.Context, playerID, monsterA, monsterB int64, seed *int64) (*model.BattleRecord, error) {
	if monsterA == monsterB {
		return nil, errors.Wrapf(model.ErrInvalidPairing, "monster %d cannot fight itself", monsterA)
	}

	unlock, err := s.locks.LockMonsters(ctx, monsterA, monsterB)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ms, err := s.repo.GetMonsters(ctx, []int64{monsterA, monsterB})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errors.Wrapf(model.ErrInvalidPairing, "%v", err)
		}
		return nil, err
	}
	if err := checkOwner(playerID, ms); err != nil {
		return nil, err
	}

	rules := s.rules.Load()
	resolver := battle.NewResolver(rules)
	rnd := newRandom(seed)

	start := time.Now()
	rec, err := worker.AwaitContext(ctx, s.pools.Battles.Submit(func() (*model.BattleRecord, error) {
		return resolver.ResolveBattle(ms[0], ms[1], rnd)
	}))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordBattle(string(rec.Decision), rec.Rounds, time.Since(start).Seconds())

	if rec.ID, err = s.ids.NextID(); err != nil {
		return nil, errors.Wrap(err, "generate battle id")
	}
	now := time.Now()
	rec.PlayerID = playerID
	rec.CreatedAt = now

	winner := findMonster(ms, rec.WinnerID)
	levels, err := ledger.New(rules).Settle(winner, rec.Experience)
	if err != nil {
		return nil, err
	}
	winner.UpdatedAt = now
	s.metrics.RecordLevelUp("monster", levels)

	if err := s.repo.CommitBattle(ctx, rec, winner); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "battle resolved",
		"battle_id", rec.ID,
		"winner_id", rec.WinnerID,
		"loser_id", rec.LoserID,
		"rounds", rec.Rounds,
		"decision", rec.Decision,
		"levels_gained", levels,
	)

	if err := s.publisher.PublishBattle(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "battle event not published", "battle_id", rec.ID, "error", err)
	}
	return rec, nil
}

// pickParticipants 从名单中不重复地随机选取 n 个
func pickParticipants(roster []*model.Monster, n int, rnd rng.Source) []int64 {
	ids := make([]int64, len(roster))
	for i, m := range roster {
		ids[i] = m.ID
	}
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:n]
}

// Rumble 结算一场混战，monsterIDs 为空时从玩家名单中随机选取
func (s *BattleService) Rumble(ctx context.Context, playerID int64, monsterIDs []int64, seed *int64) (*model.RumbleRecord, error) {
	rules := s.rules.Load()
	if seed == nil {
		v := rng.NewSeed()
		seed = &v
	}

	if len(monsterIDs) == 0 {
		roster, err := s.repo.ListMonsters(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if len(roster) < rules.MinRumbleParticipants {
			return nil, errors.Wrapf(model.ErrInsufficientParticipants,
				"player %d owns %d monsters, need %d", playerID, len(roster), rules.MinRumbleParticipants)
		}
		// 选人使用独立的随机流，显式传入相同 ID 与种子即可复现结算
		monsterIDs = pickParticipants(roster, rules.MinRumbleParticipants, rng.New(*seed))
	}

	unlock, err := s.locks.LockMonsters(ctx, monsterIDs...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ms, err := s.repo.GetMonsters(ctx, monsterIDs)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(playerID, ms); err != nil {
		return nil, err
	}

	resolver := battle.NewResolver(rules)
	rnd := rng.New(*seed)

	start := time.Now()
	rec, err := worker.AwaitContext(ctx, s.pools.Rumbles.Submit(func() (*model.RumbleRecord, error) {
		return resolver.ResolveRumble(ms, rnd)
	}))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRumble(string(rec.Decision), len(rec.Rounds), time.Since(start).Seconds())

	if rec.ID, err = s.ids.NextID(); err != nil {
		return nil, errors.Wrap(err, "generate rumble id")
	}
	now := time.Now()
	rec.PlayerID = playerID
	rec.CreatedAt = now

	winner := findMonster(ms, rec.WinnerID)
	levels, err := ledger.New(rules).Settle(winner, rec.Experience)
	if err != nil {
		return nil, err
	}
	winner.UpdatedAt = now
	s.metrics.RecordLevelUp("monster", levels)

	if err := s.repo.CommitRumble(ctx, rec, winner); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "rumble resolved",
		"rumble_id", rec.ID,
		"participants", len(ms),
		"winner_id", rec.WinnerID,
		"rounds", len(rec.Rounds),
		"decision", rec.Decision,
	)

	if err := s.publisher.PublishRumble(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "rumble event not published", "rumble_id", rec.ID, "error", err)
	}
	return rec, nil
}

// GetBattle 读取对战记录，只能读取自己的记录
func (s *BattleService) GetBattle(ctx context.Context, playerID, id int64) (*model.BattleRecord, error) {
	rec, err := s.repo.GetBattle(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.PlayerID != playerID {
		return nil, errors.Wrapf(model.ErrNotFound, "battle %d", id)
	}
	return rec, nil
}

// MonsterBattles 自己的怪物最近参与的对战，新的在前
func (s *BattleService) MonsterBattles(ctx context.Context, playerID, monsterID int64, limit int) ([]*model.BattleRecord, error) {
	m, err := s.repo.GetMonster(ctx, monsterID)
	if err != nil {
		return nil, err
	}
	if m.PlayerID != playerID {
		return nil, errors.Wrapf(model.ErrForbidden, "monster %d does not belong to player %d", monsterID, playerID)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListMonsterBattles(ctx, monsterID, limit)
}

// GetRumble 读取混战记录
func (s *BattleService) GetRumble(ctx context.Context, playerID, id int64) (*model.RumbleRecord, error) {
	rec, err := s.repo.GetRumble(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.PlayerID != playerID {
		return nil, errors.Wrapf(model.ErrNotFound, "rumble %d", id)
	}
	return rec, nil
}

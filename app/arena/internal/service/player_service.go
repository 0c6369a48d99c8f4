package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/ledger"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/manager"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/repository"
	"github.com/lk2023060901/xdooria-arena/pkg/cache/lru"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

const defaultHistoryLimit = 20

// PlayerService 玩家、怪物状态与经验
type PlayerService struct {
	repo    repository.RosterRepository
	locks   *manager.LockManager
	rules   *RuleSet
	metrics *metrics.ArenaMetrics
	logger  logger.Logger

	// known 已确认存在的玩家，避免每个请求都访问存储
	known *lru.LRU[int64, struct{}]
}

// NewPlayerService 创建玩家服务
func NewPlayerService(
	repo repository.RosterRepository,
	locks *manager.LockManager,
	rules *RuleSet,
	m *metrics.ArenaMetrics,
	l logger.Logger,
) *PlayerService {
	return &PlayerService{
		repo:    repo,
		locks:   locks,
		rules:   rules,
		metrics: m,
		logger:  l.Named("service.player"),
		known:   lru.New[int64, struct{}](lru.Config{MaxSize: 10000, DefaultTTL: 10 * time.Minute}),
	}
}

// Ensure 首次访问时创建 1 级玩家
func (s *PlayerService) Ensure(ctx context.Context, playerID int64, username string) error {
	if _, ok := s.known.Get(playerID); ok {
		return nil
	}
	if username == "" {
		username = fmt.Sprintf("player-%d", playerID)
	}
	p := s.rules.Load().NewPlayer(playerID, username)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if _, err := s.repo.EnsurePlayer(ctx, p); err != nil {
		return err
	}
	s.known.Set(playerID, struct{}{})
	return nil
}

// Get 玩家状态
func (s *PlayerService) Get(ctx context.Context, playerID int64) (*model.Player, error) {
	return s.repo.GetPlayer(ctx, playerID)
}

// Monsters 玩家的怪物名单
func (s *PlayerService) Monsters(ctx context.Context, playerID int64) ([]*model.Monster, error) {
	return s.repo.ListMonsters(ctx, playerID)
}

// Monster 读取自己的怪物
func (s *PlayerService) Monster(ctx context.Context, playerID, monsterID int64) (*model.Monster, error) {
	m, err := s.repo.GetMonster(ctx, monsterID)
	if err != nil {
		return nil, err
	}
	if m.PlayerID != playerID {
		return nil, errors.Wrapf(model.ErrForbidden, "monster %d does not belong to player %d", monsterID, playerID)
	}
	return m, nil
}

// GrantPlayerExperience 增加玩家经验并结算升级
func (s *PlayerService) GrantPlayerExperience(ctx context.Context, playerID int64, amount int) (*model.Player, int, error) {
	unlock, err := s.locks.LockPlayer(ctx, playerID)
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var levels int
	p, err := s.repo.UpdatePlayer(ctx, playerID, func(p *model.Player) error {
		var err error
		if levels, err = ledger.New(s.rules.Load()).Settle(p, amount); err != nil {
			return err
		}
		p.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.metrics.RecordLevelUp("player", levels)
	if levels > 0 {
		s.logger.InfoContext(ctx, "player leveled up", "level", p.Level, "levels_gained", levels, "max_monsters", p.MaxMonsters)
	}
	return p, levels, nil
}

// GrantMonsterExperience 增加怪物经验并结算升级
func (s *PlayerService) GrantMonsterExperience(ctx context.Context, playerID, monsterID int64, amount int) (*model.Monster, int, error) {
	var levels int
	m, err := s.updateMonster(ctx, playerID, monsterID, func(m *model.Monster) error {
		var err error
		levels, err = ledger.New(s.rules.Load()).Settle(m, amount)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	s.metrics.RecordLevelUp("monster", levels)
	return m, levels, nil
}

// UpgradeSkill 消耗技能点升级技能
func (s *PlayerService) UpgradeSkill(ctx context.Context, playerID, monsterID int64, slot int) (*model.Monster, error) {
	m, err := s.updateMonster(ctx, playerID, monsterID, func(m *model.Monster) error {
		return ledger.New(s.rules.Load()).UpgradeSkill(m, slot)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "skill upgraded", "monster_id", monsterID, "slot", slot, "skill_points", m.SkillPoints)
	return m, nil
}

// updateMonster 持锁在存储的最新状态上修改并写回
func (s *PlayerService) updateMonster(ctx context.Context, playerID, monsterID int64, fn func(m *model.Monster) error) (*model.Monster, error) {
	unlock, err := s.locks.LockMonsters(ctx, monsterID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.repo.UpdateMonster(ctx, monsterID, func(m *model.Monster) error {
		if m.PlayerID != playerID {
			return errors.Wrapf(model.ErrForbidden, "monster %d does not belong to player %d", monsterID, playerID)
		}
		if err := fn(m); err != nil {
			return err
		}
		m.UpdatedAt = time.Now()
		return nil
	})
}

// History 最近的对战、混战与召唤记录
func (s *PlayerService) History(ctx context.Context, playerID int64, limit int) (*model.History, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.History(ctx, playerID, limit)
}

// Close 释放缓存
func (s *PlayerService) Close() error {
	return s.known.Close()
}

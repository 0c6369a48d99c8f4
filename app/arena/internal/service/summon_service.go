package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/catalog"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/event"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/gacha"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/manager"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/repository"
	"github.com/lk2023060901/xdooria-arena/pkg/idgen"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/rng"
)

// SummonService 召唤
type SummonService struct {
	repo      repository.RosterRepository
	locks     *manager.LockManager
	rules     *RuleSet
	catalog   *catalog.Catalog
	ids       idgen.Generator
	publisher event.Publisher
	metrics   *metrics.ArenaMetrics
	logger    logger.Logger
}

// NewSummonService 创建召唤服务
func NewSummonService(
	repo repository.RosterRepository,
	locks *manager.LockManager,
	rules *RuleSet,
	cat *catalog.Catalog,
	ids idgen.Generator,
	publisher event.Publisher,
	m *metrics.ArenaMetrics,
	l logger.Logger,
) *SummonService {
	return &SummonService{
		repo:      repo,
		locks:     locks,
		rules:     rules,
		catalog:   cat,
		ids:       ids,
		publisher: publisher,
		metrics:   m,
		logger:    l.Named("service.summon"),
	}
}

// SummonOne 召唤一只
func (s *SummonService) SummonOne(ctx context.Context, playerID int64, seed *int64) (*model.Monster, error) {
	ms, err := s.summon(ctx, playerID, seed, func(a *gacha.Allocator, p *model.Player, pool []*model.Template, rnd *rng.RNG) ([]*model.Monster, error) {
		m, err := a.SummonOne(p, pool, rnd)
		if err != nil {
			return nil, err
		}
		return []*model.Monster{m}, nil
	})
	if err != nil {
		return nil, err
	}
	return ms[0], nil
}

// SummonMany 批量召唤，容量不足时只召唤能放下的数量
func (s *SummonService) SummonMany(ctx context.Context, playerID int64, count int, seed *int64) ([]*model.Monster, error) {
	return s.summon(ctx, playerID, seed, func(a *gacha.Allocator, p *model.Player, pool []*model.Template, rnd *rng.RNG) ([]*model.Monster, error) {
		return a.SummonMany(p, pool, count, rnd)
	})
}

type drawFunc func(a *gacha.Allocator, p *model.Player, pool []*model.Template, rnd *rng.RNG) ([]*model.Monster, error)

func (s *SummonService) summon(ctx context.Context, playerID int64, seed *int64, draw drawFunc) ([]*model.Monster, error) {
	unlock, err := s.locks.LockPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	player, err := s.repo.GetPlayerForWrite(ctx, playerID)
	if err != nil {
		return nil, err
	}
	pool, err := s.catalog.Templates(ctx)
	if err != nil {
		return nil, err
	}

	rnd := newRandom(seed)
	monsters, err := draw(gacha.NewAllocator(s.rules.Load(), s.ids), player, pool, rnd)
	if err != nil {
		s.metrics.RecordSummon(0, false)
		return nil, err
	}

	now := time.Now()
	records := make([]*model.SummonRecord, len(monsters))
	for i, m := range monsters {
		id, err := s.ids.NextID()
		if err != nil {
			return nil, errors.Wrap(err, "generate summon record id")
		}
		records[i] = &model.SummonRecord{
			ID:         id,
			PlayerID:   playerID,
			TemplateID: m.TemplateID,
			Element:    m.Element,
			MonsterID:  m.ID,
			Seed:       rnd.Seed(),
			CreatedAt:  now,
		}
	}

	if err := s.repo.AddMonsters(ctx, playerID, monsters, records); err != nil {
		return nil, err
	}
	for _, m := range monsters {
		s.metrics.RecordSummon(m.TemplateID, true)
	}
	s.logger.InfoContext(ctx, "monsters summoned", "count", len(monsters), "seed", rnd.Seed())

	s.deliver(ctx, records)
	return monsters, nil
}

// deliver 投递召唤日志，成功后标记为已处理；失败的由定时任务重投
func (s *SummonService) deliver(ctx context.Context, records []*model.SummonRecord) bool {
	if err := s.publisher.PublishSummons(ctx, records); err != nil {
		s.logger.WarnContext(ctx, "summon events not published", "count", len(records), "error", err)
		return false
	}
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	if err := s.repo.MarkSummonsProcessed(ctx, ids); err != nil {
		s.logger.WarnContext(ctx, "failed to mark summon records processed", "count", len(ids), "error", err)
		return false
	}
	return true
}

// Republish 重投早于 olderThan 仍未处理的召唤日志，返回成功处理的条数
func (s *SummonService) Republish(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	pending, err := s.repo.ListUnprocessedSummons(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if !s.deliver(ctx, pending) {
		return 0, errors.Newf("failed to republish %d summon records", len(pending))
	}
	s.logger.InfoContext(ctx, "summon records republished", "count", len(pending))
	return len(pending), nil
}

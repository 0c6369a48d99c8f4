package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/dao"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

var _ RosterRepository = (*PostgresRepository)(nil)

// PostgresRepository PostgreSQL 存储
// 配置了 Redis 时 GetPlayer 与 GetMonster 走缓存，Update* 与结算只读数据库
type PostgresRepository struct {
	db         *postgres.Client
	playerDAO  *dao.PlayerDAO
	monsterDAO *dao.MonsterDAO
	recordDAO  *dao.RecordDAO
	summonDAO  *dao.SummonDAO
	// cacheDAO 可为 nil
	cacheDAO *dao.CacheDAO
	logger   logger.Logger
}

// NewPostgresRepository 创建 PostgreSQL 存储
func NewPostgresRepository(
	db *postgres.Client,
	playerDAO *dao.PlayerDAO,
	monsterDAO *dao.MonsterDAO,
	recordDAO *dao.RecordDAO,
	summonDAO *dao.SummonDAO,
	cacheDAO *dao.CacheDAO,
	l logger.Logger,
) *PostgresRepository {
	return &PostgresRepository{
		db:         db,
		playerDAO:  playerDAO,
		monsterDAO: monsterDAO,
		recordDAO:  recordDAO,
		summonDAO:  summonDAO,
		cacheDAO:   cacheDAO,
		logger:     l.Named("repository.postgres"),
	}
}

func (r *PostgresRepository) EnsurePlayer(ctx context.Context, p *model.Player) (*model.Player, error) {
	created, err := r.playerDAO.Insert(ctx, r.db.DB(), p)
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.InfoContext(ctx, "player created", "player_id", p.ID, "username", p.Username)
	}
	return r.GetPlayer(ctx, p.ID)
}

func (r *PostgresRepository) GetPlayer(ctx context.Context, id int64) (*model.Player, error) {
	if r.cacheDAO != nil {
		if p, err := r.cacheDAO.GetPlayer(ctx, id); err == nil && p != nil {
			return p, nil
		}
	}

	p, err := r.loadPlayer(ctx, r.db.DB(), id, false)
	if err != nil {
		return nil, err
	}
	if r.cacheDAO != nil {
		_ = r.cacheDAO.SetPlayer(ctx, p)
	}
	return p, nil
}

func (r *PostgresRepository) GetPlayerForWrite(ctx context.Context, id int64) (*model.Player, error) {
	return r.loadPlayer(ctx, r.db.DB(), id, false)
}

func (r *PostgresRepository) loadPlayer(ctx context.Context, q postgres.Querier, id int64, forUpdate bool) (*model.Player, error) {
	p, err := r.playerDAO.Get(ctx, q, id, forUpdate)
	if err != nil {
		return nil, err
	}
	if p.MonsterIDs, err = r.monsterDAO.IDsByPlayer(ctx, q, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) UpdatePlayer(ctx context.Context, id int64, fn func(p *model.Player) error) (*model.Player, error) {
	var out *model.Player
	err := r.db.WithTx(ctx, func(q postgres.Querier) error {
		p, err := r.loadPlayer(ctx, q, id, true)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := r.playerDAO.Update(ctx, q, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, []int64{id}, nil)
	return out, nil
}

func (r *PostgresRepository) GetMonster(ctx context.Context, id int64) (*model.Monster, error) {
	if r.cacheDAO != nil {
		if m, err := r.cacheDAO.GetMonster(ctx, id); err == nil && m != nil {
			return m, nil
		}
	}

	m, err := r.monsterDAO.Get(ctx, r.db.DB(), id, false)
	if err != nil {
		return nil, err
	}
	if r.cacheDAO != nil {
		_ = r.cacheDAO.SetMonster(ctx, m)
	}
	return m, nil
}

func (r *PostgresRepository) GetMonsters(ctx context.Context, ids []int64) ([]*model.Monster, error) {
	found, err := r.monsterDAO.GetMany(ctx, r.db.DB(), ids)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Monster, 0, len(ids))
	for _, id := range ids {
		m, ok := found[id]
		if !ok {
			return nil, errors.Wrapf(model.ErrNotFound, "monster %d", id)
		}
		// 同一 ID 出现多次时各自独立
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r *PostgresRepository) ListMonsters(ctx context.Context, playerID int64) ([]*model.Monster, error) {
	if _, err := r.playerDAO.Get(ctx, r.db.DB(), playerID, false); err != nil {
		return nil, err
	}
	return r.monsterDAO.ListByPlayer(ctx, r.db.DB(), playerID)
}

func (r *PostgresRepository) UpdateMonster(ctx context.Context, id int64, fn func(m *model.Monster) error) (*model.Monster, error) {
	var out *model.Monster
	err := r.db.WithTx(ctx, func(q postgres.Querier) error {
		m, err := r.monsterDAO.Get(ctx, q, id, true)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		if err := r.monsterDAO.Update(ctx, q, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, nil, []int64{id})
	return out, nil
}

func (r *PostgresRepository) AddMonsters(ctx context.Context, playerID int64, monsters []*model.Monster, summons []*model.SummonRecord) error {
	err := r.db.WithTx(ctx, func(q postgres.Querier) error {
		// 行锁保证并发召唤的容量检查串行
		p, err := r.loadPlayer(ctx, q, playerID, true)
		if err != nil {
			return err
		}
		if len(monsters) > p.Available() {
			return errors.Wrapf(model.ErrCapacityExceeded, "player %d has %d free slots, adding %d", playerID, p.Available(), len(monsters))
		}
		if err := r.monsterDAO.Insert(ctx, q, monsters...); err != nil {
			return err
		}
		return r.summonDAO.Insert(ctx, q, summons...)
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, []int64{playerID}, nil)
	return nil
}

func (r *PostgresRepository) commit(ctx context.Context, monsters []*model.Monster, insert func(q postgres.Querier) error) error {
	err := r.db.WithTx(ctx, func(q postgres.Querier) error {
		for _, m := range monsters {
			if err := r.monsterDAO.Update(ctx, q, m); err != nil {
				return err
			}
		}
		return insert(q)
	})
	if err != nil {
		return err
	}

	ids := make([]int64, len(monsters))
	for i, m := range monsters {
		ids[i] = m.ID
	}
	r.invalidate(ctx, nil, ids)
	return nil
}

func (r *PostgresRepository) CommitBattle(ctx context.Context, rec *model.BattleRecord, monsters ...*model.Monster) error {
	return r.commit(ctx, monsters, func(q postgres.Querier) error {
		return r.recordDAO.InsertBattle(ctx, q, rec)
	})
}

func (r *PostgresRepository) CommitRumble(ctx context.Context, rec *model.RumbleRecord, monsters ...*model.Monster) error {
	return r.commit(ctx, monsters, func(q postgres.Querier) error {
		return r.recordDAO.InsertRumble(ctx, q, rec)
	})
}

func (r *PostgresRepository) GetBattle(ctx context.Context, id int64) (*model.BattleRecord, error) {
	return r.recordDAO.GetBattle(ctx, r.db.DB(), id)
}

func (r *PostgresRepository) GetRumble(ctx context.Context, id int64) (*model.RumbleRecord, error) {
	return r.recordDAO.GetRumble(ctx, r.db.DB(), id)
}

func (r *PostgresRepository) History(ctx context.Context, playerID int64, limit int) (*model.History, error) {
	q := r.db.DB()
	if _, err := r.playerDAO.Get(ctx, q, playerID, false); err != nil {
		return nil, err
	}

	h := &model.History{}
	var err error
	if h.Battles, err = r.recordDAO.ListBattles(ctx, q, playerID, limit); err != nil {
		return nil, fmt.Errorf("failed to load battle history: %w", err)
	}
	if h.Rumbles, err = r.recordDAO.ListRumbles(ctx, q, playerID, limit); err != nil {
		return nil, fmt.Errorf("failed to load rumble history: %w", err)
	}
	if h.Summons, err = r.summonDAO.ListByPlayer(ctx, q, playerID, limit); err != nil {
		return nil, fmt.Errorf("failed to load summon history: %w", err)
	}
	return h, nil
}

func (r *PostgresRepository) ListMonsterBattles(ctx context.Context, monsterID int64, limit int) ([]*model.BattleRecord, error) {
	return r.recordDAO.ListBattlesByMonster(ctx, r.db.DB(), monsterID, limit)
}

func (r *PostgresRepository) ListUnprocessedSummons(ctx context.Context, before time.Time, limit int) ([]*model.SummonRecord, error) {
	return r.summonDAO.ListUnprocessed(ctx, r.db.DB(), before, limit)
}

func (r *PostgresRepository) MarkSummonsProcessed(ctx context.Context, ids []int64) error {
	return r.summonDAO.MarkProcessed(ctx, r.db.DB(), ids)
}

// invalidate 写库成功后删除缓存，失败只记录日志，缓存会在 TTL 后过期
func (r *PostgresRepository) invalidate(ctx context.Context, playerIDs, monsterIDs []int64) {
	if r.cacheDAO == nil {
		return
	}
	if err := r.cacheDAO.Invalidate(ctx, playerIDs, monsterIDs); err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed", "error", err)
	}
}

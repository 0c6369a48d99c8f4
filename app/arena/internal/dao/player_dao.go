package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

const playerTable = "players"

var playerColumns = []string{
	"id", "username", "level", "experience", "experience_to_next", "max_monsters", "created_at", "updated_at",
}

type playerRow struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	Level            int       `db:"level"`
	Experience       int       `db:"experience"`
	ExperienceToNext int       `db:"experience_to_next"`
	MaxMonsters      int       `db:"max_monsters"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r *playerRow) toModel() *model.Player {
	return &model.Player{
		ID:       r.ID,
		Username: r.Username,
		Progress: model.Progress{
			Level:            r.Level,
			Experience:       r.Experience,
			ExperienceToNext: r.ExperienceToNext,
		},
		MaxMonsters: r.MaxMonsters,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// PlayerDAO 玩家数据访问对象
// MonsterIDs 不在 players 表中，由 MonsterDAO.IDsByPlayer 补全
type PlayerDAO struct {
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

// NewPlayerDAO 创建玩家 DAO
func NewPlayerDAO(l logger.Logger, m *metrics.ArenaMetrics) *PlayerDAO {
	return &PlayerDAO{
		logger:  l.Named("dao.player"),
		metrics: m,
	}
}

// Get 查询玩家，forUpdate 为 true 时加行锁，必须在事务中调用
func (d *PlayerDAO) Get(ctx context.Context, q postgres.Querier, id int64, forUpdate bool) (_ *model.Player, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	b := psql.Select(playerColumns...).From(playerTable).Where("id = ?", id)
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	row, err := postgres.Get[playerRow](ctx, q, b)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, cerrors.Wrapf(model.ErrNotFound, "player %d", id)
		}
		d.logger.ErrorContext(ctx, "failed to get player", "player_id", id, "error", err)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return row.toModel(), nil
}

// Insert 创建玩家，已存在时不做修改，返回是否新建
func (d *PlayerDAO) Insert(ctx context.Context, q postgres.Querier, p *model.Player) (_ bool, err error) {
	defer observe(d.metrics, "insert", time.Now(), &err)

	b := psql.Insert(playerTable).
		Columns(playerColumns...).
		Values(p.ID, p.Username, p.Level, p.Experience, p.ExperienceToNext, p.MaxMonsters, p.CreatedAt, p.UpdatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING")
	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to insert player", "player_id", p.ID, "error", err)
		return false, fmt.Errorf("failed to insert player: %w", err)
	}
	return n == 1, nil
}

// Update 写回等级与容量
func (d *PlayerDAO) Update(ctx context.Context, q postgres.Querier, p *model.Player) (err error) {
	defer observe(d.metrics, "update", time.Now(), &err)

	b := psql.Update(playerTable).
		Set("level", p.Level).
		Set("experience", p.Experience).
		Set("experience_to_next", p.ExperienceToNext).
		Set("max_monsters", p.MaxMonsters).
		Set("updated_at", p.UpdatedAt).
		Where("id = ?", p.ID)
	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to update player", "player_id", p.ID, "error", err)
		return fmt.Errorf("failed to update player: %w", err)
	}
	if n == 0 {
		return cerrors.Wrapf(model.ErrNotFound, "player %d", p.ID)
	}
	return nil
}

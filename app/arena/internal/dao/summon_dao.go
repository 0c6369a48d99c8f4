package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

const summonTable = "summon_records"

var summonColumns = []string{
	"id", "player_id", "template_id", "element", "monster_id", "seed", "processed", "created_at",
}

type summonRow struct {
	ID         int64     `db:"id"`
	PlayerID   int64     `db:"player_id"`
	TemplateID int64     `db:"template_id"`
	Element    string    `db:"element"`
	MonsterID  int64     `db:"monster_id"`
	Seed       int64     `db:"seed"`
	Processed  bool      `db:"processed"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *summonRow) toModel() *model.SummonRecord {
	return &model.SummonRecord{
		ID:         r.ID,
		PlayerID:   r.PlayerID,
		TemplateID: r.TemplateID,
		Element:    model.Element(r.Element),
		MonsterID:  r.MonsterID,
		Seed:       r.Seed,
		Processed:  r.Processed,
		CreatedAt:  r.CreatedAt,
	}
}

// SummonDAO 召唤日志
type SummonDAO struct {
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

// NewSummonDAO 创建召唤日志 DAO
func NewSummonDAO(l logger.Logger, m *metrics.ArenaMetrics) *SummonDAO {
	return &SummonDAO{
		logger:  l.Named("dao.summon"),
		metrics: m,
	}
}

// Insert 批量写入召唤日志
func (d *SummonDAO) Insert(ctx context.Context, q postgres.Querier, records ...*model.SummonRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	defer observe(d.metrics, "insert", time.Now(), &err)

	b := psql.Insert(summonTable).Columns(summonColumns...)
	for _, r := range records {
		b = b.Values(r.ID, r.PlayerID, r.TemplateID, string(r.Element), r.MonsterID, r.Seed, r.Processed, r.CreatedAt)
	}
	if _, err := postgres.Exec(ctx, q, b); err != nil {
		d.logger.ErrorContext(ctx, "failed to insert summon records", "count", len(records), "error", err)
		return fmt.Errorf("failed to insert summon records: %w", err)
	}
	return nil
}

// ListByPlayer 玩家最近的召唤日志，新的在前
func (d *SummonDAO) ListByPlayer(ctx context.Context, q postgres.Querier, playerID int64, limit int) (_ []*model.SummonRecord, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	rows, err := postgres.Select[summonRow](ctx, q,
		psql.Select(summonColumns...).From(summonTable).
			Where("player_id = ?", playerID).
			OrderBy("created_at DESC", "id DESC").
			Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list summon records: %w", err)
	}
	return toSummons(rows), nil
}

// ListUnprocessed 早于 before 且尚未投递的日志，旧的在前
func (d *SummonDAO) ListUnprocessed(ctx context.Context, q postgres.Querier, before time.Time, limit int) (_ []*model.SummonRecord, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	rows, err := postgres.Select[summonRow](ctx, q,
		psql.Select(summonColumns...).From(summonTable).
			Where(squirrel.And{
				squirrel.Eq{"processed": false},
				squirrel.Lt{"created_at": before},
			}).
			OrderBy("created_at", "id").
			Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed summon records: %w", err)
	}
	return toSummons(rows), nil
}

// MarkProcessed 标记为已投递
func (d *SummonDAO) MarkProcessed(ctx context.Context, q postgres.Querier, ids []int64) (err error) {
	if len(ids) == 0 {
		return nil
	}
	defer observe(d.metrics, "update", time.Now(), &err)

	n, err := postgres.Exec(ctx, q,
		psql.Update(summonTable).Set("processed", true).Where(squirrel.Eq{"id": ids}))
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to mark summon records processed", "count", len(ids), "error", err)
		return fmt.Errorf("failed to mark summon records processed: %w", err)
	}
	d.logger.DebugContext(ctx, "summon records marked processed", "count", n)
	return nil
}

func toSummons(rows []*summonRow) []*model.SummonRecord {
	out := make([]*model.SummonRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	cerrors "github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

const (
	battleTable = "battle_records"
	rumbleTable = "rumble_records"
)

// 记录整体以 JSONB 存储，player_id / created_at 单独成列用于历史查询
// 对战记录另有 monster_a / monster_b 列，按怪物查询
type recordRow struct {
	Body []byte `db:"body"`
}

// RecordDAO 对战与混战记录
type RecordDAO struct {
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

// NewRecordDAO 创建记录 DAO
func NewRecordDAO(l logger.Logger, m *metrics.ArenaMetrics) *RecordDAO {
	return &RecordDAO{
		logger:  l.Named("dao.record"),
		metrics: m,
	}
}

// InsertBattle 写入对战记录
func (d *RecordDAO) InsertBattle(ctx context.Context, q postgres.Querier, r *model.BattleRecord) error {
	return d.insert(ctx, q, battleTable, r.ID, r.PlayerID, r.WinnerID, r.CreatedAt, r, map[string]any{
		"monster_a": r.MonsterA,
		"monster_b": r.MonsterB,
	})
}

// GetBattle 查询对战记录
func (d *RecordDAO) GetBattle(ctx context.Context, q postgres.Querier, id int64) (*model.BattleRecord, error) {
	return getRecord[model.BattleRecord](ctx, d, q, battleTable, id)
}

// ListBattles 玩家最近的对战记录，新的在前
func (d *RecordDAO) ListBattles(ctx context.Context, q postgres.Querier, playerID int64, limit int) ([]*model.BattleRecord, error) {
	return listRecords[model.BattleRecord](ctx, d, q, battleTable, recordsQuery(battleTable, squirrel.Eq{"player_id": playerID}, limit))
}

// ListBattlesByMonster 某只怪物参与过的最近对战，新的在前
func (d *RecordDAO) ListBattlesByMonster(ctx context.Context, q postgres.Querier, monsterID int64, limit int) ([]*model.BattleRecord, error) {
	return listRecords[model.BattleRecord](ctx, d, q, battleTable, monsterBattlesQuery(monsterID, limit))
}

func monsterBattlesQuery(monsterID int64, limit int) squirrel.SelectBuilder {
	return recordsQuery(battleTable, squirrel.Or{
		squirrel.Eq{"monster_a": monsterID},
		squirrel.Eq{"monster_b": monsterID},
	}, limit)
}

// InsertRumble 写入混战记录
func (d *RecordDAO) InsertRumble(ctx context.Context, q postgres.Querier, r *model.RumbleRecord) error {
	return d.insert(ctx, q, rumbleTable, r.ID, r.PlayerID, r.WinnerID, r.CreatedAt, r, nil)
}

// GetRumble 查询混战记录
func (d *RecordDAO) GetRumble(ctx context.Context, q postgres.Querier, id int64) (*model.RumbleRecord, error) {
	return getRecord[model.RumbleRecord](ctx, d, q, rumbleTable, id)
}

// ListRumbles 玩家最近的混战记录，新的在前
func (d *RecordDAO) ListRumbles(ctx context.Context, q postgres.Querier, playerID int64, limit int) ([]*model.RumbleRecord, error) {
	return listRecords[model.RumbleRecord](ctx, d, q, rumbleTable, recordsQuery(rumbleTable, squirrel.Eq{"player_id": playerID}, limit))
}

func (d *RecordDAO) insert(ctx context.Context, q postgres.Querier, table string, id, playerID, winnerID int64, createdAt time.Time, v any, extra map[string]any) (err error) {
	defer observe(d.metrics, "insert", time.Now(), &err)

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %d: %w", table, id, err)
	}
	cols := map[string]any{
		"id":         id,
		"player_id":  playerID,
		"winner_id":  winnerID,
		"body":       body,
		"created_at": createdAt,
	}
	for k, val := range extra {
		cols[k] = val
	}
	b := psql.Insert(table).SetMap(cols)
	if _, err := postgres.Exec(ctx, q, b); err != nil {
		d.logger.ErrorContext(ctx, "failed to insert record", "table", table, "record_id", id, "error", err)
		return fmt.Errorf("failed to insert %s: %w", table, err)
	}
	return nil
}

func getRecord[T any](ctx context.Context, d *RecordDAO, q postgres.Querier, table string, id int64) (_ *T, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	row, err := postgres.Get[recordRow](ctx, q, psql.Select("body").From(table).Where("id = ?", id))
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, cerrors.Wrapf(model.ErrNotFound, "%s %d", table, id)
		}
		d.logger.ErrorContext(ctx, "failed to get record", "table", table, "record_id", id, "error", err)
		return nil, fmt.Errorf("failed to get %s: %w", table, err)
	}
	var v T
	if err := json.Unmarshal(row.Body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", table, id, err)
	}
	return &v, nil
}

// recordsQuery 按条件取最近 limit 条记录正文
func recordsQuery(table string, where squirrel.Sqlizer, limit int) squirrel.SelectBuilder {
	return psql.Select("body").From(table).
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
}

func listRecords[T any](ctx context.Context, d *RecordDAO, q postgres.Querier, table string, b squirrel.SelectBuilder) (_ []*T, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	rows, err := postgres.Select[recordRow](ctx, q, b)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to list records", "table", table, "error", err)
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := json.Unmarshal(r.Body, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", table, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

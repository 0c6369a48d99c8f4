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

const monsterTable = "monsters"

var monsterColumns = []string{
	"id", "player_id", "template_id", "name", "element",
	"level", "experience", "experience_to_next",
	"hp", "atk", "def", "vit", "skills", "skill_points",
	"created_at", "updated_at",
}

type monsterRow struct {
	ID               int64     `db:"id"`
	PlayerID         int64     `db:"player_id"`
	TemplateID       int64     `db:"template_id"`
	Name             string    `db:"name"`
	Element          string    `db:"element"`
	Level            int       `db:"level"`
	Experience       int       `db:"experience"`
	ExperienceToNext int       `db:"experience_to_next"`
	HP               int       `db:"hp"`
	ATK              int       `db:"atk"`
	DEF              int       `db:"def"`
	VIT              int       `db:"vit"`
	Skills           []byte    `db:"skills"`
	SkillPoints      int       `db:"skill_points"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r *monsterRow) toModel() (*model.Monster, error) {
	m := &model.Monster{
		ID:         r.ID,
		PlayerID:   r.PlayerID,
		TemplateID: r.TemplateID,
		Name:       r.Name,
		Element:    model.Element(r.Element),
		Progress: model.Progress{
			Level:            r.Level,
			Experience:       r.Experience,
			ExperienceToNext: r.ExperienceToNext,
		},
		Stats:       model.Stats{HP: r.HP, ATK: r.ATK, DEF: r.DEF, VIT: r.VIT},
		SkillPoints: r.SkillPoints,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Skills) > 0 {
		if err := json.Unmarshal(r.Skills, &m.Skills); err != nil {
			return nil, fmt.Errorf("failed to decode skills of monster %d: %w", r.ID, err)
		}
	}
	return m, nil
}

func monsterValues(m *model.Monster) ([]any, error) {
	skills, err := json.Marshal(m.Skills)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skills of monster %d: %w", m.ID, err)
	}
	return []any{
		m.ID, m.PlayerID, m.TemplateID, m.Name, string(m.Element),
		m.Level, m.Experience, m.ExperienceToNext,
		m.Stats.HP, m.Stats.ATK, m.Stats.DEF, m.Stats.VIT, skills, m.SkillPoints,
		m.CreatedAt, m.UpdatedAt,
	}, nil
}

// MonsterDAO 怪物数据访问对象
type MonsterDAO struct {
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

// NewMonsterDAO 创建怪物 DAO
func NewMonsterDAO(l logger.Logger, m *metrics.ArenaMetrics) *MonsterDAO {
	return &MonsterDAO{
		logger:  l.Named("dao.monster"),
		metrics: m,
	}
}

// Get 根据 ID 查询怪物，forUpdate 时在事务中加行锁
func (d *MonsterDAO) Get(ctx context.Context, q postgres.Querier, id int64, forUpdate bool) (_ *model.Monster, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	b := psql.Select(monsterColumns...).From(monsterTable).Where("id = ?", id)
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	row, err := postgres.Get[monsterRow](ctx, q, b)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, cerrors.Wrapf(model.ErrNotFound, "monster %d", id)
		}
		d.logger.ErrorContext(ctx, "failed to get monster", "monster_id", id, "error", err)
		return nil, fmt.Errorf("failed to get monster: %w", err)
	}
	return row.toModel()
}

// GetMany 批量查询，结果按 ID 索引，缺失的 ID 不在结果中
func (d *MonsterDAO) GetMany(ctx context.Context, q postgres.Querier, ids []int64) (_ map[int64]*model.Monster, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	rows, err := postgres.Select[monsterRow](ctx, q,
		psql.Select(monsterColumns...).From(monsterTable).Where(squirrel.Eq{"id": ids}))
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to get monsters", "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to get monsters: %w", err)
	}
	out := make(map[int64]*model.Monster, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, nil
}

// ListByPlayer 按获得顺序列出玩家的怪物
func (d *MonsterDAO) ListByPlayer(ctx context.Context, q postgres.Querier, playerID int64) (_ []*model.Monster, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	rows, err := postgres.Select[monsterRow](ctx, q,
		psql.Select(monsterColumns...).From(monsterTable).
			Where("player_id = ?", playerID).
			OrderBy("created_at", "id"))
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to list monsters", "player_id", playerID, "error", err)
		return nil, fmt.Errorf("failed to list monsters: %w", err)
	}
	out := make([]*model.Monster, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// IDsByPlayer 按获得顺序返回玩家的怪物 ID
func (d *MonsterDAO) IDsByPlayer(ctx context.Context, q postgres.Querier, playerID int64) (_ []int64, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	sql, args, err := psql.Select("id").From(monsterTable).
		Where("player_id = ?", playerID).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list monster ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan monster id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return ids, nil
}

// Insert 批量写入新怪物
func (d *MonsterDAO) Insert(ctx context.Context, q postgres.Querier, monsters ...*model.Monster) (err error) {
	if len(monsters) == 0 {
		return nil
	}
	defer observe(d.metrics, "insert", time.Now(), &err)

	b := psql.Insert(monsterTable).Columns(monsterColumns...)
	for _, m := range monsters {
		values, err := monsterValues(m)
		if err != nil {
			return err
		}
		b = b.Values(values...)
	}
	if _, err := postgres.Exec(ctx, q, b); err != nil {
		d.logger.ErrorContext(ctx, "failed to insert monsters", "count", len(monsters), "error", err)
		return fmt.Errorf("failed to insert monsters: %w", err)
	}
	return nil
}

// Update 写回成长后的怪物状态
func (d *MonsterDAO) Update(ctx context.Context, q postgres.Querier, m *model.Monster) (err error) {
	defer observe(d.metrics, "update", time.Now(), &err)

	skills, err := json.Marshal(m.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode skills of monster %d: %w", m.ID, err)
	}
	b := psql.Update(monsterTable).
		Set("level", m.Level).
		Set("experience", m.Experience).
		Set("experience_to_next", m.ExperienceToNext).
		Set("hp", m.Stats.HP).
		Set("atk", m.Stats.ATK).
		Set("def", m.Stats.DEF).
		Set("vit", m.Stats.VIT).
		Set("skills", skills).
		Set("skill_points", m.SkillPoints).
		Set("updated_at", m.UpdatedAt).
		Where("id = ?", m.ID)
	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to update monster", "monster_id", m.ID, "error", err)
		return fmt.Errorf("failed to update monster: %w", err)
	}
	if n == 0 {
		return cerrors.Wrapf(model.ErrNotFound, "monster %d", m.ID)
	}
	return nil
}

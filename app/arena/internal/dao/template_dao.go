package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

const templateTable = "monster_templates"

var templateColumns = []string{"id", "name", "element", "weight", "hp", "atk", "def", "vit", "skills"}

type templateRow struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name"`
	Element string  `db:"element"`
	Weight  float64 `db:"weight"`
	HP      int     `db:"hp"`
	ATK     int     `db:"atk"`
	DEF     int     `db:"def"`
	VIT     int     `db:"vit"`
	Skills  []byte  `db:"skills"`
}

// TemplateDAO 怪物模板，实现 catalog.Loader
type TemplateDAO struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

// NewTemplateDAO 创建模板 DAO
func NewTemplateDAO(db *postgres.Client, l logger.Logger, m *metrics.ArenaMetrics) *TemplateDAO {
	return &TemplateDAO{
		db:      db,
		logger:  l.Named("dao.template"),
		metrics: m,
	}
}

// LoadTemplates 读取全部模板
func (d *TemplateDAO) LoadTemplates(ctx context.Context) (_ []*model.Template, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	rows, err := postgres.Select[templateRow](ctx, d.db.DB(),
		psql.Select(templateColumns...).From(templateTable).OrderBy("id"))
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to load templates", "error", err)
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	out := make([]*model.Template, 0, len(rows))
	for _, r := range rows {
		t := &model.Template{
			ID:      r.ID,
			Name:    r.Name,
			Element: model.Element(r.Element),
			Weight:  r.Weight,
			Stats:   model.Stats{HP: r.HP, ATK: r.ATK, DEF: r.DEF, VIT: r.VIT},
		}
		if err := json.Unmarshal(r.Skills, &t.Skills); err != nil {
			return nil, fmt.Errorf("failed to decode skills of template %d: %w", r.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Upsert 写入或覆盖模板，用于初始化目录
func (d *TemplateDAO) Upsert(ctx context.Context, templates []*model.Template) (err error) {
	if len(templates) == 0 {
		return nil
	}
	defer observe(d.metrics, "insert", time.Now(), &err)

	b := psql.Insert(templateTable).Columns(templateColumns...)
	for _, t := range templates {
		skills, err := json.Marshal(t.Skills)
		if err != nil {
			return fmt.Errorf("failed to encode skills of template %d: %w", t.ID, err)
		}
		b = b.Values(t.ID, t.Name, string(t.Element), t.Weight, t.Stats.HP, t.Stats.ATK, t.Stats.DEF, t.Stats.VIT, skills)
	}
	b = b.Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, element = EXCLUDED.element,
weight = EXCLUDED.weight, hp = EXCLUDED.hp, atk = EXCLUDED.atk, def = EXCLUDED.def,
vit = EXCLUDED.vit, skills = EXCLUDED.skills`)
	if _, err := postgres.Exec(ctx, d.db.DB(), b); err != nil {
		return fmt.Errorf("failed to upsert templates: %w", err)
	}
	return nil
}

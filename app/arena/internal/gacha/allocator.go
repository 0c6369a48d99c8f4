package gacha

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/idgen"
	"github.com/lk2023060901/xdooria-arena/pkg/rng"
)

// Allocator 加权召唤，只生成实例，不做持久化
type Allocator struct {
	rules model.Rules
	ids   idgen.Generator
	now   func() time.Time
}

// NewAllocator 创建召唤器
func NewAllocator(rules *model.Rules, ids idgen.Generator) *Allocator {
	if rules == nil {
		rules = model.DefaultRules()
	}
	return &Allocator{rules: *rules, ids: ids, now: time.Now}
}

// SummonOne 召唤一只怪物
// 怪物栏已满时返回 ErrCapacityExceeded，且不消耗随机数
func (a *Allocator) SummonOne(player *model.Player, pool []*model.Template, src rng.Source) (*model.Monster, error) {
	if player.Available() <= 0 {
		return nil, errors.Wrapf(model.ErrCapacityExceeded, "player %d holds %d/%d monsters", player.ID, len(player.MonsterIDs), player.MaxMonsters)
	}
	weights, err := poolWeights(pool)
	if err != nil {
		return nil, err
	}
	return a.draw(player.ID, pool, weights, src)
}

// SummonMany 批量召唤，数量上限为 MaxBatch
// 剩余容量不足时只召唤能容纳的数量，一只都放不下时返回 ErrCapacityExceeded
func (a *Allocator) SummonMany(player *model.Player, pool []*model.Template, count int, src rng.Source) ([]*model.Monster, error) {
	if count <= 0 {
		return nil, errors.Wrapf(model.ErrInvalidArgument, "summon count must be positive, got %d", count)
	}
	if count > a.rules.MaxBatch {
		count = a.rules.MaxBatch
	}

	available := player.Available()
	if available <= 0 {
		return nil, errors.Wrapf(model.ErrCapacityExceeded, "player %d holds %d/%d monsters", player.ID, len(player.MonsterIDs), player.MaxMonsters)
	}
	weights, err := poolWeights(pool)
	if err != nil {
		return nil, err
	}

	n := min(count, available)
	out := make([]*model.Monster, 0, n)
	for range n {
		m, err := a.draw(player.ID, pool, weights, src)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func poolWeights(pool []*model.Template) ([]float64, error) {
	if len(pool) == 0 {
		return nil, errors.Wrap(model.ErrNotFound, "template pool is empty")
	}
	weights := make([]float64, len(pool))
	total := 0.0
	for i, t := range pool {
		weights[i] = t.Weight
		if t.Weight > 0 {
			total += t.Weight
		}
	}
	if total <= 0 {
		return nil, errors.Wrap(model.ErrNotFound, "template pool has no positive weight")
	}
	return weights, nil
}

func (a *Allocator) draw(playerID int64, pool []*model.Template, weights []float64, src rng.Source) (*model.Monster, error) {
	t := pool[rng.WeightedIndex(src, weights)]
	id, err := a.ids.NextID()
	if err != nil {
		return nil, errors.Wrap(err, "generate monster id")
	}
	return a.instantiate(id, playerID, t), nil
}

// instantiate 由模板生成 1 级怪物
func (a *Allocator) instantiate(id, playerID int64, t *model.Template) *model.Monster {
	now := a.now()
	skills := make([]model.Skill, len(t.Skills))
	for i, st := range t.Skills {
		skills[i] = st.Instantiate(i + 1)
	}
	return &model.Monster{
		ID:         id,
		PlayerID:   playerID,
		TemplateID: t.ID,
		Name:       t.Name,
		Element:    t.Element,
		Progress: model.Progress{
			Level:            1,
			ExperienceToNext: a.rules.MonsterInitialThreshold,
		},
		Stats:       t.Stats,
		Skills:      skills,
		SkillPoints: a.rules.InitialSkillPoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

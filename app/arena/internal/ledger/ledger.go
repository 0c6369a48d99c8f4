package ledger

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

// Entity 可获得经验的对象，玩家与怪物
type Entity interface {
	GetProgress() *model.Progress
}

// Ledger 经验与升级
// 不加锁，调用方负责同一实体的串行访问
type Ledger struct {
	rules model.Rules
}

// New 创建 Ledger，rules 为 nil 时使用默认规则
func New(rules *model.Rules) *Ledger {
	if rules == nil {
		rules = model.DefaultRules()
	}
	return &Ledger{rules: *rules}
}

// GrantExperience 增加经验，不会触发升级
func (l *Ledger) GrantExperience(e Entity, amount int) error {
	if amount < 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "experience amount %d is negative", amount)
	}
	e.GetProgress().Experience += amount
	return nil
}

// CheckLevelUp 结算累计经验，返回提升的等级数
// 升级阈值小于 1 的实体视为已损坏，直接 panic
func (l *Ledger) CheckLevelUp(e Entity) int {
	p := e.GetProgress()
	if p.ExperienceToNext < 1 {
		panic(fmt.Sprintf("ledger: corrupted progress: experience_to_next %d at level %d", p.ExperienceToNext, p.Level))
	}
	levelCap, onLevel := l.effect(e)

	gained := 0
	for p.Experience >= p.ExperienceToNext && (levelCap == 0 || p.Level < levelCap) {
		p.Experience -= p.ExperienceToNext
		p.Level++
		p.ExperienceToNext = l.nextThreshold(p.ExperienceToNext)
		gained++
		if onLevel != nil {
			onLevel(p.Level)
		}
	}
	return gained
}

// Settle 加经验并立即结算升级
func (l *Ledger) Settle(e Entity, amount int) (int, error) {
	if err := l.GrantExperience(e, amount); err != nil {
		return 0, err
	}
	return l.CheckLevelUp(e), nil
}

func (l *Ledger) nextThreshold(prev int) int {
	next := int(math.Floor(float64(prev) * l.rules.GrowthRate))
	return max(prev+1, next)
}

// effect 返回实体的等级上限（0 为不限）与每级效果
func (l *Ledger) effect(e Entity) (int, func(level int)) {
	switch v := e.(type) {
	case *model.Player:
		return l.rules.PlayerMaxLevel, func(level int) {
			v.MaxMonsters = l.rules.BaseMaxMonsters + level - 1
		}
	case *model.Monster:
		return 0, func(int) {
			v.Stats = v.Stats.Add(l.rules.MonsterLevelGrowth)
			v.SkillPoints++
		}
	default:
		return 0, nil
	}
}

// UpgradeSkill 消耗一个技能点升级技能
func (l *Ledger) UpgradeSkill(m *model.Monster, slot int) error {
	s := m.SkillBySlot(slot)
	if s == nil {
		return errors.Wrapf(model.ErrNotFound, "monster %d has no skill in slot %d", m.ID, slot)
	}
	if s.Level >= s.MaxLevel {
		return errors.Wrapf(model.ErrSkillMaxLevel, "skill %d of monster %d is at level %d", slot, m.ID, s.Level)
	}
	if m.SkillPoints <= 0 {
		return errors.Wrapf(model.ErrNoSkillPoints, "monster %d", m.ID)
	}

	m.SkillPoints--
	s.Level++
	s.BaseDamage *= l.rules.SkillDamageGrowth
	s.Scaling.Percent *= l.rules.SkillPercentGrowth
	if s.Level%2 == 0 && s.Cooldown > 0 {
		s.Cooldown = max(1, s.Cooldown-1)
		s.CurrentCooldown = min(s.CurrentCooldown, s.Cooldown)
	}
	return nil
}

package model

import "fmt"

// Scaling 技能伤害的属性加成
type Scaling struct {
	Stat Stat `json:"stat"`
	// Percent 加成百分比，25 表示取属性值的 25%
	Percent float64 `json:"percent"`
}

// Skill 怪物持有的技能实例
type Skill struct {
	// Slot 从 1 开始的稳定序号，0 保留给普通攻击
	Slot            int     `json:"slot"`
	Name            string  `json:"name"`
	BaseDamage      float64 `json:"base_damage"`
	Scaling         Scaling `json:"scaling"`
	Cooldown        int     `json:"cooldown"`
	CurrentCooldown int     `json:"current_cooldown"`
	Level           int     `json:"level"`
	MaxLevel        int     `json:"max_level"`
}

// SkillTemplate 模板中的技能定义
type SkillTemplate struct {
	Name       string  `json:"name"`
	BaseDamage float64 `json:"base_damage"`
	Scaling    Scaling `json:"scaling"`
	Cooldown   int     `json:"cooldown"`
	MaxLevel   int     `json:"max_level"`
}

// Ready 冷却结束
func (s *Skill) Ready() bool {
	return s.CurrentCooldown == 0
}

// Damage 以 stats 计算本技能伤害，截断取整，最小为 1
func (s *Skill) Damage(stats Stats) int {
	d := int(s.BaseDamage + float64(stats.Value(s.Scaling.Stat))*s.Scaling.Percent/100)
	if d < 1 {
		return 1
	}
	return d
}

// check 校验冷却与等级范围
func (s *Skill) check() error {
	if s.CurrentCooldown < 0 || s.CurrentCooldown > s.Cooldown {
		return fmt.Errorf("skill %d cooldown %d out of range [0, %d]", s.Slot, s.CurrentCooldown, s.Cooldown)
	}
	if s.Level < 1 || s.Level > s.MaxLevel {
		return fmt.Errorf("skill %d level %d out of range [1, %d]", s.Slot, s.Level, s.MaxLevel)
	}
	return nil
}

// Instantiate 生成 1 级、冷却就绪的技能实例
func (t SkillTemplate) Instantiate(slot int) Skill {
	maxLevel := t.MaxLevel
	if maxLevel < 1 {
		maxLevel = 1
	}
	return Skill{
		Slot:       slot,
		Name:       t.Name,
		BaseDamage: t.BaseDamage,
		Scaling:    t.Scaling,
		Cooldown:   t.Cooldown,
		Level:      1,
		MaxLevel:   maxLevel,
	}
}

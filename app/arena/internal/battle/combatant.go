package battle

import (
	"fmt"
	"sort"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

// combatant 结算中的独立状态，由快照克隆而来
type combatant struct {
	m     *model.Monster
	hp    int
	maxHP int
}

func newCombatant(m *model.Monster) *combatant {
	if err := m.CheckInvariants(); err != nil {
		panic(fmt.Errorf("battle: corrupted participant: %w", err))
	}
	c := m.Clone()
	return &combatant{m: c, hp: c.Stats.HP, maxHP: c.Stats.HP}
}

func (c *combatant) alive() bool {
	return c.hp > 0
}

// actingOrder VIT 降序，相同时 ID 小的先手
func actingOrder(cs []*combatant) []*combatant {
	out := make([]*combatant, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].m.Stats.VIT != out[j].m.Stats.VIT {
			return out[i].m.Stats.VIT > out[j].m.Stats.VIT
		}
		return out[i].m.ID < out[j].m.ID
	})
	return out
}

// chooseSkill 就绪技能中伤害最高者，同伤害取冷却更短，再取槽位更小
// 没有就绪技能时返回 nil，使用普通攻击
func (c *combatant) chooseSkill() *model.Skill {
	var (
		best       *model.Skill
		bestDamage int
	)
	for i := range c.m.Skills {
		s := &c.m.Skills[i]
		if !s.Ready() {
			continue
		}
		d := s.Damage(c.m.Stats)
		switch {
		case best == nil, d > bestDamage:
		case d == bestDamage && s.Cooldown < best.Cooldown:
		case d == bestDamage && s.Cooldown == best.Cooldown && s.Slot < best.Slot:
		default:
			continue
		}
		best, bestDamage = s, d
	}
	return best
}

func basicAttack(attacker, target *model.Monster) int {
	d := attacker.Stats.ATK - target.Stats.DEF/2
	if d < 1 {
		return 1
	}
	return d
}

// attack 出手一次并推进冷却
func (c *combatant) attack(target *combatant) model.Action {
	slot, damage := 0, 0
	used := c.chooseSkill()
	if used != nil {
		slot, damage = used.Slot, used.Damage(c.m.Stats)
	} else {
		damage = basicAttack(c.m, target.m)
	}

	target.hp -= damage
	if target.hp < 0 {
		target.hp = 0
	}

	for i := range c.m.Skills {
		s := &c.m.Skills[i]
		if s == used {
			s.CurrentCooldown = s.Cooldown
		} else if s.CurrentCooldown > 0 {
			s.CurrentCooldown--
		}
	}

	return model.Action{
		MonsterID:   c.m.ID,
		SkillSlot:   slot,
		Damage:      damage,
		TargetID:    target.m.ID,
		RemainingHP: target.hp,
	}
}

// hpFractionLess a 的剩余血量比例是否小于 b，交叉相乘避免浮点误差
func hpFractionLess(a, b *combatant) bool {
	return int64(a.hp)*int64(b.maxHP) < int64(b.hp)*int64(a.maxHP)
}

func hpFractionEqual(a, b *combatant) bool {
	return int64(a.hp)*int64(b.maxHP) == int64(b.hp)*int64(a.maxHP)
}

func actionLine(a model.Action, attacker, target *model.Monster) string {
	skill := "Basic Attack"
	if a.SkillSlot > 0 {
		skill = fmt.Sprintf("Skill %d", a.SkillSlot)
	}
	return fmt.Sprintf("%s uses %s on %s dealing %d damage, %s remaining HP: %d",
		attacker.Label(), skill, target.Label(), a.Damage, target.Label(), a.RemainingHP)
}

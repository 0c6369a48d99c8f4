package model

import (
	"fmt"
	"time"
)

// Monster 玩家拥有的怪物实例
type Monster struct {
	ID         int64   `json:"id"`
	PlayerID   int64   `json:"player_id"`
	TemplateID int64   `json:"template_id"`
	Name       string  `json:"name"`
	Element    Element `json:"element"`
	Progress
	Stats       Stats     `json:"stats"`
	Skills      []Skill   `json:"skills"`
	SkillPoints int       `json:"skill_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone 深拷贝，技能切片独立
func (m *Monster) Clone() *Monster {
	c := *m
	c.Skills = make([]Skill, len(m.Skills))
	copy(c.Skills, m.Skills)
	return &c
}

// SkillBySlot 按槽位查找技能
func (m *Monster) SkillBySlot(slot int) *Skill {
	for i := range m.Skills {
		if m.Skills[i].Slot == slot {
			return &m.Skills[i]
		}
	}
	return nil
}

// Label 日志中的称呼
func (m *Monster) Label() string {
	name := m.Name
	if name == "" {
		name = string(m.Element)
	}
	return fmt.Sprintf("%s#%d", name, m.ID)
}

// CheckInvariants 进入结算前的状态校验，失败说明上游数据已损坏
func (m *Monster) CheckInvariants() error {
	if m.Stats.HP <= 0 {
		return fmt.Errorf("monster %d has non-positive hp %d", m.ID, m.Stats.HP)
	}
	for i := range m.Skills {
		if err := m.Skills[i].check(); err != nil {
			return fmt.Errorf("monster %d: %w", m.ID, err)
		}
	}
	return nil
}

// Snapshot 记录参战时的状态
func (m *Monster) Snapshot() Snapshot {
	return Snapshot{
		ID:      m.ID,
		Name:    m.Name,
		Element: m.Element,
		Level:   m.Level,
		Stats:   m.Stats,
	}
}

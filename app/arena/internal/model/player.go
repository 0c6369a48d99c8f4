package model

import (
	"slices"
	"time"
)

// Player 玩家
type Player struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Progress
	// MonsterIDs 按获得顺序排列且不重复
	MonsterIDs  []int64   `json:"monster_ids"`
	MaxMonsters int       `json:"max_monsters"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Available 剩余可容纳的怪物数
func (p *Player) Available() int {
	n := p.MaxMonsters - len(p.MonsterIDs)
	if n < 0 {
		return 0
	}
	return n
}

// Owns 是否拥有该怪物
func (p *Player) Owns(monsterID int64) bool {
	return slices.Contains(p.MonsterIDs, monsterID)
}

// Clone 拷贝，MonsterIDs 独立
func (p *Player) Clone() *Player {
	c := *p
	c.MonsterIDs = slices.Clone(p.MonsterIDs)
	return &c
}

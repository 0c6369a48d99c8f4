package model

import "time"

// Decision 胜负判定方式
type Decision string

const (
	// DecisionKnockout 对手血量归零
	DecisionKnockout Decision = "knockout"
	// DecisionHPFraction 达到回合上限后按剩余血量比例判定
	DecisionHPFraction Decision = "hp_fraction"
)

// Action 一次出手
type Action struct {
	MonsterID int64 `json:"monster_id"`
	// SkillSlot 0 表示普通攻击
	SkillSlot   int   `json:"skill_slot"`
	Damage      int   `json:"damage"`
	TargetID    int64 `json:"target_id"`
	RemainingHP int   `json:"remaining_hp"`
}

// BattleRecord 1v1 对战结果，创建后不再修改
type BattleRecord struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"player_id"`
	MonsterA   int64     `json:"monster_a"`
	MonsterB   int64     `json:"monster_b"`
	ElementA   Element   `json:"element_a"`
	ElementB   Element   `json:"element_b"`
	WinnerID   int64     `json:"winner_id"`
	LoserID    int64     `json:"loser_id"`
	Experience int       `json:"experience"`
	Actions    []Action  `json:"actions"`
	Log        []string  `json:"log"`
	Rounds     int       `json:"rounds"`
	Decision   Decision  `json:"decision"`
	Seed       int64     `json:"seed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot 参战时的怪物状态
type Snapshot struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name,omitempty"`
	Element Element `json:"element"`
	Level   int     `json:"level"`
	Stats   Stats   `json:"stats"`
}

// RumbleRound 混战中的一个回合
type RumbleRound struct {
	Number  int      `json:"number"`
	Actions []Action `json:"actions"`
	// RemainingMonsterIDs 回合结束时存活的怪物，按 ID 升序
	RemainingMonsterIDs []int64 `json:"remaining_monster_ids"`
}

// RumbleRecord 混战结果，创建后不再修改
type RumbleRecord struct {
	ID             int64         `json:"id"`
	PlayerID       int64         `json:"player_id"`
	ParticipantIDs []int64       `json:"participant_ids"`
	WinnerID       int64         `json:"winner_id"`
	Participants   []Snapshot    `json:"participants"`
	Rounds         []RumbleRound `json:"rounds"`
	Log            []string      `json:"log"`
	Experience     int           `json:"experience"`
	Decision       Decision      `json:"decision"`
	Seed           int64         `json:"seed"`
	CreatedAt      time.Time     `json:"created_at"`
}

// SummonRecord 召唤日志，Processed 表示已投递到历史流
type SummonRecord struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"player_id"`
	TemplateID int64     `json:"template_id"`
	Element    Element   `json:"element"`
	MonsterID  int64     `json:"monster_id"`
	Seed       int64     `json:"seed"`
	Processed  bool      `json:"processed"`
	CreatedAt  time.Time `json:"created_at"`
}

// History 玩家的历史记录
type History struct {
	Battles []*BattleRecord `json:"battles"`
	Rumbles []*RumbleRecord `json:"rumbles"`
	Summons []*SummonRecord `json:"summons"`
}

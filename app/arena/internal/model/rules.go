package model

// Rules 结算与成长的可调参数，配置文件修改后热更新
type Rules struct {
	// MaxRounds 回合上限，达到后按血量判定胜负
	MaxRounds int `mapstructure:"max_rounds" validate:"min=1"`

	BattleBaseExp  int `mapstructure:"battle_base_exp" validate:"gte=0"`
	BattleLevelExp int `mapstructure:"battle_level_exp" validate:"gte=0"`
	// RumbleBaseExp 混战胜者经验 = RumbleBaseExp * 参与数
	RumbleBaseExp int `mapstructure:"rumble_base_exp" validate:"gte=0"`
	// MinRumbleParticipants 混战最少参与数
	MinRumbleParticipants int `mapstructure:"min_rumble_participants" validate:"min=3"`

	// MaxBatch 单次批量召唤上限
	MaxBatch           int `mapstructure:"max_batch" validate:"min=1"`
	InitialSkillPoints int `mapstructure:"initial_skill_points" validate:"gte=0"`

	// GrowthRate 升级阈值增长系数
	GrowthRate             float64 `mapstructure:"growth_rate" validate:"gte=1"`
	PlayerInitialThreshold int     `mapstructure:"player_initial_threshold" validate:"min=1"`
	PlayerMaxLevel         int     `mapstructure:"player_max_level" validate:"min=1"`
	BaseMaxMonsters        int     `mapstructure:"base_max_monsters" validate:"min=1"`

	MonsterInitialThreshold int   `mapstructure:"monster_initial_threshold" validate:"min=1"`
	MonsterLevelGrowth      Stats `mapstructure:"monster_level_growth"`

	SkillDamageGrowth  float64 `mapstructure:"skill_damage_growth" validate:"gte=1"`
	SkillPercentGrowth float64 `mapstructure:"skill_percent_growth" validate:"gte=1"`
}

// DefaultRules 默认参数
func DefaultRules() *Rules {
	return &Rules{
		MaxRounds:               100,
		BattleBaseExp:           10,
		BattleLevelExp:          2,
		RumbleBaseExp:           20,
		MinRumbleParticipants:   3,
		MaxBatch:                10,
		InitialSkillPoints:      3,
		GrowthRate:              1.1,
		PlayerInitialThreshold:  50,
		PlayerMaxLevel:          50,
		BaseMaxMonsters:         10,
		MonsterInitialThreshold: 100,
		MonsterLevelGrowth:      Stats{HP: 50, ATK: 10, DEF: 10, VIT: 5},
		SkillDamageGrowth:       1.1,
		SkillPercentGrowth:      1.05,
	}
}

// NewPlayer 按规则创建 1 级玩家
func (r *Rules) NewPlayer(id int64, username string) *Player {
	return &Player{
		ID:          id,
		Username:    username,
		Progress:    Progress{Level: 1, ExperienceToNext: r.PlayerInitialThreshold},
		MaxMonsters: r.BaseMaxMonsters,
	}
}

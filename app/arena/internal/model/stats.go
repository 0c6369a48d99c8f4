package model

// Stat 可作为技能加成来源的属性
type Stat string

const (
	StatHP  Stat = "hp"
	StatATK Stat = "atk"
	StatDEF Stat = "def"
	StatVIT Stat = "vit"
)

// Stats 怪物四维
type Stats struct {
	HP  int `json:"hp" mapstructure:"hp"`
	ATK int `json:"atk" mapstructure:"atk"`
	DEF int `json:"def" mapstructure:"def"`
	VIT int `json:"vit" mapstructure:"vit"`
}

// Value 读取指定属性，未知属性返回 0
func (s Stats) Value(stat Stat) int {
	switch stat {
	case StatHP:
		return s.HP
	case StatATK:
		return s.ATK
	case StatDEF:
		return s.DEF
	case StatVIT:
		return s.VIT
	}
	return 0
}

// Add 逐项相加
func (s Stats) Add(o Stats) Stats {
	return Stats{
		HP:  s.HP + o.HP,
		ATK: s.ATK + o.ATK,
		DEF: s.DEF + o.DEF,
		VIT: s.VIT + o.VIT,
	}
}

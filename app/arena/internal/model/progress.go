package model

// Progress 等级与经验
type Progress struct {
	Level            int `json:"level"`
	Experience       int `json:"experience"`
	ExperienceToNext int `json:"experience_to_next"`
}

// GetProgress 返回可修改的等级进度，玩家与怪物共用升级逻辑
func (p *Progress) GetProgress() *Progress {
	return p
}

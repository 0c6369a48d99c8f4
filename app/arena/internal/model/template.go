package model

// Template 怪物模板，召唤时按 Weight 加权抽取
type Template struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Element Element `json:"element"`
	// Weight 未归一化的权重，小于等于 0 的模板不会被抽中
	Weight float64         `json:"weight"`
	Stats  Stats           `json:"stats"`
	Skills []SkillTemplate `json:"skills"`
}

package model

// Element 怪物属性
type Element string

const (
	ElementFire  Element = "fire"
	ElementWater Element = "water"
	ElementEarth Element = "earth"
	ElementWind  Element = "wind"
	ElementLight Element = "light"
	ElementDark  Element = "dark"
)

// Valid 是否为已知属性
func (e Element) Valid() bool {
	switch e {
	case ElementFire, ElementWater, ElementEarth, ElementWind, ElementLight, ElementDark:
		return true
	}
	return false
}

package catalog

import "github.com/lk2023060901/xdooria-arena/app/arena/internal/model"

func atk(name string, base, pct float64, cd, maxLevel int) model.SkillTemplate {
	return skill(name, model.StatATK, base, pct, cd, maxLevel)
}

func skill(name string, stat model.Stat, base, pct float64, cd, maxLevel int) model.SkillTemplate {
	return model.SkillTemplate{
		Name:       name,
		BaseDamage: base,
		Scaling:    model.Scaling{Stat: stat, Percent: pct},
		Cooldown:   cd,
		MaxLevel:   maxLevel,
	}
}

// DefaultTemplates 内置模板，未配置数据库目录时使用
func DefaultTemplates() []*model.Template {
	return []*model.Template{
		{
			ID:      1,
			Name:    "Fire Demon Warrior",
			Element: model.ElementFire,
			Weight:  0.3,
			Stats:   model.Stats{HP: 1200, ATK: 450, DEF: 300, VIT: 85},
			Skills: []model.SkillTemplate{
				atk("Flame Strike", 125, 25, 0, 5),
				atk("Rage of Fire", 250, 27.5, 2, 7),
				atk("Hellfire", 425, 40, 5, 5),
			},
		},
		{
			ID:      2,
			Name:    "Wind Guardian",
			Element: model.ElementWind,
			Weight:  0.3,
			Stats:   model.Stats{HP: 1500, ATK: 200, DEF: 450, VIT: 80},
			Skills: []model.SkillTemplate{
				skill("Defense Counter", model.StatDEF, 200, 10, 0, 4),
				skill("Guardian Strike", model.StatDEF, 315, 17.5, 2, 5),
				skill("Iron Wall Rush", model.StatDEF, 525, 20, 6, 7),
			},
		},
		{
			ID:      3,
			Name:    "Deep Sea Beast",
			Element: model.ElementWater,
			Weight:  0.3,
			Stats:   model.Stats{HP: 2500, ATK: 150, DEF: 200, VIT: 70},
			Skills: []model.SkillTemplate{
				skill("Life Drain", model.StatHP, 150, 5, 0, 7),
				skill("Life Burst", model.StatHP, 350, 7, 2, 4),
				atk("Water Blade Slash", 250, 12, 5, 5),
			},
		},
		{
			ID:      4,
			Name:    "Water Sword Saint",
			Element: model.ElementWater,
			Weight:  0.1,
			Stats:   model.Stats{HP: 1200, ATK: 550, DEF: 350, VIT: 80},
			Skills: []model.SkillTemplate{
				atk("Water Blade", 150, 27.5, 0, 6),
				atk("Torrent Slash", 285, 27.5, 2, 9),
				atk("Wrath of the Sea God", 550, 60, 4, 4),
			},
		},
	}
}

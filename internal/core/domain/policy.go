package domain

// CategoryBonus grants Bonus to every social category listed in Categories.
type CategoryBonus struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
	Bonus      float64  `yaml:"bonus"`
}

type District struct {
	District string `yaml:"district"`
	State    string `yaml:"state"`
}

// PolicyConfig holds the fairness policy constants and reference district sets.
type PolicyConfig struct {
	Threshold             float64            `yaml:"threshold"`
	MaxResults            int                `yaml:"max_results"`
	CategoryBonuses       []CategoryBonus    `yaml:"category_bonuses"`
	AspirationalBonus     float64            `yaml:"aspirational_bonus"`
	RuralBonus            float64            `yaml:"rural_bonus"`
	ParticipationBonuses  map[string]float64 `yaml:"participation_bonuses"`
	AspirationalDistricts []District         `yaml:"aspirational_districts"`
	RuralDistricts        []District         `yaml:"rural_districts"`
}

package model

// Classification lookups referenced by questions. Seeded at migration,
// managed by admins.

// swagger:model Subcategory
type Subcategory struct {
	BaseModel

	Name     string `gorm:"size:100;not null" json:"name"`
	ParentID *uint  `gorm:"type:bigint unsigned" json:"parentId,omitempty"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}

// swagger:model AgeRange
type AgeRange struct {
	BaseModel

	Name   string `gorm:"size:50;not null" json:"name"`
	MinAge int    `json:"minAge"`
	MaxAge int    `json:"maxAge"`
}

func (AgeRange) TableName() string {
	return "age_ranges"
}

// swagger:model DifficultyLevel
type DifficultyLevel struct {
	BaseModel

	Name string `gorm:"size:50;not null" json:"name"`
	Rank int    `gorm:"uniqueIndex" json:"rank"`
}

func (DifficultyLevel) TableName() string {
	return "difficulty_levels"
}

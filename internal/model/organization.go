package model

// swagger:model Organization
type Organization struct {
	BaseModel
	Name        string `gorm:"size:100;unique;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Disabled    bool   `gorm:"default:false" json:"disabled"`
}

func (Organization) TableName() string {
	return "organizations"
}

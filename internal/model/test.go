package model

type TestStatus string

const (
	TestDraft     TestStatus = "draft"
	TestPublished TestStatus = "published"
)

// swagger:model Test
type Test struct {
	BaseModel
	OrganizationID  uint       `gorm:"uniqueIndex:idx_org_test_name" json:"organizationId"`
	Name            string     `gorm:"size:200;not null;uniqueIndex:idx_org_test_name" json:"name"`
	Description     string     `gorm:"size:1000" json:"description"`
	DurationMinutes int        `gorm:"not null" json:"durationMinutes"`
	TotalMarks      int        `gorm:"default:0" json:"totalMarks"` // 派生值：题目分值之和
	Status          TestStatus `gorm:"type:enum('draft','published');default:'draft'" json:"status"`
	CreatedByID     uint       `gorm:"index" json:"createdById"`
	LastEditedByID  uint       `json:"lastEditedById"`
	Attempts        int        `gorm:"default:0" json:"attempts"`
	HighestScore    int        `gorm:"default:0" json:"highestScore"` // 历史最高分水位
	Questions       []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

package model

// 选项键固定为 a/b/c/d 四个
const (
	OptionKeyA = "a"
	OptionKeyB = "b"
	OptionKeyC = "c"
	OptionKeyD = "d"
)

// swagger:model Question
type Question struct {
	BaseModel
	TestID        uint   `gorm:"index;not null" json:"testId"`
	Position      int    `gorm:"not null" json:"position"` // 在测试中的序号，从 0 开始
	Text          string `gorm:"size:2000;not null" json:"text"`
	OptionA       string `gorm:"size:500;not null" json:"optionA"`
	OptionB       string `gorm:"size:500;not null" json:"optionB"`
	OptionC       string `gorm:"size:500;not null" json:"optionC"`
	OptionD       string `gorm:"size:500;not null" json:"optionD"`
	CorrectOption string `gorm:"size:1;not null" json:"correctOption"`
	Marks         int    `gorm:"not null" json:"marks"` // 1-20
}

func (Question) TableName() string {
	return "questions"
}

// Option 按键取选项文本，未知键返回空串
func (q *Question) Option(key string) string {
	switch key {
	case OptionKeyA:
		return q.OptionA
	case OptionKeyB:
		return q.OptionB
	case OptionKeyC:
		return q.OptionC
	case OptionKeyD:
		return q.OptionD
	}
	return ""
}

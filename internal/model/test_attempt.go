package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptTimedOut   AttemptStatus = "timed_out"
)

// IsTerminal 终止态不允许再次变更
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptTimedOut
}

// AnswerMap 题目序号到所选选项键的映射，键形如 q0/q1/...
type AnswerMap map[string]string

// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel
	TestID           uint          `gorm:"uniqueIndex:idx_test_student;not null" json:"testId"`
	StudentID        uint          `gorm:"uniqueIndex:idx_test_student;not null" json:"studentId"`
	OrganizationID   uint          `gorm:"index" json:"organizationId"`
	Status           AttemptStatus `gorm:"type:enum('in_progress','completed','timed_out');default:'in_progress'" json:"status"`
	Answers          string        `gorm:"type:json" json:"-"`
	ScoreAchieved    int           `gorm:"default:0" json:"scoreAchieved"`
	CorrectCount     int           `gorm:"default:0" json:"correctCount"`
	TotalQuestions   int           `gorm:"default:0" json:"totalQuestions"`
	TimeTakenSeconds int           `gorm:"default:0" json:"timeTakenSeconds"`
	StartTime        time.Time     `json:"startTime"`
	ExpiresAt        time.Time     `json:"expiresAt"`
	EndTime          *time.Time    `json:"endTime,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// AnswerMap 反序列化已保存的答案，损坏或为空时返回空映射
func (a *TestAttempt) AnswerMap() AnswerMap {
	m := AnswerMap{}
	if a.Answers == "" {
		return m
	}
	if err := json.Unmarshal([]byte(a.Answers), &m); err != nil {
		return AnswerMap{}
	}
	return m
}

// SetAnswerMap 整体覆盖保存答案（最后写入胜出，无合并语义）
func (a *TestAttempt) SetAnswerMap(m AnswerMap) error {
	if m == nil {
		m = AnswerMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	a.Answers = string(b)
	return nil
}

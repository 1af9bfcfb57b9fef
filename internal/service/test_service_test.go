package service

import (
	"testing"
	"testroom_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func newTestServiceForValidation() *TestService {
	cfg := &config.Config{}
	cfg.Attempt.MinDurationMinutes = 5
	cfg.Attempt.MaxDurationMinutes = 180
	return &TestService{Cfg: cfg}
}

func TestValidateTestRequest(t *testing.T) {
	s := newTestServiceForValidation()

	tests := []struct {
		name     string
		duration int
		wantErr  bool
	}{
		{"lower bound", 5, false},
		{"upper bound", 180, false},
		{"typical", 30, false},
		{"below minimum", 4, true},
		{"above maximum", 181, true},
		{"zero", 0, true},
		{"negative", -10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateTestRequest(TestRequest{Name: "Quiz", DurationMinutes: tt.duration})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateQuestionRequest(t *testing.T) {
	valid := QuestionRequest{
		Text:          "What is 2+2?",
		OptionA:       "3",
		OptionB:       "4",
		OptionC:       "5",
		OptionD:       "6",
		CorrectOption: "b",
		Marks:         2,
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validateQuestionRequest(valid))
	})

	t.Run("bad correct option", func(t *testing.T) {
		req := valid
		req.CorrectOption = "e"
		assert.Error(t, validateQuestionRequest(req))
	})

	t.Run("uppercase option rejected", func(t *testing.T) {
		req := valid
		req.CorrectOption = "B"
		assert.Error(t, validateQuestionRequest(req))
	})

	t.Run("marks too low", func(t *testing.T) {
		req := valid
		req.Marks = 0
		assert.Error(t, validateQuestionRequest(req))
	})

	t.Run("marks too high", func(t *testing.T) {
		req := valid
		req.Marks = 21
		assert.Error(t, validateQuestionRequest(req))
	})

	t.Run("marks bounds", func(t *testing.T) {
		req := valid
		req.Marks = 1
		assert.NoError(t, validateQuestionRequest(req))
		req.Marks = 20
		assert.NoError(t, validateQuestionRequest(req))
	})
}

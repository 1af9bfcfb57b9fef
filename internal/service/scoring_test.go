package service

import (
	"testing"
	"testroom_backend/internal/model"
	"testroom_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func makeQuestions(marks []int, correct []string) []model.Question {
	questions := make([]model.Question, len(marks))
	for i := range marks {
		questions[i] = model.Question{
			Position:      i,
			Text:          "question",
			OptionA:       "A",
			OptionB:       "B",
			OptionC:       "C",
			OptionD:       "D",
			CorrectOption: correct[i],
			Marks:         marks[i],
		}
	}
	return questions
}

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		marks        []int
		correct      []string
		answers      model.AnswerMap
		wantAchieved int
		wantCorrect  int
		wantTotal    int
	}{
		{
			name:         "partially correct",
			marks:        []int{2, 3},
			correct:      []string{"a", "b"},
			answers:      model.AnswerMap{"q0": "a", "q1": "c"},
			wantAchieved: 2,
			wantCorrect:  1,
			wantTotal:    5,
		},
		{
			name:         "empty answer map scores zero",
			marks:        []int{2, 3},
			correct:      []string{"a", "b"},
			answers:      model.AnswerMap{},
			wantAchieved: 0,
			wantCorrect:  0,
			wantTotal:    5,
		},
		{
			name:         "all correct",
			marks:        []int{1, 5, 10},
			correct:      []string{"d", "c", "a"},
			answers:      model.AnswerMap{"q0": "d", "q1": "c", "q2": "a"},
			wantAchieved: 16,
			wantCorrect:  3,
			wantTotal:    16,
		},
		{
			name:         "unanswered question counts as wrong",
			marks:        []int{4, 4},
			correct:      []string{"b", "b"},
			answers:      model.AnswerMap{"q1": "b"},
			wantAchieved: 4,
			wantCorrect:  1,
			wantTotal:    8,
		},
		{
			name:         "unknown option value scores zero",
			marks:        []int{3},
			correct:      []string{"a"},
			answers:      model.AnswerMap{"q0": "z"},
			wantAchieved: 0,
			wantCorrect:  0,
			wantTotal:    3,
		},
		{
			name:         "no questions",
			marks:        nil,
			correct:      nil,
			answers:      model.AnswerMap{},
			wantAchieved: 0,
			wantCorrect:  0,
			wantTotal:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(makeQuestions(tt.marks, tt.correct), tt.answers)
			assert.Equal(t, tt.wantAchieved, got.Achieved)
			assert.Equal(t, tt.wantCorrect, got.CorrectCount)
			assert.Equal(t, tt.wantTotal, got.Total)
		})
	}
}

func TestScoreNeverExceedsTotal(t *testing.T) {
	questions := makeQuestions([]int{2, 3, 5}, []string{"a", "b", "c"})
	answers := model.AnswerMap{"q0": "a", "q1": "b", "q2": "c"}

	got := Score(questions, answers)
	assert.LessOrEqual(t, got.Achieved, got.Total)
	assert.Equal(t, got.Total, got.Achieved)
}

func TestAnswerKeyFor(t *testing.T) {
	assert.Equal(t, "q0", AnswerKeyFor(0))
	assert.Equal(t, "q12", AnswerKeyFor(12))
}

func TestValidateAnswerMap(t *testing.T) {
	tests := []struct {
		name    string
		answers model.AnswerMap
		total   int
		wantErr bool
	}{
		{"valid", model.AnswerMap{"q0": "a", "q1": "d"}, 2, false},
		{"empty is valid", model.AnswerMap{}, 2, false},
		{"sparse is valid", model.AnswerMap{"q1": "b"}, 3, false},
		{"index out of range", model.AnswerMap{"q2": "a"}, 2, true},
		{"negative index", model.AnswerMap{"q-1": "a"}, 2, true},
		{"bad key prefix", model.AnswerMap{"x0": "a"}, 2, true},
		{"non numeric index", model.AnswerMap{"qx": "a"}, 2, true},
		{"leading zero index", model.AnswerMap{"q01": "a"}, 2, true},
		{"signed index", model.AnswerMap{"q+1": "a"}, 2, true},
		{"bad option value", model.AnswerMap{"q0": "e"}, 2, true},
		{"empty option value", model.AnswerMap{"q0": ""}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnswerMap(tt.answers, tt.total)
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrInvalidAnswerMap)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

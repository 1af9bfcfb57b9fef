package service

import (
	"testing"
	"testroom_backend/internal/model"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture(t *testing.T) (*model.Test, []model.Question, *model.TestAttempt, *model.User) {
	t.Helper()

	questions := makeQuestions([]int{2, 3}, []string{"a", "b"})
	test := &model.Test{
		Name:            "Algebra Basics",
		Description:     "Entry level algebra",
		DurationMinutes: 30,
		TotalMarks:      5,
		Status:          model.TestPublished,
		Questions:       questions,
	}

	start := time.Now().Add(-10 * time.Minute)
	end := start.Add(8 * time.Minute)
	attempt := &model.TestAttempt{
		TestID:           1,
		StudentID:        2,
		Status:           model.AttemptCompleted,
		ScoreAchieved:    2,
		CorrectCount:     1,
		TotalQuestions:   2,
		TimeTakenSeconds: 480,
		StartTime:        start,
		ExpiresAt:        start.Add(30 * time.Minute),
		EndTime:          &end,
	}
	require.NoError(t, attempt.SetAnswerMap(model.AnswerMap{"q0": "a", "q1": "c"}))

	student := &model.User{Name: "Alice", Email: "alice@example.com", Role: model.Student}
	return test, questions, attempt, student
}

func TestRenderResultPDF(t *testing.T) {
	test, questions, attempt, student := reportFixture(t)

	data, err := renderResultPDF(test, questions, attempt, student)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderResultPDFWithEmptyAnswers(t *testing.T) {
	test, questions, attempt, student := reportFixture(t)
	require.NoError(t, attempt.SetAnswerMap(model.AnswerMap{}))
	attempt.ScoreAchieved = 0
	attempt.CorrectCount = 0

	data, err := renderResultPDF(test, questions, attempt, student)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderSummaryPDF(t *testing.T) {
	test, questions, _, _ := reportFixture(t)

	data, err := renderSummaryPDF(test, questions)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:45", formatDuration(45))
	assert.Equal(t, "08:00", formatDuration(480))
	assert.Equal(t, "90:00", formatDuration(5400))
}

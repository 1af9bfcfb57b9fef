package service

import (
	"testing"
	"testroom_backend/internal/model"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingSeconds(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		status    model.AttemptStatus
		expiresAt time.Time
		want      int64
	}{
		{"terminal completed is zero", model.AttemptCompleted, now.Add(time.Hour), 0},
		{"terminal timed out is zero", model.AttemptTimedOut, now.Add(time.Hour), 0},
		{"already past deadline is zero", model.AttemptInProgress, now.Add(-time.Minute), 0},
		{"exactly at deadline is zero", model.AttemptInProgress, now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, remainingSeconds(tt.status, tt.expiresAt))
		})
	}

	t.Run("in progress before deadline", func(t *testing.T) {
		got := remainingSeconds(model.AttemptInProgress, now.Add(10*time.Minute))
		assert.Greater(t, got, int64(590))
		assert.LessOrEqual(t, got, int64(600))
	})
}

func TestAttemptViewFromModel(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	end := start.Add(45 * time.Second)
	attempt := &model.TestAttempt{
		TestID:           7,
		StudentID:        3,
		Status:           model.AttemptCompleted,
		ScoreAchieved:    8,
		CorrectCount:     2,
		TotalQuestions:   3,
		TimeTakenSeconds: 45,
		StartTime:        start,
		ExpiresAt:        start.Add(30 * time.Minute),
		EndTime:          &end,
	}
	assert.NoError(t, attempt.SetAnswerMap(model.AnswerMap{"q0": "a", "q2": "c"}))

	view := newAttemptView(attempt)
	assert.Equal(t, uint(7), view.TestID)
	assert.Equal(t, model.AttemptCompleted, view.Status)
	assert.Equal(t, model.AnswerMap{"q0": "a", "q2": "c"}, view.Answers)
	assert.Equal(t, 8, view.ScoreAchieved)
	assert.Equal(t, int64(0), view.RemainingSeconds)
}

func TestAttemptStatusTerminal(t *testing.T) {
	assert.False(t, model.AttemptInProgress.IsTerminal())
	assert.True(t, model.AttemptCompleted.IsTerminal())
	assert.True(t, model.AttemptTimedOut.IsTerminal())
}

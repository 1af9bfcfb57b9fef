package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerMapOverwrite(t *testing.T) {
	var a TestAttempt
	require.NoError(t, a.SetAnswerMap(AnswerMap{"q0": "a", "q1": "b"}))
	require.NoError(t, a.SetAnswerMap(AnswerMap{"q2": "d"}))

	// 整体覆盖，无合并
	assert.Equal(t, AnswerMap{"q2": "d"}, a.AnswerMap())
}

func TestAnswerMapNilAndCorrupt(t *testing.T) {
	var a TestAttempt
	require.NoError(t, a.SetAnswerMap(nil))
	assert.Equal(t, AnswerMap{}, a.AnswerMap())

	a.Answers = "{not json"
	assert.Equal(t, AnswerMap{}, a.AnswerMap())

	a.Answers = ""
	assert.Equal(t, AnswerMap{}, a.AnswerMap())
}

package service

import (
	"fmt"
	"strconv"
	"strings"
	"testroom_backend/internal/model"
	"testroom_backend/internal/util"
)

// ScoreResult 单次判分结果
type ScoreResult struct {
	Achieved     int `json:"achieved"`
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// AnswerKeyFor 第 position 题在答案映射中的键，形如 q0/q1/...
func AnswerKeyFor(position int) string {
	return fmt.Sprintf("q%d", position)
}

// Score 对题目集与答案映射计算得分。纯函数，无失败路径：
// 未作答与答错同样计 0 分，非法的选项值等价于答错。
func Score(questions []model.Question, answers model.AnswerMap) ScoreResult {
	res := ScoreResult{}
	for _, q := range questions {
		res.Total += q.Marks
		if answers[AnswerKeyFor(q.Position)] == q.CorrectOption {
			res.Achieved += q.Marks
			res.CorrectCount++
		}
	}
	return res
}

// ValidateAnswerMap 持久化前校验答案映射：键必须是 q<i> 且序号在题目范围内，
// 值必须是 a-d 之一
func ValidateAnswerMap(answers model.AnswerMap, totalQuestions int) error {
	for key, value := range answers {
		if !strings.HasPrefix(key, "q") {
			return util.ErrInvalidAnswerMap
		}
		idx, err := strconv.Atoi(key[1:])
		if err != nil || idx < 0 || idx >= totalQuestions {
			return util.ErrInvalidAnswerMap
		}
		// 拒绝 q+1、q01 这类能通过 Atoi 但判分时永远读不到的变体写法
		if AnswerKeyFor(idx) != key {
			return util.ErrInvalidAnswerMap
		}
		switch value {
		case model.OptionKeyA, model.OptionKeyB, model.OptionKeyC, model.OptionKeyD:
		default:
			return util.ErrInvalidAnswerMap
		}
	}
	return nil
}

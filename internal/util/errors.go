package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")
	ErrOrgNotFound      = errors.New("organization not found")
	ErrOrgNameTaken     = errors.New("organization name already taken")
	ErrTestNotFound     = errors.New("test not found")
	ErrTestNameTaken    = errors.New("test name already taken in this organization")
	ErrTestNotPublished = errors.New("test not published or not accessible")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptTerminal  = errors.New("attempt already completed or timed out")
	ErrInvalidAnswerMap = errors.New("invalid answer map")
	ErrNothingToReport  = errors.New("attempt has no result to report")
)

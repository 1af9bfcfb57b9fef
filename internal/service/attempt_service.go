package service

import (
	"errors"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"
	"testroom_backend/pkg/logger"
	"testroom_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	Attempts  *repository.AttemptRepository
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	DB        *gorm.DB
}

func NewAttemptService(
	attempts *repository.AttemptRepository,
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		Attempts:  attempts,
		Tests:     tests,
		Questions: questions,
		DB:        db,
	}
}

// AttemptView 返回给客户端的答题快照，倒计时以服务端剩余秒数为准
type AttemptView struct {
	ID               uint                `json:"id"`
	TestID           uint                `json:"testId"`
	Status           model.AttemptStatus `json:"status"`
	Answers          model.AnswerMap     `json:"answers"`
	ScoreAchieved    int                 `json:"scoreAchieved"`
	CorrectCount     int                 `json:"correctCount"`
	TotalQuestions   int                 `json:"totalQuestions"`
	TimeTakenSeconds int                 `json:"timeTakenSeconds"`
	StartTime        time.Time           `json:"startTime"`
	ExpiresAt        time.Time           `json:"expiresAt"`
	RemainingSeconds int64               `json:"remainingSeconds"`
}

func newAttemptView(a *model.TestAttempt) *AttemptView {
	return &AttemptView{
		ID:               a.ID,
		TestID:           a.TestID,
		Status:           a.Status,
		Answers:          a.AnswerMap(),
		ScoreAchieved:    a.ScoreAchieved,
		CorrectCount:     a.CorrectCount,
		TotalQuestions:   a.TotalQuestions,
		TimeTakenSeconds: a.TimeTakenSeconds,
		StartTime:        a.StartTime,
		ExpiresAt:        a.ExpiresAt,
		RemainingSeconds: remainingSeconds(a.Status, a.ExpiresAt),
	}
}

func remainingSeconds(status model.AttemptStatus, expiresAt time.Time) int64 {
	if status != model.AttemptInProgress {
		return 0
	}
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining.Seconds())
}

// Start 开始或恢复一次答题。同一 (test, student) 只存在一条记录：
// 已有记录直接返回（含已保存答案）；进行中但已过期的先按超时终结再返回。
func (s *AttemptService) Start(testID, studentID, orgID uint) (*AttemptView, error) {
	test, err := s.Tests.FindByIDInOrg(testID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if test.Status != model.TestPublished {
		return nil, util.ErrTestNotPublished
	}

	existing, err := s.Attempts.FindByTestAndStudent(testID, studentID)
	if err == nil {
		return s.resumeExisting(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	attempt := &model.TestAttempt{
		TestID:         testID,
		StudentID:      studentID,
		OrganizationID: orgID,
		Status:         model.AttemptInProgress,
		TotalQuestions: len(test.Questions),
		StartTime:      now,
		ExpiresAt:      now.Add(time.Duration(test.DurationMinutes) * time.Minute),
	}
	if err := attempt.SetAnswerMap(model.AnswerMap{}); err != nil {
		return nil, err
	}

	if err := s.Attempts.Create(attempt); err != nil {
		// 唯一索引兜底：并发创建时改为读取已存在的记录
		existing, ferr := s.Attempts.FindByTestAndStudent(testID, studentID)
		if ferr != nil {
			return nil, err
		}
		return s.resumeExisting(existing)
	}

	return newAttemptView(attempt), nil
}

func (s *AttemptService) resumeExisting(attempt *model.TestAttempt) (*AttemptView, error) {
	if attempt.Status == model.AttemptInProgress && time.Now().After(attempt.ExpiresAt) {
		finalized, err := s.finalize(attempt.ID, model.AttemptTimedOut, nil)
		if errors.Is(err, util.ErrAttemptTerminal) {
			// 清扫任务抢先终结了这条记录，重新读取即可
			return s.reload(attempt.ID)
		}
		if err != nil {
			return nil, err
		}
		return newAttemptView(finalized), nil
	}
	return newAttemptView(attempt), nil
}

func (s *AttemptService) reload(attemptID uint) (*AttemptView, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	return newAttemptView(attempt), nil
}

// SaveAnswers 自动保存：整体覆盖答案映射，对相同输入幂等。
// 仅进行中可写；已过期的先按超时终结并向调用方报错。
func (s *AttemptService) SaveAnswers(attemptID, studentID uint, answers model.AnswerMap) error {
	attempt, err := s.loadOwned(attemptID, studentID)
	if err != nil {
		return err
	}
	if attempt.Status.IsTerminal() {
		return util.ErrAttemptTerminal
	}
	if time.Now().After(attempt.ExpiresAt) {
		if _, err := s.finalize(attempt.ID, model.AttemptTimedOut, nil); err != nil && !errors.Is(err, util.ErrAttemptTerminal) {
			return err
		}
		return util.ErrAttemptTerminal
	}

	if err := ValidateAnswerMap(answers, attempt.TotalQuestions); err != nil {
		return err
	}
	if err := attempt.SetAnswerMap(answers); err != nil {
		return err
	}

	// 条件更新：只写仍处于进行中的行。上面的状态检查和这次写入
	// 之间记录可能已被交卷或清扫终结，整行 Save 会把旧状态写回去
	rows, err := s.Attempts.SaveAnswersInProgress(attempt.ID, attempt.Answers)
	if err != nil {
		return err
	}
	if rows == 0 {
		return util.ErrAttemptTerminal
	}
	return nil
}

// Complete 学生主动交卷。截止时间已过的按超时处理，使用最后一次
// 自动保存的答案；否则以提交的完整答案映射为准。
func (s *AttemptService) Complete(attemptID, studentID uint, answers model.AnswerMap) (*AttemptView, error) {
	attempt, err := s.loadOwned(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.IsTerminal() {
		return nil, util.ErrAttemptTerminal
	}

	if time.Now().After(attempt.ExpiresAt) {
		finalized, err := s.finalize(attempt.ID, model.AttemptTimedOut, nil)
		if err != nil {
			return nil, err
		}
		return newAttemptView(finalized), nil
	}

	if err := ValidateAnswerMap(answers, attempt.TotalQuestions); err != nil {
		return nil, err
	}
	finalized, err := s.finalize(attempt.ID, model.AttemptCompleted, answers)
	if err != nil {
		return nil, err
	}
	return newAttemptView(finalized), nil
}

// Get 查询本人答题记录
func (s *AttemptService) Get(attemptID, studentID uint) (*AttemptView, error) {
	attempt, err := s.loadOwned(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptInProgress && time.Now().After(attempt.ExpiresAt) {
		attempt, err = s.finalize(attempt.ID, model.AttemptTimedOut, nil)
		if err != nil {
			return nil, err
		}
	}
	return newAttemptView(attempt), nil
}

func (s *AttemptService) ListByStudent(studentID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	return s.Attempts.ListByStudent(studentID, page, limit)
}

func (s *AttemptService) ListByTest(testID, orgID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	if _, err := s.Tests.FindByIDInOrg(testID, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrTestNotFound
		}
		return nil, 0, err
	}
	return s.Attempts.ListByTest(testID, page, limit)
}

// SweepOverdue 后台清扫：把截止时间已过的进行中记录逐条按超时终结。
// 每条独立事务，单条失败不影响其余。
func (s *AttemptService) SweepOverdue() error {
	overdue, err := s.Attempts.ListOverdueInProgress(time.Now(), 200)
	if err != nil {
		return err
	}
	for _, a := range overdue {
		if _, err := s.finalize(a.ID, model.AttemptTimedOut, nil); err != nil {
			logger.Log.Error("sweep: finalize overdue attempt failed",
				zap.Uint("attempt_id", a.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *AttemptService) loadOwned(attemptID, studentID uint) (*model.TestAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

// finalize 在单个事务内完成终结写入：判分、答题行、测试计数器
// （次数 +1、最高分水位）、学生累计次数。终结写入带状态条件，
// 并发终结时只有一个事务能命中进行中的行，落败方回滚并报已终结，
// 因此同一条记录只会发生一次终止迁移、计数器只加一次。
// answers 为 nil 时使用最后保存的答案。
func (s *AttemptService) finalize(attemptID uint, finalStatus model.AttemptStatus, answers model.AnswerMap) (*model.TestAttempt, error) {
	var result model.TestAttempt

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var attempt model.TestAttempt
		if err := tx.First(&attempt, attemptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}

		if attempt.Status.IsTerminal() {
			return util.ErrAttemptTerminal
		}

		var questions []model.Question
		if err := tx.Where("test_id = ?", attempt.TestID).
			Order("position ASC").Find(&questions).Error; err != nil {
			return err
		}

		if answers == nil {
			answers = attempt.AnswerMap()
		}
		score := Score(questions, answers)

		now := time.Now()
		timeTaken := int(now.Sub(attempt.StartTime).Seconds())
		maxSeconds := int(attempt.ExpiresAt.Sub(attempt.StartTime).Seconds())
		if timeTaken > maxSeconds {
			timeTaken = maxSeconds
		}
		if timeTaken < 0 {
			timeTaken = 0
		}

		if err := attempt.SetAnswerMap(answers); err != nil {
			return err
		}

		res := tx.Model(&model.TestAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":             finalStatus,
				"answers":            attempt.Answers,
				"score_achieved":     score.Achieved,
				"correct_count":      score.CorrectCount,
				"total_questions":    len(questions),
				"time_taken_seconds": timeTaken,
				"end_time":           now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAttemptTerminal
		}

		// 计数器用原子 SQL 表达式更新，避免读改写竞争
		if err := tx.Model(&model.Test{}).Where("id = ?", attempt.TestID).
			Updates(map[string]interface{}{
				"attempts":      gorm.Expr("attempts + 1"),
				"highest_score": gorm.Expr("CASE WHEN highest_score >= ? THEN highest_score ELSE ? END", score.Achieved, score.Achieved),
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.User{}).Where("id = ?", attempt.StudentID).
			Update("attempted_tests", gorm.Expr("attempted_tests + 1")).Error; err != nil {
			return err
		}

		attempt.Status = finalStatus
		attempt.ScoreAchieved = score.Achieved
		attempt.CorrectCount = score.CorrectCount
		attempt.TotalQuestions = len(questions)
		attempt.TimeTakenSeconds = timeTaken
		attempt.EndTime = &now
		result = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptFinalized.WithLabelValues(string(finalStatus)).Inc()
	return &result, nil
}

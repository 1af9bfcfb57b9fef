package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testroom_backend/internal/config"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const studentTestKeyPrefix = "test:student_view:"

type TestService struct {
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	Cfg       *config.Config
	Redis     *redis.Client
}

func NewTestService(tests *repository.TestRepository, questions *repository.QuestionRepository, cfg *config.Config, rdb *redis.Client) *TestService {
	return &TestService{
		Tests:     tests,
		Questions: questions,
		Cfg:       cfg,
		Redis:     rdb,
	}
}

type TestRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes" binding:"required"`
}

type QuestionRequest struct {
	Text          string `json:"text" binding:"required"`
	OptionA       string `json:"optionA" binding:"required"`
	OptionB       string `json:"optionB" binding:"required"`
	OptionC       string `json:"optionC" binding:"required"`
	OptionD       string `json:"optionD" binding:"required"`
	CorrectOption string `json:"correctOption" binding:"required"`
	Marks         int    `json:"marks" binding:"required"`
}

func (s *TestService) validateTestRequest(req TestRequest) error {
	if req.DurationMinutes < s.Cfg.Attempt.MinDurationMinutes || req.DurationMinutes > s.Cfg.Attempt.MaxDurationMinutes {
		return fmt.Errorf("duration must be between %d and %d minutes",
			s.Cfg.Attempt.MinDurationMinutes, s.Cfg.Attempt.MaxDurationMinutes)
	}
	return nil
}

func validateQuestionRequest(req QuestionRequest) error {
	switch req.CorrectOption {
	case model.OptionKeyA, model.OptionKeyB, model.OptionKeyC, model.OptionKeyD:
	default:
		return fmt.Errorf("correct option must be one of a, b, c, d")
	}
	if req.Marks < 1 || req.Marks > 20 {
		return fmt.Errorf("marks must be between 1 and 20")
	}
	return nil
}

func (s *TestService) CreateTest(orgID, creatorID uint, req TestRequest) (*model.Test, error) {
	if err := s.validateTestRequest(req); err != nil {
		return nil, err
	}

	// 名称在组织内唯一
	if _, err := s.Tests.FindByName(orgID, req.Name); err == nil {
		return nil, util.ErrTestNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	test := &model.Test{
		OrganizationID:  orgID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Status:          model.TestDraft,
		CreatedByID:     creatorID,
		LastEditedByID:  creatorID,
	}
	if err := s.Tests.Create(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) UpdateTest(testID, orgID, editorID uint, req TestRequest) (*model.Test, error) {
	if err := s.validateTestRequest(req); err != nil {
		return nil, err
	}

	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return nil, err
	}

	if req.Name != test.Name {
		if _, err := s.Tests.FindByName(orgID, req.Name); err == nil {
			return nil, util.ErrTestNameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	test.Name = req.Name
	test.Description = req.Description
	test.DurationMinutes = req.DurationMinutes
	test.LastEditedByID = editorID
	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}

	s.invalidateStudentView(testID)
	return test, nil
}

func (s *TestService) Publish(testID, orgID, editorID uint) (*model.Test, error) {
	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return nil, err
	}

	count, err := s.Questions.CountByTest(testID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("cannot publish a test without questions")
	}

	test.Status = model.TestPublished
	test.LastEditedByID = editorID
	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}

	s.invalidateStudentView(testID)
	return test, nil
}

func (s *TestService) GetTest(testID, orgID uint) (*model.Test, error) {
	return s.loadInOrg(testID, orgID)
}

func (s *TestService) ListTests(orgID uint, status model.TestStatus, page, limit int) ([]model.Test, int64, error) {
	return s.Tests.ListByOrganization(orgID, status, page, limit)
}

func (s *TestService) AddQuestion(testID, orgID, editorID uint, req QuestionRequest) (*model.Question, error) {
	if err := validateQuestionRequest(req); err != nil {
		return nil, err
	}

	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		TestID:        testID,
		Position:      len(test.Questions),
		Text:          req.Text,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: req.CorrectOption,
		Marks:         req.Marks,
	}
	if err := s.Questions.Create(q); err != nil {
		return nil, err
	}

	if err := s.recomputeTotalMarks(test, editorID); err != nil {
		return nil, err
	}
	return q, nil
}

// AddQuestions 批量追加题目，常用于整卷导入
func (s *TestService) AddQuestions(testID, orgID, editorID uint, reqs []QuestionRequest) ([]model.Question, error) {
	for _, req := range reqs {
		if err := validateQuestionRequest(req); err != nil {
			return nil, err
		}
	}

	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return nil, err
	}

	qs := make([]model.Question, 0, len(reqs))
	for i, req := range reqs {
		qs = append(qs, model.Question{
			TestID:        testID,
			Position:      len(test.Questions) + i,
			Text:          req.Text,
			OptionA:       req.OptionA,
			OptionB:       req.OptionB,
			OptionC:       req.OptionC,
			OptionD:       req.OptionD,
			CorrectOption: req.CorrectOption,
			Marks:         req.Marks,
		})
	}
	if err := s.Questions.CreateBatch(qs); err != nil {
		return nil, err
	}

	if err := s.recomputeTotalMarks(test, editorID); err != nil {
		return nil, err
	}
	return qs, nil
}

func (s *TestService) UpdateQuestion(testID, questionID, orgID, editorID uint, req QuestionRequest) (*model.Question, error) {
	if err := validateQuestionRequest(req); err != nil {
		return nil, err
	}

	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return nil, err
	}

	q, err := s.Questions.FindByID(questionID)
	if err != nil || q.TestID != testID {
		return nil, util.ErrQuestionNotFound
	}

	q.Text = req.Text
	q.OptionA = req.OptionA
	q.OptionB = req.OptionB
	q.OptionC = req.OptionC
	q.OptionD = req.OptionD
	q.CorrectOption = req.CorrectOption
	q.Marks = req.Marks
	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}

	if err := s.recomputeTotalMarks(test, editorID); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *TestService) DeleteQuestion(testID, questionID, orgID, editorID uint) error {
	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return err
	}

	q, err := s.Questions.FindByID(questionID)
	if err != nil || q.TestID != testID {
		return util.ErrQuestionNotFound
	}

	if err := s.Questions.Delete(questionID); err != nil {
		return err
	}

	// 删除后重排序号，保持 0..n-1 连续
	remaining, err := s.Questions.FindByTest(testID)
	if err != nil {
		return err
	}
	for i := range remaining {
		if remaining[i].Position != i {
			remaining[i].Position = i
			if err := s.Questions.Update(&remaining[i]); err != nil {
				return err
			}
		}
	}

	return s.recomputeTotalMarks(test, editorID)
}

// recomputeTotalMarks 每次题目变动后重算总分，保持派生值一致
func (s *TestService) recomputeTotalMarks(test *model.Test, editorID uint) error {
	total, err := s.Questions.SumMarks(test.ID)
	if err != nil {
		return err
	}
	test.TotalMarks = total
	test.LastEditedByID = editorID
	if err := s.Tests.Update(test); err != nil {
		return err
	}
	s.invalidateStudentView(test.ID)
	return nil
}

// StudentQuestion 学生端题目视图，不含正确答案
type StudentQuestion struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
	OptionA  string `json:"optionA"`
	OptionB  string `json:"optionB"`
	OptionC  string `json:"optionC"`
	OptionD  string `json:"optionD"`
	Marks    int    `json:"marks"`
}

// StudentTestView 学生端测试视图
type StudentTestView struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	DurationMinutes int               `json:"durationMinutes"`
	TotalMarks      int               `json:"totalMarks"`
	Questions       []StudentQuestion `json:"questions"`
}

// GetStudentView 学生端获取已发布的测试，正确答案被剥除。
// 结果缓存 5 分钟，编辑或发布时失效。
func (s *TestService) GetStudentView(testID, orgID uint) (*StudentTestView, error) {
	ctx := context.Background()
	redisKey := fmt.Sprintf("%s%d", studentTestKeyPrefix, testID)

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, redisKey).Result()
		if err == nil {
			var cached StudentTestView
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return &cached, nil
			}
		}
	}

	test, err := s.loadInOrg(testID, orgID)
	if err != nil {
		return nil, err
	}
	if test.Status != model.TestPublished {
		return nil, util.ErrTestNotPublished
	}

	view := &StudentTestView{
		ID:              test.ID,
		Name:            test.Name,
		Description:     test.Description,
		DurationMinutes: test.DurationMinutes,
		TotalMarks:      test.TotalMarks,
		Questions:       make([]StudentQuestion, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		view.Questions = append(view.Questions, StudentQuestion{
			Position: q.Position,
			Text:     q.Text,
			OptionA:  q.OptionA,
			OptionB:  q.OptionB,
			OptionC:  q.OptionC,
			OptionD:  q.OptionD,
			Marks:    q.Marks,
		})
	}

	if s.Redis != nil {
		if b, err := json.Marshal(view); err == nil {
			s.Redis.Set(ctx, redisKey, b, 5*time.Minute)
		}
	}

	return view, nil
}

func (s *TestService) invalidateStudentView(testID uint) {
	if s.Redis == nil {
		return
	}
	redisKey := fmt.Sprintf("%s%d", studentTestKeyPrefix, testID)
	s.Redis.Del(context.Background(), redisKey)
}

func (s *TestService) loadInOrg(testID, orgID uint) (*model.Test, error) {
	test, err := s.Tests.FindByIDInOrg(testID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

package service

import (
	"errors"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"

	"gorm.io/gorm"
)

type DashboardService struct {
	Users    *repository.UserRepository
	Tests    *repository.TestRepository
	Attempts *repository.AttemptRepository
}

func NewDashboardService(users *repository.UserRepository, tests *repository.TestRepository, attempts *repository.AttemptRepository) *DashboardService {
	return &DashboardService{Users: users, Tests: tests, Attempts: attempts}
}

// AdminStats 组织管理员首页概览
type AdminStats struct {
	TeacherCount   int64               `json:"teacherCount"`
	StudentCount   int64               `json:"studentCount"`
	DraftTests     int64               `json:"draftTests"`
	PublishedTests int64               `json:"publishedTests"`
	RecentAttempts []RecentAttemptItem `json:"recentAttempts"`
}

type RecentAttemptItem struct {
	AttemptID     uint                `json:"attemptId"`
	TestID        uint                `json:"testId"`
	TestName      string              `json:"testName"`
	StudentID     uint                `json:"studentId"`
	StudentName   string              `json:"studentName"`
	Status        model.AttemptStatus `json:"status"`
	ScoreAchieved int                 `json:"scoreAchieved"`
	TotalMarks    int                 `json:"totalMarks"`
}

func (s *DashboardService) AdminStats(orgID uint) (*AdminStats, error) {
	stats := &AdminStats{}

	var err error
	if stats.TeacherCount, err = s.Users.CountByOrganizationAndRole(orgID, model.Teacher); err != nil {
		return nil, err
	}
	if stats.StudentCount, err = s.Users.CountByOrganizationAndRole(orgID, model.Student); err != nil {
		return nil, err
	}
	if stats.DraftTests, err = s.Tests.CountByOrganizationAndStatus(orgID, model.TestDraft); err != nil {
		return nil, err
	}
	if stats.PublishedTests, err = s.Tests.CountByOrganizationAndStatus(orgID, model.TestPublished); err != nil {
		return nil, err
	}

	recent, err := s.Attempts.ListRecentByOrganization(orgID, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentAttempts = make([]RecentAttemptItem, 0, len(recent))
	for _, a := range recent {
		item := RecentAttemptItem{
			AttemptID:     a.ID,
			TestID:        a.TestID,
			StudentID:     a.StudentID,
			Status:        a.Status,
			ScoreAchieved: a.ScoreAchieved,
		}
		if test, err := s.Tests.FindByID(a.TestID); err == nil {
			item.TestName = test.Name
			item.TotalMarks = test.TotalMarks
		}
		if student, err := s.Users.FindByID(a.StudentID); err == nil {
			item.StudentName = student.Name
		}
		stats.RecentAttempts = append(stats.RecentAttempts, item)
	}

	return stats, nil
}

// TestStats 教师端单场测试的成绩分布
type TestStats struct {
	TestID        uint              `json:"testId"`
	TestName      string            `json:"testName"`
	TotalMarks    int               `json:"totalMarks"`
	AttemptCount  int64             `json:"attemptCount"`
	HighestScore  int               `json:"highestScore"`
	AverageScore  float64           `json:"averageScore"`
	CompletedRate float64           `json:"completedRate"`
	Leaderboard   []LeaderboardItem `json:"leaderboard"`
}

type LeaderboardItem struct {
	StudentID        uint                `json:"studentId"`
	StudentName      string              `json:"studentName"`
	Status           model.AttemptStatus `json:"status"`
	ScoreAchieved    int                 `json:"scoreAchieved"`
	CorrectCount     int                 `json:"correctCount"`
	TimeTakenSeconds int                 `json:"timeTakenSeconds"`
}

func (s *DashboardService) TestStats(testID, orgID uint) (*TestStats, error) {
	test, err := s.Tests.FindByIDInOrg(testID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	attempts, total, err := s.Attempts.ListByTest(testID, 1, 50)
	if err != nil {
		return nil, err
	}

	stats := &TestStats{
		TestID:       test.ID,
		TestName:     test.Name,
		TotalMarks:   test.TotalMarks,
		AttemptCount: total,
		HighestScore: test.HighestScore,
		Leaderboard:  make([]LeaderboardItem, 0, len(attempts)),
	}

	scoreSum := 0
	terminalCount := 0
	for _, a := range attempts {
		if a.Status.IsTerminal() {
			scoreSum += a.ScoreAchieved
			terminalCount++
		}
		item := LeaderboardItem{
			StudentID:        a.StudentID,
			Status:           a.Status,
			ScoreAchieved:    a.ScoreAchieved,
			CorrectCount:     a.CorrectCount,
			TimeTakenSeconds: a.TimeTakenSeconds,
		}
		if student, err := s.Users.FindByID(a.StudentID); err == nil {
			item.StudentName = student.Name
		}
		stats.Leaderboard = append(stats.Leaderboard, item)
	}
	if terminalCount > 0 {
		stats.AverageScore = float64(scoreSum) / float64(terminalCount)
	}
	if len(attempts) > 0 {
		stats.CompletedRate = float64(terminalCount) / float64(len(attempts))
	}

	return stats, nil
}

// StudentHistoryItem 学生端个人历史成绩
type StudentHistoryItem struct {
	AttemptID        uint                `json:"attemptId"`
	TestID           uint                `json:"testId"`
	TestName         string              `json:"testName"`
	Status           model.AttemptStatus `json:"status"`
	ScoreAchieved    int                 `json:"scoreAchieved"`
	TotalMarks       int                 `json:"totalMarks"`
	CorrectCount     int                 `json:"correctCount"`
	TotalQuestions   int                 `json:"totalQuestions"`
	TimeTakenSeconds int                 `json:"timeTakenSeconds"`
}

func (s *DashboardService) StudentHistory(studentID uint, page, limit int) ([]StudentHistoryItem, int64, error) {
	attempts, total, err := s.Attempts.ListByStudent(studentID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]StudentHistoryItem, 0, len(attempts))
	for _, a := range attempts {
		item := StudentHistoryItem{
			AttemptID:        a.ID,
			TestID:           a.TestID,
			Status:           a.Status,
			ScoreAchieved:    a.ScoreAchieved,
			CorrectCount:     a.CorrectCount,
			TotalQuestions:   a.TotalQuestions,
			TimeTakenSeconds: a.TimeTakenSeconds,
		}
		if test, err := s.Tests.FindByID(a.TestID); err == nil {
			item.TestName = test.Name
			item.TotalMarks = test.TotalMarks
		}
		items = append(items, item)
	}
	return items, total, nil
}

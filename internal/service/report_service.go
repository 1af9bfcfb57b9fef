package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

type ReportService struct {
	Attempts  *repository.AttemptRepository
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	Users     *repository.UserRepository
	Storage   *StorageService
}

func NewReportService(
	attempts *repository.AttemptRepository,
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	users *repository.UserRepository,
	storage *StorageService,
) *ReportService {
	return &ReportService{
		Attempts:  attempts,
		Tests:     tests,
		Questions: questions,
		Users:     users,
		Storage:   storage,
	}
}

// ResultPDF 导出一次已终结答题的成绩单。学生只能导出自己的，
// 教师和管理员可导出本组织内任意一份。
func (s *ReportService) ResultPDF(attemptID uint, claims *util.Claims) (string, []byte, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrAttemptNotFound
		}
		return "", nil, err
	}

	if claims.Role == model.Student {
		if attempt.StudentID != claims.UserID {
			return "", nil, util.ErrPermissionDenied
		}
	} else if attempt.OrganizationID != claims.OrganizationID {
		return "", nil, util.ErrPermissionDenied
	}

	if !attempt.Status.IsTerminal() {
		return "", nil, util.ErrNothingToReport
	}

	test, err := s.Tests.FindByID(attempt.TestID)
	if err != nil {
		return "", nil, err
	}
	student, err := s.Users.FindByID(attempt.StudentID)
	if err != nil {
		return "", nil, err
	}

	data, err := renderResultPDF(test, test.Questions, attempt, student)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s-Result.pdf", test.Name)
	return filename, data, nil
}

// SummaryPDF 教师端导出测试卷面（含答案标注）
func (s *ReportService) SummaryPDF(testID, orgID uint) (string, []byte, error) {
	test, err := s.Tests.FindByIDInOrg(testID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrTestNotFound
		}
		return "", nil, err
	}

	data, err := renderSummaryPDF(test, test.Questions)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s-Summary.pdf", test.Name)
	return filename, data, nil
}

// ArchiveResult 把成绩单归档到对象存储，返回可访问的 URL
func (s *ReportService) ArchiveResult(ctx context.Context, attemptID uint, claims *util.Claims) (string, error) {
	filename, data, err := s.ResultPDF(attemptID, claims)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("reports/%d/%s-%s", attemptID, model.GenerateUUID(), filename)
	return s.Storage.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), util.MimePDF)
}

var optionKeys = []string{model.OptionKeyA, model.OptionKeyB, model.OptionKeyC, model.OptionKeyD}

func renderResultPDF(test *model.Test, questions []model.Question, attempt *model.TestAttempt, student *model.User) ([]byte, error) {
	answers := attempt.AnswerMap()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, test.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Student: %s", student.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Status: %s    Time taken: %s", attempt.Status, formatDuration(attempt.TimeTakenSeconds)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Score: %d / %d    Correct: %d / %d",
		attempt.ScoreAchieved, test.TotalMarks, attempt.CorrectCount, attempt.TotalQuestions), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, q := range questions {
		selected := answers[AnswerKeyFor(q.Position)]
		awarded := 0
		if selected == q.CorrectOption {
			awarded = q.Marks
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Q%d. %s", i+1, q.Text), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)

		for _, key := range optionKeys {
			marker := ""
			if key == q.CorrectOption {
				marker = "  [correct]"
			} else if key == selected {
				marker = "  [your answer]"
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("  %s) %s%s", key, q.Option(key), marker), "", "L", false)
		}

		studentAnswer := "Not answered"
		if selected != "" {
			studentAnswer = selected
		}
		pdf.MultiCell(0, 5, fmt.Sprintf("  Your answer: %s    Correct answer: %s    Marks: %d / %d",
			studentAnswer, q.CorrectOption, awarded, q.Marks), "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total marks: %d / %d", attempt.ScoreAchieved, test.TotalMarks), "T", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderSummaryPDF(test *model.Test, questions []model.Question) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, test.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if test.Description != "" {
		pdf.MultiCell(0, 6, test.Description, "", "L", false)
	}
	pdf.CellFormat(0, 7, fmt.Sprintf("Duration: %d minutes    Total marks: %d    Questions: %d",
		test.DurationMinutes, test.TotalMarks, len(questions)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, q := range questions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Q%d. %s (%d marks)", i+1, q.Text, q.Marks), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, key := range optionKeys {
			marker := ""
			if key == q.CorrectOption {
				marker = "  [correct]"
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("  %s) %s%s", key, q.Option(key), marker), "", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

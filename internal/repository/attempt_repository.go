package repository

import (
	"testroom_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

// SaveAnswersInProgress 条件更新答案：仅当记录仍处于进行中时写入。
// 返回受影响行数，0 行说明记录已被并发终结
func (r *AttemptRepository) SaveAnswersInProgress(attemptID uint, answersJSON string) (int64, error) {
	res := r.DB.Model(&model.TestAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Update("answers", answersJSON)
	return res.RowsAffected, res.Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindByTestAndStudent(testID, studentID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.Where("test_id = ? AND student_id = ?", testID, studentID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByStudent(studentID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64

	query := r.DB.Model(&model.TestAttempt{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) ListByTest(testID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64

	query := r.DB.Model(&model.TestAttempt{}).Where("test_id = ?", testID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("score_achieved DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) ListRecentByOrganization(orgID uint, limit int) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("organization_id = ?", orgID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// ListOverdueInProgress 查出截止时间已过但仍处于进行中的记录，供清扫任务使用
func (r *AttemptRepository) ListOverdueInProgress(now time.Time, limit int) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("status = ? AND expires_at < ?", model.AttemptInProgress, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CountByTest(testID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

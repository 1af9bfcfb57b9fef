package repository

import (
	"testroom_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	if err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) FindByIDInOrg(id, orgID uint) (*model.Test, error) {
	var test model.Test
	if err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND organization_id = ?", id, orgID).First(&test).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) FindByName(orgID uint, name string) (*model.Test, error) {
	var test model.Test
	if err := r.DB.Where("organization_id = ? AND name = ?", orgID, name).First(&test).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) ListByOrganization(orgID uint, status model.TestStatus, page, limit int) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64

	query := r.DB.Model(&model.Test{}).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tests).Error
	return tests, total, err
}

func (r *TestRepository) CountByOrganizationAndStatus(orgID uint, status model.TestStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Test{}).
		Where("organization_id = ? AND status = ?", orgID, status).
		Count(&count).Error
	return count, err
}

package service

import (
	"errors"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type OrganizationService struct {
	Orgs  *repository.OrganizationRepository
	Users *repository.UserRepository
	DB    *gorm.DB
}

func NewOrganizationService(orgs *repository.OrganizationRepository, users *repository.UserRepository, db *gorm.DB) *OrganizationService {
	return &OrganizationService{Orgs: orgs, Users: users, DB: db}
}

type OrganizationRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	AdminName     string `json:"adminName" binding:"required"`
	AdminEmail    string `json:"adminEmail" binding:"required,email"`
	AdminPassword string `json:"adminPassword" binding:"required,min=8"`
}

// Create 建组织时一并创建首个管理员，两者在同一事务内落库
func (s *OrganizationService) Create(req OrganizationRequest) (*model.Organization, error) {
	if _, err := s.Orgs.FindByName(req.Name); err == nil {
		return nil, util.ErrOrgNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.Users.FindByEmail(req.AdminEmail); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	org := &model.Organization{
		Name:        req.Name,
		Description: req.Description,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		admin := &model.User{
			OrganizationID: org.ID,
			Name:           req.AdminName,
			Email:          req.AdminEmail,
			Password:       string(hashed),
			Role:           model.Admin,
		}
		return tx.Create(admin).Error
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

func (s *OrganizationService) Get(id uint) (*model.Organization, error) {
	org, err := s.Orgs.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrOrgNotFound
		}
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) List(page, limit int) ([]model.Organization, int64, error) {
	return s.Orgs.List(page, limit)
}

func (s *OrganizationService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.Orgs.Delete(id)
}

func (s *OrganizationService) SetDisabled(id uint, disabled bool) (*model.Organization, error) {
	org, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	org.Disabled = disabled
	if err := s.Orgs.Update(org); err != nil {
		return nil, err
	}
	return org, nil
}

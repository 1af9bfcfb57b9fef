package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	Repo    *repository.UserRepository
	Storage *StorageService
}

func NewUserService(repo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{Repo: repo, Storage: storage}
}

func (s *UserService) Get(userID uint) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListByOrganization(orgID uint, role model.UserRole, page, limit int) ([]model.User, int64, error) {
	return s.Repo.ListByOrganization(orgID, role, page, limit)
}

type ProfileUpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetDisabled 停用/启用账号，组织隔离由调用方校验
func (s *UserService) SetDisabled(userID, orgID uint, disabled bool) (*model.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID != orgID {
		return nil, util.ErrPermissionDenied
	}
	user.Disabled = disabled
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(userID, orgID uint) error {
	user, err := s.Get(userID)
	if err != nil {
		return err
	}
	if user.OrganizationID != orgID {
		return util.ErrPermissionDenied
	}
	return s.Repo.Delete(userID)
}

func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (string, error) {
	user, err := s.Get(userID)
	if err != nil {
		return "", err
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, util.MimeImage) {
		return "", fmt.Errorf("avatar must be an image, got %s", contentType)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename := fmt.Sprintf("avatars/%d%s", userID, filepath.Ext(file.Filename))
	url, err := s.Storage.Upload(ctx, filename, src, file.Size, contentType)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.Repo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

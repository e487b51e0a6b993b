package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/repository"
)

// ProfileService 用户资料读写
type ProfileService struct {
	docs repository.DocumentRepository
}

// NewProfileService 创建资料服务
func NewProfileService(docs repository.DocumentRepository) *ProfileService {
	return &ProfileService{docs: docs}
}

// DefaultUserDetails 首次访问时使用的默认资料
func DefaultUserDetails(email, firstName string) models.UserDetails {
	nickname := strings.TrimSpace(firstName)
	if nickname == "" {
		nickname = constants.DefaultUserNickname
	}
	address := strings.TrimSpace(email)
	if address == "" {
		address = constants.DefaultUserEmail
	}
	return models.UserDetails{
		DOB:           constants.DefaultUserDOB,
		Email:         address,
		Height:        constants.DefaultUserHeight,
		Weight:        constants.DefaultUserWeight,
		Nickname:      nickname,
		ExerciseLevel: constants.ExerciseLevelBeginner,
	}
}

// LoadOrInitUserDetails 读取资料；不存在时写入默认值并返回，created 表示本次发生了写入
func (s *ProfileService) LoadOrInitUserDetails(ctx context.Context, userID string, defaults models.UserDetails) (models.UserDetails, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserDetails{}, false, ErrUserIDRequired
	}
	doc, err := s.docs.Get(ctx, constants.CollectionUsers, userID)
	if err != nil {
		return models.UserDetails{}, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if doc != nil {
		details, err := models.DecodeUserDetails(doc, defaults)
		if err != nil {
			return models.UserDetails{}, false, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return details, false, nil
	}

	payload, err := defaults.ToDocument()
	if err != nil {
		return models.UserDetails{}, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.docs.Set(ctx, constants.CollectionUsers, userID, payload); err != nil {
		return models.UserDetails{}, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	logger.Infow("user_details_initialized", "user_id", userID)
	return defaults, true, nil
}

// SaveUserDetails 整体覆盖保存资料
func (s *ProfileService) SaveUserDetails(ctx context.Context, userID string, details models.UserDetails) (models.UserDetails, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserDetails{}, ErrUserIDRequired
	}
	details.Normalize()
	if !models.IsValidExerciseLevel(details.ExerciseLevel) {
		return models.UserDetails{}, ErrExerciseLevelInvalid
	}
	if err := details.Validate(); err != nil {
		return models.UserDetails{}, fmt.Errorf("%w: %v", ErrUserDetailsInvalid, err)
	}
	payload, err := details.ToDocument()
	if err != nil {
		return models.UserDetails{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.docs.Set(ctx, constants.CollectionUsers, userID, payload); err != nil {
		logger.Warnw("user_details_save_failed", "user_id", userID, "error", err)
		return models.UserDetails{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return details, nil
}

package service

import (
	"errors"
	"fmt"
)

// 错误分类，具体错误均包装其中之一
var (
	ErrValidation   = errors.New("validation error")
	ErrPersistence  = errors.New("persistence error")
	ErrNotification = errors.New("notification error")
	ErrPermission   = errors.New("permission error")
)

// 校验类错误
var (
	ErrCartEmpty            = fmt.Errorf("%w: empty cart", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrProductNotFound      = fmt.Errorf("%w: product not found", ErrValidation)
	ErrPlanCatalogEmpty     = fmt.Errorf("%w: plan catalog is empty", ErrValidation)
	ErrPlanNotFound         = fmt.Errorf("%w: plan not assigned", ErrValidation)
	ErrExerciseNotFound     = fmt.Errorf("%w: exercise not found", ErrValidation)
	ErrExerciseLevelInvalid = fmt.Errorf("%w: invalid exercise level", ErrValidation)
	ErrUserDetailsInvalid   = fmt.Errorf("%w: invalid user details", ErrValidation)
	ErrUserIDRequired       = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrOrderItemsInvalid    = fmt.Errorf("%w: invalid order items", ErrValidation)
	ErrAssistantSessionGone = fmt.Errorf("%w: assistant session not found", ErrValidation)
	ErrAssistantEventBad    = fmt.Errorf("%w: invalid assistant event", ErrValidation)
	ErrAssistantEnded       = fmt.Errorf("%w: assistant session has ended", ErrValidation)
	ErrAssistantModeInvalid = fmt.Errorf("%w: operation not allowed in this session mode", ErrValidation)
	ErrMessageEmpty         = fmt.Errorf("%w: message is empty", ErrValidation)
)

// 通知类错误
var (
	ErrEmailServiceDisabled      = fmt.Errorf("%w: email service disabled", ErrNotification)
	ErrEmailServiceNotConfigured = fmt.Errorf("%w: email service not configured", ErrNotification)
	ErrEmailRecipientRejected    = fmt.Errorf("%w: email recipient rejected", ErrNotification)
	ErrNotifyEndpointFailed      = fmt.Errorf("%w: notify endpoint failed", ErrNotification)
)

// 权限类错误
var (
	ErrMicrophoneDenied = fmt.Errorf("%w: microphone access denied", ErrPermission)
)

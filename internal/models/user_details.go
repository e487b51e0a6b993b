package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidUserDetails 用户资料不合法
var ErrInvalidUserDetails = errors.New("invalid user details")

// DOBLayout 生日格式
const DOBLayout = "2006-01-02"

// UserDetails 用户资料，存储在 users 集合
type UserDetails struct {
	DOB           string `json:"dob"`
	Email         string `json:"email"`
	Height        string `json:"height"`
	Weight        string `json:"weight"`
	Nickname      string `json:"nickname"`
	ExerciseLevel string `json:"exerciseLevel"`
}

var exerciseLevels = map[string]struct{}{
	"Beginner":     {},
	"Intermediate": {},
	"Advanced":     {},
}

// IsValidExerciseLevel 判断训练等级是否合法
func IsValidExerciseLevel(level string) bool {
	_, ok := exerciseLevels[level]
	return ok
}

// Normalize 去除首尾空白
func (u *UserDetails) Normalize() {
	u.DOB = strings.TrimSpace(u.DOB)
	u.Email = strings.TrimSpace(u.Email)
	u.Height = strings.TrimSpace(u.Height)
	u.Weight = strings.TrimSpace(u.Weight)
	u.Nickname = strings.TrimSpace(u.Nickname)
	u.ExerciseLevel = strings.TrimSpace(u.ExerciseLevel)
}

// Validate 校验训练等级与生日格式
func (u UserDetails) Validate() error {
	if !IsValidExerciseLevel(u.ExerciseLevel) {
		return fmt.Errorf("%w: exercise level %q", ErrInvalidUserDetails, u.ExerciseLevel)
	}
	if u.DOB != "" {
		if _, err := time.Parse(DOBLayout, u.DOB); err != nil {
			return fmt.Errorf("%w: dob %q", ErrInvalidUserDetails, u.DOB)
		}
	}
	return nil
}

// Age 根据生日计算周岁，生日缺失或格式错误返回 0
func (u UserDetails) Age(now time.Time) int {
	dob, err := time.Parse(DOBLayout, u.DOB)
	if err != nil {
		return 0
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ToDocument 转换为文档内容
func (u UserDetails) ToDocument() (JSON, error) {
	return ToJSON(u)
}

// DecodeUserDetails 将外部文档转换为用户资料；缺失字段按 fallback 补齐
func DecodeUserDetails(doc JSON, fallback UserDetails) (UserDetails, error) {
	if doc == nil {
		return UserDetails{}, ErrInvalidUserDetails
	}
	out := fallback
	for key, target := range map[string]*string{
		"dob":           &out.DOB,
		"email":         &out.Email,
		"height":        &out.Height,
		"weight":        &out.Weight,
		"nickname":      &out.Nickname,
		"exerciseLevel": &out.ExerciseLevel,
	} {
		raw, ok := doc[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case string:
			*target = v
		case float64:
			*target = fmt.Sprintf("%g", v)
		default:
			return UserDetails{}, fmt.Errorf("%w: field %s has type %T", ErrInvalidUserDetails, key, raw)
		}
	}
	out.Normalize()
	if !IsValidExerciseLevel(out.ExerciseLevel) {
		out.ExerciseLevel = fallback.ExerciseLevel
	}
	return out, nil
}

package service

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/nutrifit/internal/assistant"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"

	"github.com/google/uuid"
)

// AssistantService 生成计划助手会话管理
type AssistantService struct {
	mu       sync.Mutex
	sessions map[string]*assistant.Session
	diets    []models.DietPlan
	replies  []string
	rngMu    sync.Mutex
	rng      *rand.Rand
}

// NewAssistantService 创建助手服务
func NewAssistantService(diets []models.DietPlan, replies []string, seed int64) *AssistantService {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &AssistantService{
		sessions: make(map[string]*assistant.Session),
		diets:    diets,
		replies:  replies,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *AssistantService) pickDiet() models.DietPlan {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	if len(s.diets) == 0 {
		return models.DietPlan{}
	}
	return s.diets[s.rng.Intn(len(s.diets))]
}

func (s *AssistantService) pickReply() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	if len(s.replies) == 0 {
		return ""
	}
	return s.replies[s.rng.Intn(len(s.replies))]
}

// StartSession 创建会话
func (s *AssistantService) StartSession(userID string, mode assistant.Mode) assistant.State {
	id := uuid.NewString()
	session := assistant.NewSession(id, userID, mode, s.pickDiet)
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	logger.Infow("assistant_session_started", "session_id", id, "user_id", userID, "mode", string(mode))
	return session.State()
}

// Session 查询会话状态
func (s *AssistantService) Session(id string) (assistant.State, error) {
	session, err := s.lookup(id)
	if err != nil {
		return assistant.State{}, err
	}
	return session.State(), nil
}

// HandleEvent 接收语音 SDK 原始消息，经适配后应用到会话
func (s *AssistantService) HandleEvent(id string, raw assistant.RawMessage) (assistant.State, error) {
	session, err := s.lookup(id)
	if err != nil {
		return assistant.State{}, err
	}
	event, ok, err := assistant.Translate(raw)
	if err != nil {
		return assistant.State{}, fmt.Errorf("%w: %v", ErrAssistantEventBad, err)
	}
	if !ok {
		return session.State(), nil
	}
	if err := session.Apply(event); err != nil {
		switch {
		case errors.Is(err, assistant.ErrMicrophoneDeny):
			logger.Warnw("assistant_microphone_denied", "session_id", id)
			return session.State(), ErrMicrophoneDenied
		case errors.Is(err, assistant.ErrSessionMode):
			return assistant.State{}, ErrAssistantModeInvalid
		default:
			return assistant.State{}, fmt.Errorf("%w: %v", ErrAssistantEventBad, err)
		}
	}
	if event.Type == assistant.EventError {
		logger.Warnw("assistant_call_error", "session_id", id, "error_name", event.ErrorName, "error_message", event.ErrorMessage)
	}
	return session.State(), nil
}

// SendText 文字模式发送消息，随后追加一条助手回复
func (s *AssistantService) SendText(id, text string) (assistant.State, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return assistant.State{}, ErrMessageEmpty
	}
	session, err := s.lookup(id)
	if err != nil {
		return assistant.State{}, err
	}
	ended, err := session.AddText(assistant.RoleUser, text)
	if err != nil {
		return assistant.State{}, mapAssistantTextError(err)
	}
	if !ended {
		if _, err := session.AddText(assistant.RoleAssistant, s.pickReply()); err != nil {
			return assistant.State{}, mapAssistantTextError(err)
		}
	}
	return session.State(), nil
}

// Sweep 清理闲置超时的会话
func (s *AssistantService) Sweep(now time.Time, idleTTL time.Duration) int {
	if idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.LastActivity()) >= idleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *AssistantService) lookup(id string) (*assistant.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrAssistantSessionGone
	}
	return session, nil
}

func mapAssistantTextError(err error) error {
	switch {
	case errors.Is(err, assistant.ErrSessionEnded):
		return ErrAssistantEnded
	case errors.Is(err, assistant.ErrSessionMode):
		return ErrAssistantModeInvalid
	default:
		return err
	}
}

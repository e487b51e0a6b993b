package assistant

import (
	"strings"
	"sync"
	"time"

	"github.com/nutrifit/internal/models"
)

// Mode 会话模式
type Mode string

const (
	ModeVoice Mode = "voice"
	ModeText  Mode = "text"
)

// TextModeMessageLimit 文字模式下达到该消息数后结束会话
const TextModeMessageLimit = 5

// ChatMessage 对话记录
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State 会话状态快照
type State struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id,omitempty"`
	Mode       Mode             `json:"mode"`
	Connecting bool             `json:"connecting"`
	Active     bool             `json:"active"`
	Speaking   bool             `json:"speaking"`
	Ended      bool             `json:"ended"`
	Messages   []ChatMessage    `json:"messages"`
	Error      string           `json:"error,omitempty"`
	DietPlan   *models.DietPlan `json:"diet_plan,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// DietPicker 会话结束时挑选饮食方案
type DietPicker func() models.DietPlan

// Session 单次助手会话
type Session struct {
	mu    sync.Mutex
	state State
	pick  DietPicker
	now   func() time.Time
}

// NewSession 创建会话；语音模式初始为连接中
func NewSession(id, userID string, mode Mode, pick DietPicker) *Session {
	if mode != ModeText {
		mode = ModeVoice
	}
	now := time.Now()
	return &Session{
		state: State{
			ID:         id,
			UserID:     strings.TrimSpace(userID),
			Mode:       mode,
			Connecting: mode == ModeVoice,
			Messages:   []ChatMessage{},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		pick: pick,
		now:  time.Now,
	}
}

// State 返回状态副本
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Apply 应用语音事件
func (s *Session) Apply(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Mode != ModeVoice {
		return ErrSessionMode
	}
	s.state.UpdatedAt = s.now()

	switch event.Type {
	case EventCallStart:
		s.state.Connecting = false
		s.state.Active = true
		s.state.Ended = false
		s.state.Error = ""
	case EventCallEnd:
		s.state.Active = false
		s.state.Connecting = false
		s.state.Speaking = false
		s.endLocked()
	case EventSpeechStart:
		s.state.Speaking = true
	case EventSpeechEnd:
		s.state.Speaking = false
	case EventTranscript:
		s.state.Messages = append(s.state.Messages, ChatMessage{Role: event.Role, Content: event.Text})
	case EventError:
		s.state.Connecting = false
		s.state.Active = false
		s.state.Error = UserFacingError(event.ErrorName, event.Starting)
		if event.ErrorName == ErrorNameNotAllowed {
			return ErrMicrophoneDeny
		}
	default:
		return ErrUnknownEvent
	}
	return nil
}

// AddText 文字模式追加一条消息，返回会话是否因此结束
func (s *Session) AddText(role, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Mode != ModeText {
		return false, ErrSessionMode
	}
	if s.state.Ended {
		return false, ErrSessionEnded
	}
	s.state.UpdatedAt = s.now()
	s.state.Messages = append(s.state.Messages, ChatMessage{Role: role, Content: content})
	if len(s.state.Messages) >= TextModeMessageLimit {
		s.endLocked()
		return true, nil
	}
	return false, nil
}

// Ended 是否已结束
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ended
}

// LastActivity 最近一次更新时间
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdatedAt
}

func (s *Session) endLocked() {
	if s.state.Ended {
		return
	}
	s.state.Ended = true
	if s.pick != nil {
		plan := s.pick()
		s.state.DietPlan = &plan
	}
}

func (s *Session) copyLocked() State {
	out := s.state
	out.Messages = make([]ChatMessage, len(s.state.Messages))
	copy(out.Messages, s.state.Messages)
	if s.state.DietPlan != nil {
		plan := *s.state.DietPlan
		out.DietPlan = &plan
	}
	return out
}

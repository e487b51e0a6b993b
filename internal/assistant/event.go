package assistant

import (
	"errors"
	"fmt"
	"strings"
)

// EventType 内部事件类型
type EventType string

const (
	EventCallStart   EventType = "call-start"
	EventCallEnd     EventType = "call-end"
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventTranscript  EventType = "transcript"
	EventError       EventType = "error"
)

// 角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// 客户端发起通话失败时上报的原始类型
const rawCallStartFailed = "call-start-failed"

// 错误名称
const (
	ErrorNameNotAllowed = "NotAllowedError"
	meetingEndedMessage = "Meeting has ended"
)

var (
	ErrUnknownEvent   = errors.New("unknown assistant event")
	ErrInvalidEvent   = errors.New("invalid assistant event")
	ErrSessionEnded   = errors.New("assistant session has ended")
	ErrSessionMode    = errors.New("operation not allowed in this session mode")
	ErrMicrophoneDeny = errors.New("microphone access denied")
)

// Event 助手事件，按 Type 区分有效字段
type Event struct {
	Type EventType `json:"type"`
	// transcript
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`
	// error
	ErrorName    string `json:"error_name,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Starting     bool   `json:"starting,omitempty"` // 发起通话阶段的失败
}

// RawError 语音 SDK 的错误结构
type RawError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    any    `json:"code,omitempty"`
}

// RawMessage 语音 SDK 回调或 webhook 推送的原始消息
type RawMessage struct {
	Type           string    `json:"type"`
	TranscriptType string    `json:"transcriptType,omitempty"`
	Transcript     string    `json:"transcript,omitempty"`
	Role           string    `json:"role,omitempty"`
	Name           string    `json:"name,omitempty"`
	Message        string    `json:"message,omitempty"`
	Error          *RawError `json:"error,omitempty"`
}

// Translate 原始消息转换为内部事件；ok 为 false 表示该消息应被忽略
func Translate(raw RawMessage) (Event, bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case string(EventCallStart):
		return Event{Type: EventCallStart}, true, nil
	case string(EventCallEnd):
		return Event{Type: EventCallEnd}, true, nil
	case string(EventSpeechStart):
		return Event{Type: EventSpeechStart}, true, nil
	case string(EventSpeechEnd):
		return Event{Type: EventSpeechEnd}, true, nil
	case "message", string(EventTranscript):
		return translateTranscript(raw)
	case string(EventError):
		return translateError(raw, false)
	case rawCallStartFailed:
		return translateError(raw, true)
	default:
		return Event{}, false, fmt.Errorf("%w: %q", ErrUnknownEvent, raw.Type)
	}
}

func translateTranscript(raw RawMessage) (Event, bool, error) {
	// 只保留最终转写
	if !strings.EqualFold(strings.TrimSpace(raw.TranscriptType), "final") {
		return Event{}, false, nil
	}
	role := strings.ToLower(strings.TrimSpace(raw.Role))
	if role != RoleUser {
		role = RoleAssistant
	}
	return Event{Type: EventTranscript, Role: role, Text: raw.Transcript}, true, nil
}

func translateError(raw RawMessage, starting bool) (Event, bool, error) {
	name, message := raw.Name, raw.Message
	if raw.Error != nil {
		if name == "" {
			name = raw.Error.Name
		}
		if message == "" {
			message = raw.Error.Message
		}
	}
	if strings.Contains(message, meetingEndedMessage) {
		return Event{}, false, nil
	}
	if !starting && strings.TrimSpace(name) == "" && strings.TrimSpace(message) == "" {
		return Event{}, false, fmt.Errorf("%w: error event without name or message", ErrInvalidEvent)
	}
	return Event{Type: EventError, ErrorName: strings.TrimSpace(name), ErrorMessage: message, Starting: starting}, true, nil
}

// 面向用户的错误文案
const (
	MessageMicrophoneDenied = "Microphone access denied. Please allow microphone permissions and try again."
	MessageConnectFailed    = "Failed to connect. Please try again."
	MessageStartFailed      = "Unable to start call. Check your connection."
)

// UserFacingError 将错误名称映射为用户提示；starting 表示发起通话阶段
func UserFacingError(name string, starting bool) string {
	if name == ErrorNameNotAllowed {
		return MessageMicrophoneDenied
	}
	if starting {
		return MessageStartFailed
	}
	return MessageConnectFailed
}

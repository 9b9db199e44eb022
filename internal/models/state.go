package models

import "time"

// SessionState tracks where a booking session is in the selection flow so
// an interrupted client can resume from the last step.
type SessionState struct {
	SessionID   string
	CurrentStep string
	TempData    map[string]interface{}
}

func (s *SessionState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

func (s *SessionState) GetInt(key string) int {
	if s.TempData == nil {
		return 0
	}
	switch v := s.TempData[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (s *SessionState) GetTime(key string) time.Time {
	if s.TempData == nil {
		return time.Time{}
	}
	switch v := s.TempData[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

package apperrors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FromResponse строит ошибку по не-2xx ответу API.
// 401 всегда SessionExpired, остальное - ServerError с текстом сервера.
func FromResponse(status int, body []byte) *AppError {
	message := extractMessage(body)
	if status == http.StatusUnauthorized {
		if message == "" {
			return ErrSessionExpired
		}
		return ErrSessionExpired.WithDetails(message)
	}
	return ServerError(status, message)
}

// extractMessage достаёт текст ошибки из тела: detail, error, message
// (в таком порядке). error может быть строкой или объектом AppError.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}

	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Msg
	}

	// Ошибки валидации в формате [{loc, msg}, ...]
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tooni-app/salesdesk/internal/model"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateID validates a conversation or customer ID.
func ValidateID(id string) error {
	if len(id) == 0 {
		return errors.New("ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("ID exceeds maximum length")
	}
	if strings.ContainsAny(id, " \t\n\r") {
		return errors.New("ID must not contain whitespace")
	}
	return nil
}

// ValidateSender validates a message sender, allowing empty (defaults apply).
func ValidateSender(sender model.Sender) error {
	if sender == "" {
		return nil
	}
	if !sender.Valid() {
		return errors.New("sender must be customer or agent")
	}
	return nil
}

// ValidateFunnelStage validates a funnel stage value.
func ValidateFunnelStage(stage model.FunnelStage) error {
	if !stage.Valid() {
		return errors.New("invalid funnel stage")
	}
	return nil
}

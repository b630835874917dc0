package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"gorm.io/gorm"
)

const historyLimit = 10

const systemPrompt = `You are an expert AI trading assistant for Profit Path, a financial trading platform.
Your role is to help users with market analysis and insights, trading strategies and techniques,
stock analysis, risk management advice, and general financial market questions.

Always provide accurate, helpful, and professional responses. If asked about specific stocks, provide balanced analysis
and remind users that this is not financial advice. Be concise but informative.`

const notConfiguredMessage = "AI service is not configured. Please set OPENAI_API_KEY environment variable."

var (
	ErrEmptyMessage  = httputil.NewError(http.StatusBadRequest, "Message cannot be empty")
	ErrNotConfigured = httputil.NewError(http.StatusServiceUnavailable, notConfiguredMessage)
	ErrNoResponse    = httputil.NewError(http.StatusInternalServerError, "No response from AI service")
	ErrChatFailed    = httputil.NewError(http.StatusInternalServerError, "Failed to process chat message")
)

type Service struct {
	db        *gorm.DB
	completer Completer
	log       *slog.Logger
}

// NewService builds the chat service. A nil completer leaves chat
// unconfigured; Send then answers ErrNotConfigured.
func NewService(db *gorm.DB, completer Completer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, completer: completer, log: log}
}

// History returns the user's messages oldest first.
func (s *Service) History(ctx context.Context, userID uint) ([]ChatMessage, error) {
	var msgs []ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("fetch chat history: %w", err)
	}
	return msgs, nil
}

// Send stores the user's message, asks the completer for a reply and stores
// that too. On completer failure the user's message is discarded and an
// assistant note describing the failure is kept instead.
func (s *Service) Send(ctx context.Context, userID uint, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	if s.completer == nil {
		s.log.Error("chat completer not configured", "user_id", userID)
		msgs := []ChatMessage{
			{UserID: userID, Role: RoleUser, Content: text},
			{UserID: userID, Role: RoleAssistant, Content: notConfiguredMessage},
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&msgs).Error
		})
		if err != nil {
			return "", fmt.Errorf("store chat message: %w", err)
		}
		return "", ErrNotConfigured
	}

	conversation, err := s.conversation(ctx, userID, text)
	if err != nil {
		return "", err
	}

	reply, err := s.completer.Complete(ctx, conversation)
	if err != nil {
		s.log.Error("chat completion failed", "user_id", userID, "err", err)
		note := ChatMessage{
			UserID:  userID,
			Role:    RoleAssistant,
			Content: fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", err),
		}
		if serr := s.db.WithContext(ctx).Create(&note).Error; serr != nil {
			s.log.Error("store chat error note", "user_id", userID, "err", serr)
		}
		return "", ErrChatFailed.Withf("Failed to process chat message: %v", err)
	}
	if reply == "" {
		return "", ErrNoResponse
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ChatMessage{UserID: userID, Role: RoleUser, Content: text}).Error; err != nil {
			return err
		}
		return tx.Create(&ChatMessage{UserID: userID, Role: RoleAssistant, Content: reply}).Error
	})
	if err != nil {
		return "", fmt.Errorf("store chat exchange: %w", err)
	}

	s.log.Info("chat message processed", "user_id", userID)
	return reply, nil
}

// conversation is the system prompt, the last historyLimit stored messages
// and the new user message.
func (s *Service) conversation(ctx context.Context, userID uint, text string) ([]Message, error) {
	var recent []ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(historyLimit).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("fetch recent chat messages: %w", err)
	}
	slices.Reverse(recent)

	out := make([]Message, 0, len(recent)+2)
	out = append(out, Message{Role: RoleSystem, Content: systemPrompt})
	for _, m := range recent {
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	out = append(out, Message{Role: RoleUser, Content: text})
	return out, nil
}

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const EventRefreshTokenReuse = "refresh_token_reuse"

type WebhookNotify struct {
	UserID    string `json:"userId"`
	JwtID     string `json:"jwtId"`
	Event     string `json:"event"`
	TimeStamp string `json:"timestamp"`
}

// WebhookNotifier сообщает о повторном предъявлении refresh токена.
// Пустой URL отключает уведомления.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewWebhookNotifier(webhookURL string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    webhookURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (notifier *WebhookNotifier) NotifyRefreshTokenReuse(ctx context.Context, userID string, jwtID string) error {
	if notifier.url == "" {
		return nil
	}

	payload := &WebhookNotify{
		UserID:    userID,
		JwtID:     jwtID,
		Event:     EventRefreshTokenReuse,
		TimeStamp: time.Now().UTC().Format(time.RFC3339),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка преобразования в json: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, notifier.url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса webhook: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := notifier.client.Do(request)
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", response.StatusCode)
	}

	notifier.logger.Debug("webhook успешно отправлен", zap.String("event", payload.Event), zap.String("user_id", userID))
	return nil
}

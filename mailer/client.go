package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/notify"
	"go.uber.org/zap"
)

const sendPath = "/notification/email"

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	From    string `json:"from"`
}

// Client 透過郵件服務的 HTTP API 寄信
type Client struct {
	endpoint    string
	apiKey      string
	from        string
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	log         *zap.Logger
}

func NewClient(cfg config.MailConfig, log *zap.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:    strings.TrimRight(cfg.APIURL, "/") + sendPath,
		apiKey:      cfg.APIKey,
		from:        cfg.From,
		maxAttempts: maxAttempts,
		backoff:     cfg.Backoff,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log.Named("mailer"),
	}
}

// Dispatch 實作 notify.Dispatcher，所有錯誤只記錄不回傳
func (c *Client) Dispatch(ctx context.Context, msg notify.Message) bool {
	if err := c.Send(ctx, msg); err != nil {
		c.log.Error("寄送郵件失敗",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return false
	}
	c.log.Info("成功寄送郵件", zap.String("to", msg.To))
	return true
}

// Send 寄送郵件，失敗時依設定以線性間隔重試
func (c *Client) Send(ctx context.Context, msg notify.Message) error {
	body, err := json.Marshal(emailRequest{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		From:    c.from,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * c.backoff):
			}
			c.log.Warn("重試寄送郵件", zap.Int("attempt", attempt), zap.Error(lastErr))
		}

		lastErr = c.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("郵件服務回應 %d: %s", e.status, e.body)
}

// 4xx 代表請求本身有問題，重試沒有意義
func retryable(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.status >= 500 || se.status == http.StatusTooManyRequests
	}
	return true
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(text))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

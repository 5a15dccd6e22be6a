package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clients"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1

	transfersPerSecond = 5
)

var ErrTransferRejected = errors.New("transfer rejected by gateway")

type transferRequest struct {
	Reference  string  `json:"reference"`
	ProviderID int64   `json:"provider_id"`
	Amount     float64 `json:"amount"`
}

type transferResponse struct {
	TransactionReference string `json:"transaction_reference"`
}

// Gateway moves payout money to the provider through the external payout API.
type Gateway struct {
	url     string
	client  clients.HTTPClientI
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewGateway(url string, client clients.HTTPClientI) *Gateway {
	return &Gateway{
		url:     url,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(transfersPerSecond), 1),
		sleep:   sleep,
	}
}

// IdempotencyKey is stable for a payout so that a retried transfer is never paid twice.
func IdempotencyKey(payoutID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("payout:%d", payoutID))).String()
}

func (g *Gateway) Transfer(ctx context.Context, p *domain.Payout) (string, error) {
	body, err := json.Marshal(transferRequest{
		Reference:  fmt.Sprintf("payout-%d", p.ID),
		ProviderID: p.ProviderID,
		Amount:     p.Amount,
	})
	if err != nil {
		return "", err
	}
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Idempotency-Key", IdempotencyKey(p.ID))

	url := g.url + "/api/transfers"
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
		statusCode, respBody, respHeaders, err := g.client.Post(ctx, url, headers, body)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			zap.L().Warn("transfer request failed", zap.Int64("payout_id", p.ID), zap.Int("attempt", attempt), zap.Error(err))
			if attempt < maxRetries {
				if err := g.sleep(ctx, retryInterval*time.Duration(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("transfer of payout %d failed after %d retries: %w", p.ID, maxRetries, err)
		}

		switch {
		case statusCode == http.StatusOK || statusCode == http.StatusCreated:
			var resp transferResponse
			if err := json.Unmarshal(respBody, &resp); err != nil {
				return "", fmt.Errorf("failed to parse transfer response: %w", err)
			}
			if resp.TransactionReference == "" {
				return "", fmt.Errorf("transfer response for payout %d has no transaction reference", p.ID)
			}
			return resp.TransactionReference, nil
		case statusCode == http.StatusTooManyRequests, statusCode >= http.StatusInternalServerError:
			if attempt == maxRetries {
				return "", fmt.Errorf("transfer of payout %d failed after %d retries: status %d", p.ID, maxRetries, statusCode)
			}
			wait := retryAfter(respHeaders, attempt)
			zap.L().Warn("gateway busy, retrying",
				zap.Int64("payout_id", p.ID),
				zap.Int("status", statusCode),
				zap.Int("attempt", attempt),
				zap.Duration("retryAfter", wait),
			)
			if err := g.sleep(ctx, wait); err != nil {
				return "", err
			}
		default:
			zap.L().Error("unexpected gateway status", zap.Int("status", statusCode), zap.Int64("payout_id", p.ID))
			return "", fmt.Errorf("%w: status %d", ErrTransferRejected, statusCode)
		}
	}
	return "", fmt.Errorf("transfer of payout %d failed after %d retries", p.ID, maxRetries)
}

func retryAfter(headers http.Header, attempt int) time.Duration {
	wait := retryInterval * time.Duration(attempt)
	if v := headers.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			wait = time.Duration(seconds) * time.Second
		}
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

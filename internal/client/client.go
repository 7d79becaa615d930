package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"subscription_console/internal/config"
	"subscription_console/internal/logger"
	"subscription_console/pkg/apperrors"
)

const maxBodySize = 10 << 20

// TokenSource - откуда клиент берёт bearer token и кому сообщает о 401.
// Invalidate получает токен, с которым ушёл запрос: 401 завершает
// только ту сессию, которая его сделала.
type TokenSource interface {
	Token() string
	Invalidate(ctx context.Context, token string, reason error)
}

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	CreatePath   string
	UpdateMethod string
	HTTPClient   *http.Client
}

// Client - REST SDK для API управления подписками.
// Все ошибки проходят через один путь: NetworkFailure, SessionExpired или ServerError.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	tokens       TokenSource
	createPath   string
	updateMethod string
}

func New(opts Options, tokens TokenSource) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	createPath := opts.CreatePath
	if createPath == "" {
		createPath = "/api/plans"
	}
	updateMethod := strings.ToUpper(opts.UpdateMethod)
	if updateMethod == "" {
		updateMethod = http.MethodPut
	}

	return &Client{
		baseURL:      base,
		http:         httpClient,
		tokens:       tokens,
		createPath:   createPath,
		updateMethod: updateMethod,
	}, nil
}

// NewFromConfig - клиент с настройками секции api
func NewFromConfig(cfg *config.Config, tokens TokenSource) (*Client, error) {
	return New(Options{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		CreatePath:   cfg.API.CreatePath,
		UpdateMethod: cfg.API.UpdateMethod,
	}, tokens)
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	json   interface{}
	form   url.Values
	// credentials: 401 означает неверный логин, а не истёкшую сессию
	credentials bool
}

// do выполняет запрос и декодирует JSON-ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.json != nil:
		buf, err := json.Marshal(r.json)
		if err != nil {
			return apperrors.InternalError(err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return apperrors.InternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	var token string
	if c.tokens != nil && !r.credentials {
		token = c.tokens.Token()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.HTTPLog(r.method, r.path, 0, time.Since(start), 0)
		// экран закрыт или вызывающий передумал - не сетевая ошибка
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return apperrors.NetworkFailure(err, r.op)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	logger.HTTPLog(r.method, r.path, resp.StatusCode, time.Since(start), len(data))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return apperrors.NetworkFailure(err, r.op)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if r.credentials {
			appErr := apperrors.FromResponse(resp.StatusCode, data)
			if msg, ok := appErr.Details.(string); ok && msg != "" {
				return apperrors.ErrInvalidCredentials.WithDetails(msg)
			}
			return apperrors.ErrInvalidCredentials
		}
		expired := apperrors.FromResponse(resp.StatusCode, data)
		if c.tokens != nil && token != "" {
			c.tokens.Invalidate(ctx, token, expired)
		}
		return expired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.FromResponse(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.DecodeFailed(err, r.op)
	}
	return nil
}

package tikko

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxRetries is how many times a 5xx response is retried before surfacing.
const maxRetries = 2

type Config struct {
	BaseURL      string
	RefreshToken string
	Timeout      time.Duration
}

// Client talks to the upstream Tikko API. All failures come back as
// *APIError; callers never see raw transport errors.
type Client struct {
	http   *resty.Client
	tokens *TokenSource
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{logger: logger}

	if cfg.RefreshToken != "" {
		c.tokens = NewTokenSource(cfg.BaseURL, cfg.RefreshToken, cfg.Timeout)
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(maxRetries).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err == nil && resp.StatusCode() >= 500
		})

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.tokens == nil {
			return nil
		}
		access, err := c.tokens.Token(req.Context())
		if err != nil {
			return err
		}
		req.SetAuthToken(access)
		return nil
	})

	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		// A 401 invalidates the cached access token so the next call
		// refreshes instead of failing the same way.
		if resp.StatusCode() == 401 && c.tokens != nil {
			c.tokens.Invalidate()
		}
		return nil
	})

	c.http = httpClient

	return c
}

// errorBody is the upstream error envelope. Fields are optional; anything
// missing falls back to a status-derived code.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post(path)

	return c.normalize(path, resp, err)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)

	return c.normalize(path, resp, err)
}

func (c *Client) normalize(path string, resp *resty.Response, err error) error {
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			return apiErr
		}
		return &APIError{Status: 0, Code: CodeNetworkError, Message: err.Error()}
	}

	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{
		Status: resp.StatusCode(),
		Code:   codeForStatus(resp.StatusCode()),
	}

	var body errorBody
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil {
		if body.Code != "" {
			apiErr.Code = body.Code
		}
		apiErr.Message = body.Message
		apiErr.Details = body.Details
	}

	if c.logger != nil {
		c.logger.Warn("tikko api error",
			"path", path,
			"status", apiErr.Status,
			"code", apiErr.Code,
		)
	}

	return apiErr
}

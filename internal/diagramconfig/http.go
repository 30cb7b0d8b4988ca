package diagramconfig

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

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"gridworkspaces/internal/errs"
)

const (
	configsPath    = "/v1/diagram-configs"
	maxErrorBody   = 4096
	defaultTimeout = 10 * time.Second
)

// Options configures an HTTPClient.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	OAuth    OAuthConfig
	Logger   *zap.Logger
}

// HTTPClient is the Client of a remote diagram configuration service.
type HTTPClient struct {
	baseURL string
	http    *retryablehttp.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client for the service at opts.BaseURL. When OAuth
// is configured every request carries a client-credentials token.
func NewHTTPClient(ctx context.Context, opts Options) (*HTTPClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid diagram config url %q", opts.BaseURL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.Logger = leveledLogger{logger.Sugar()}
	// Hand back the last response so its status can be reported.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = timeout

	if opts.OAuth.Enabled() {
		ts, err := opts.OAuth.TokenSource(ctx)
		if err != nil {
			return nil, err
		}
		rc.HTTPClient.Transport = &oauth2.Transport{Source: ts, Base: rc.HTTPClient.Transport}
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(base.String(), "/"),
		http:    rc,
		logger:  logger,
	}, nil
}

func (c *HTTPClient) CreateOrUpdate(ctx context.Context, id string, blob json.RawMessage) (string, error) {
	if id == "" {
		var created string
		err := c.do(ctx, "create", http.MethodPost, configsPath, blob, &created)
		return created, err
	}
	if err := c.do(ctx, "update", http.MethodPut, configsPath+"/"+url.PathEscape(id), blob, nil); err != nil {
		return "", err
	}
	return id, nil
}

func (c *HTTPClient) Duplicate(ctx context.Context, id string) (string, error) {
	var created string
	path := configsPath + "?" + url.Values{"duplicateFrom": {id}}.Encode()
	if err := c.do(ctx, "duplicate", http.MethodPost, path, nil, &created); err != nil {
		return "", err
	}
	return created, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, configsPath+"/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) DeleteMany(ctx context.Context, ids []string) error {
	body, err := json.Marshal(ids)
	if err != nil {
		return errs.External("delete many", 0, err)
	}
	err = c.do(ctx, "delete many", http.MethodDelete, configsPath, body, nil)
	// Ids the store no longer knows are already gone.
	var extErr *errs.ExternalError
	if errors.As(err, &extErr) && extErr.Status == http.StatusNotFound {
		c.logger.Debug("diagram configs already deleted", zap.Strings("ids", ids))
		return nil
	}
	return err
}

// do sends one request and decodes a JSON response into out when out is not
// nil. Any failure comes back as an *errs.ExternalError.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.External(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("diagram config request", zap.String("op", op), zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return errs.External(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.External(op, resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(msg))))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.External(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// leveledLogger routes retryablehttp logs to zap.
type leveledLogger struct {
	l *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) { l.l.Errorw(msg, keysAndValues...) }
func (l leveledLogger) Info(msg string, keysAndValues ...interface{})  { l.l.Debugw(msg, keysAndValues...) }
func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) { l.l.Debugw(msg, keysAndValues...) }
func (l leveledLogger) Warn(msg string, keysAndValues ...interface{})  { l.l.Warnw(msg, keysAndValues...) }

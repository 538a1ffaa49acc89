package out

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"hostnav/internal/modules/tree/domain"
	treeout "hostnav/internal/modules/tree/port/out"
	apperrors "hostnav/internal/platform/errors"
)

const (
	grantedNodesPath    = "/api/perms/v1/users/nodes-with-assets/tree/"
	nodeChildrenPath    = "/api/perms/v1/users/nodes/children-with-assets/tree/"
	grantedAppsPath     = "/api/perms/v1/users/remote-apps/tree/"
	matchingAssetsPath  = "/api/perms/v1/users/assets/tree/"
	defaultHTTPTimeout  = 15 * time.Second
	defaultRetryElapsed = 10 * time.Second
)

type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.Path)
}

type HTTPOptions struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetryElapsed   time.Duration
	Client            *http.Client
	Logger            hclog.Logger
}

type HTTPNodeSource struct {
	base       *url.URL
	token      string
	client     *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	logger     hclog.Logger
}

func NewHTTPNodeSource(opts HTTPOptions) (treeout.NodeSource, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: server url %q", apperrors.ErrInvalidInput, opts.BaseURL)
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	maxElapsed := opts.MaxRetryElapsed
	if maxElapsed <= 0 {
		maxElapsed = defaultRetryElapsed
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HTTPNodeSource{
		base:       base,
		token:      opts.Token,
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		maxElapsed: maxElapsed,
		logger:     logger,
	}, nil
}

func (s *HTTPNodeSource) FetchGrantedNodes(ctx context.Context, async, refresh bool) ([]domain.Descriptor, error) {
	if async {
		return s.get(ctx, nodeChildrenPath, nil)
	}
	policy := "1"
	if refresh {
		policy = "2"
	}
	return s.get(ctx, grantedNodesPath, url.Values{"cache_policy": {policy}})
}

func (s *HTTPNodeSource) FetchNodeChildren(ctx context.Context, key string) ([]domain.Descriptor, error) {
	return s.get(ctx, nodeChildrenPath, url.Values{"key": {key}})
}

func (s *HTTPNodeSource) FetchGrantedRemoteApps(ctx context.Context, _ bool) ([]domain.Descriptor, error) {
	return s.get(ctx, grantedAppsPath, nil)
}

func (s *HTTPNodeSource) FetchMatchingAssets(ctx context.Context, keyword string) ([]domain.Descriptor, error) {
	return s.get(ctx, matchingAssetsPath, url.Values{"search": {keyword}})
}

func (s *HTTPNodeSource) get(ctx context.Context, path string, query url.Values) ([]domain.Descriptor, error) {
	target := *s.base
	target.Path = s.base.Path + path
	target.RawQuery = query.Encode()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = s.maxElapsed

	var nodes []wireNode
	operation := func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			s.logger.Warn("node request failed", "path", path, "error", err)
			return fmt.Errorf("request %s: %w", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{Path: path, Code: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		nodes = nil
		if err := json.Unmarshal(body, &nodes); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return fromWire(nodes), nil
}

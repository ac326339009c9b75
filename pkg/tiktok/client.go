// Package tiktok resolves TikTok share URLs into direct media links
// through the tikwm API.
package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/domain"
)

// Client fetches content descriptors from the tikwm API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new resolve client.
func NewClient(cfg config.ResolverConfig, logger *slog.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
	}
}

// apiResponse is the envelope returned by tikwm.
type apiResponse struct {
	Code int      `json:"code"`
	Msg  string   `json:"msg"`
	Data *apiData `json:"data"`
}

type apiData struct {
	Title  string `json:"title"`
	Author *struct {
		UniqueID string `json:"unique_id"`
		Nickname string `json:"nickname"`
	} `json:"author"`
	Cover       string   `json:"cover"`
	OriginCover string   `json:"origin_cover"`
	Images      []string `json:"images"`
	HDPlay      string   `json:"hdplay"`
	Play        string   `json:"play"`
	WMPlay      string   `json:"wmplay"`
	Duration    *float64 `json:"duration"`
}

// Fetch resolves a validated content URL.
//
// Transport, status, decode and API failures all wrap domain.ErrFetchFailed;
// the underlying cause is logged and kept in the chain. If ctx is canceled
// before the response settles, the error wraps domain.ErrCanceled instead.
func (c *Client) Fetch(ctx context.Context, contentURL string) (*domain.Descriptor, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewResolveError(contentURL, "fetch", domain.ErrCanceled)
		}
		return nil, c.fail(contentURL, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(contentURL), nil)
	if err != nil {
		return nil, c.fail(contentURL, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewResolveError(contentURL, "fetch", domain.ErrCanceled)
		}
		return nil, c.fail(contentURL, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, c.fail(contentURL, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	desc, err := ParseResponse(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewResolveError(contentURL, "fetch", domain.ErrCanceled)
		}
		return nil, c.fail(contentURL, err)
	}
	return desc, nil
}

func (c *Client) requestURL(contentURL string) string {
	return fmt.Sprintf("%s?url=%s&hd=1", c.endpoint, url.QueryEscape(contentURL))
}

func (c *Client) fail(contentURL string, cause error) error {
	c.logger.Warn("resolve failed", "url", contentURL, "error", cause)
	return domain.NewResolveError(contentURL, "fetch", fmt.Errorf("%w: %w", domain.ErrFetchFailed, cause))
}

// ParseResponse decodes a tikwm response body into a descriptor.
// A non-zero API code is an error.
func ParseResponse(r io.Reader) (*domain.Descriptor, error) {
	var apiResp apiResponse
	if err := json.NewDecoder(r).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if apiResp.Code != 0 {
		msg := apiResp.Msg
		if msg == "" {
			msg = "Failed to fetch content"
		}
		return nil, fmt.Errorf("API code %d: %s", apiResp.Code, msg)
	}

	return normalize(apiResp.Data)
}

// normalize maps the raw data object into a descriptor.
// A non-empty image list selects photo mode; otherwise the video URL is the
// first present of hdplay, play, wmplay.
func normalize(data *apiData) (*domain.Descriptor, error) {
	if data == nil {
		return nil, errors.New("response has no data")
	}

	var author string
	if data.Author != nil {
		author = lo.CoalesceOrEmpty(data.Author.UniqueID, data.Author.Nickname)
	}

	desc := &domain.Descriptor{
		Title:        lo.CoalesceOrEmpty(data.Title, domain.DefaultTitle),
		Author:       domain.NormalizeAuthor(author),
		ThumbnailURL: lo.CoalesceOrEmpty(data.Cover, data.OriginCover),
		IsPhoto:      len(data.Images) > 0,
		Duration:     data.Duration,
	}

	if desc.IsPhoto {
		desc.Images = data.Images
	} else {
		desc.VideoURL = lo.CoalesceOrEmpty(data.HDPlay, data.Play, data.WMPlay)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

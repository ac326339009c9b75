package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/iconidentify/tikgrab/internal/config"
)

// Referer sent with media requests; the CDN rejects hotlinks without it.
const Referer = "https://www.tiktok.com/"

// HTTPDownloader implements Downloader using HTTP requests.
type HTTPDownloader struct {
	// client is used for short requests (Probe) with overall timeout
	client *http.Client
	// streamClient is used for streaming downloads without overall timeout
	streamClient *http.Client
	userAgent    string
	cfg          config.DownloadConfig
	logger       *slog.Logger
}

// NewHTTPDownloader creates a new HTTP-based media downloader.
func NewHTTPDownloader(cfg config.DownloadConfig, logger *slog.Logger) *HTTPDownloader {
	streamTransport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	return &HTTPDownloader{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		// No overall timeout; stalls are caught per read.
		streamClient: &http.Client{
			Transport: streamTransport,
		},
		userAgent: cfg.UserAgent,
		cfg:       cfg,
		logger:    logger,
	}
}

func (d *HTTPDownloader) retryConfig() RetryConfig {
	rc := DefaultRetryConfig()
	if d.cfg.RetryDelay > 0 {
		rc.InitialDelay = d.cfg.RetryDelay
	}
	if d.cfg.MaxRetryDelay > 0 {
		rc.MaxDelay = d.cfg.MaxRetryDelay
	}
	return rc
}

type download struct {
	body        io.ReadCloser
	size        int64
	contentType string
}

// Download fetches media from URL with retry logic.
// Returns a progress-tracking reader for large file streaming.
func (d *HTTPDownloader) Download(ctx context.Context, url string) (io.ReadCloser, int64, string, error) {
	res, err := RetryWithCheck(ctx, d.retryConfig(), func() (download, error) {
		return d.downloadOnce(ctx, url)
	}, isRetryableError)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, "", ctx.Err()
		}
		return nil, 0, "", fmt.Errorf("download failed: %w", err)
	}
	return res.body, res.size, res.contentType, nil
}

func (d *HTTPDownloader) downloadOnce(ctx context.Context, url string) (download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return download{}, fmt.Errorf("create request: %w", err)
	}
	d.setHeaders(req)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,image/*;q=0.9,*/*;q=0.8")

	resp, err := d.streamClient.Do(req)
	if err != nil {
		return download{}, fmt.Errorf("send request: %w", err)
	}

	if err := classifyStatus(resp); err != nil {
		resp.Body.Close()
		return download{}, err
	}

	size := resp.ContentLength
	if size < 0 {
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			size, _ = strconv.ParseInt(cl, 10, 64)
		}
	}

	return download{
		body:        newProgressReader(resp.Body, size, d.cfg.ReadTimeout, d.logger, url),
		size:        size,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Probe checks URL accessibility without downloading full content.
func (d *HTTPDownloader) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	d.setHeaders(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return &ProbeResult{
			Accessible: false,
			Error:      err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	result := &ProbeResult{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Accessible:    resp.StatusCode == http.StatusOK,
	}

	if !result.Accessible {
		result.Error = fmt.Sprintf("status code %d", resp.StatusCode)
	}

	return result, nil
}

func (d *HTTPDownloader) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", Referer)
}

// progressReader wraps an io.ReadCloser to track download progress
// and detect stalls (no data for readTimeout).
type progressReader struct {
	reader      io.ReadCloser
	total       int64
	downloaded  int64
	readTimeout time.Duration
	lastRead    time.Time
	lastLog     time.Time
	logger      *slog.Logger
	url         string
	mu          sync.Mutex
	closed      bool
}

func newProgressReader(r io.ReadCloser, total int64, readTimeout time.Duration, logger *slog.Logger, url string) *progressReader {
	now := time.Now()
	return &progressReader{
		reader:      r,
		total:       total,
		readTimeout: readTimeout,
		lastRead:    now,
		lastLog:     now,
		logger:      logger,
		url:         url,
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)

	p.mu.Lock()
	defer p.mu.Unlock()

	if n > 0 {
		p.downloaded += int64(n)
		p.lastRead = time.Now()

		if time.Since(p.lastLog) > 30*time.Second {
			p.logProgress()
			p.lastLog = time.Now()
		}
	}

	// Zero-byte reads count too.
	if err == nil && p.readTimeout > 0 && time.Since(p.lastRead) > p.readTimeout {
		return n, fmt.Errorf("download stalled: no data received for %v", p.readTimeout)
	}

	return n, err
}

func (p *progressReader) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	if p.downloaded > 0 {
		p.logProgress()
	}
	p.mu.Unlock()

	return p.reader.Close()
}

func (p *progressReader) logProgress() {
	if p.total > 0 {
		pct := float64(p.downloaded) / float64(p.total) * 100
		p.logger.Debug("download progress",
			"url", p.url,
			"downloaded_kb", p.downloaded/1024,
			"total_kb", p.total/1024,
			"percent", fmt.Sprintf("%.1f%%", pct),
		)
	} else {
		p.logger.Debug("download progress",
			"url", p.url,
			"downloaded_kb", p.downloaded/1024,
		)
	}
}

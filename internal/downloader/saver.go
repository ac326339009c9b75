package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/worker"
	"github.com/iconidentify/tikgrab/pkg/tiktok"
)

var unsafeChars = regexp.MustCompile(`[^\w.-]+`)

// Saver writes the media of a descriptor to a directory.
type Saver struct {
	dl      Downloader
	pool    *worker.Pool
	dir     string
	minFree int64
	logger  *slog.Logger
}

// NewSaver creates a saver that writes into cfg.Dir. Gallery images are
// fetched through pool.
func NewSaver(dl Downloader, pool *worker.Pool, cfg config.DownloadConfig, logger *slog.Logger) *Saver {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return &Saver{
		dl:      dl,
		pool:    pool,
		dir:     dir,
		minFree: cfg.MinFreeBytes,
		logger:  logger,
	}
}

// Dir returns the output directory.
func (s *Saver) Dir() string {
	return s.dir
}

// Save downloads the video or every gallery image of d and returns the
// written paths in media order. sourceURL names the files when it carries a
// content ID.
func (s *Saver) Save(ctx context.Context, sourceURL string, d *domain.Descriptor) ([]string, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := FileBase(sourceURL, d, time.Now())

	if !d.IsPhoto {
		path, err := s.saveOne(ctx, d.VideoURL, filepath.Join(s.dir, base), ".mp4")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	paths := make([]string, len(d.Images))
	jobs := make([]worker.Job, len(d.Images))
	for i, img := range d.Images {
		stem := filepath.Join(s.dir, fmt.Sprintf("%s_%02d", base, i+1))
		jobs[i] = func(ctx context.Context) error {
			path, err := s.saveOne(ctx, img, stem, ".jpg")
			if err != nil {
				return fmt.Errorf("image %d: %w", i+1, err)
			}
			paths[i] = path
			return nil
		}
	}

	errs := s.pool.Run(ctx, jobs)
	saved := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			saved = append(saved, p)
		}
	}
	return saved, errors.Join(errs...)
}

func (s *Saver) saveOne(ctx context.Context, mediaURL, stem, defaultExt string) (string, error) {
	if err := s.checkFreeSpace(0); err != nil {
		return "", err
	}

	body, size, contentType, err := s.dl.Download(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := s.checkFreeSpace(size); err != nil {
		return "", err
	}

	path := stem + extensionFor(contentType, defaultExt)
	tmp, err := os.CreateTemp(s.dir, ".tikgrab-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}

	s.logger.Info("media saved", "path", path, "bytes", written)
	return path, nil
}

// checkFreeSpace fails with ErrStorageFull when writing need more bytes would
// leave less than the configured minimum. Unknown free space passes.
func (s *Saver) checkFreeSpace(need int64) error {
	if s.minFree <= 0 {
		return nil
	}
	free := freeDiskSpace(s.dir)
	if free == 0 {
		return nil
	}
	if need < 0 {
		need = 0
	}
	if free-need < s.minFree {
		return fmt.Errorf("%w: %d bytes free, need %d", domain.ErrStorageFull, free, need+s.minFree)
	}
	return nil
}

// FileBase returns the file name stem for the media of d: the content ID of
// sourceURL when present, otherwise the author handle and a timestamp.
func FileBase(sourceURL string, d *domain.Descriptor, now time.Time) string {
	author := strings.TrimPrefix(d.DisplayAuthor(), domain.AuthorMarker)
	author = unsafeChars.ReplaceAllString(author, "_")
	if id := tiktok.ExtractContentID(sourceURL); id != "" {
		return author + "_" + id
	}
	return author + "_" + now.Format("20060102-150405")
}

func extensionFor(contentType, fallback string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(strings.ToLower(mediaType)) {
	case "video/mp4":
		return ".mp4"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return fallback
	}
}

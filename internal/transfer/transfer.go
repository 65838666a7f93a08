package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"pelotarr/internal/fileutil"
	"pelotarr/internal/logging"
	"pelotarr/internal/services"
)

// Options controls a single download.
type Options struct {
	// Headers are added to the request verbatim.
	Headers map[string]string
	// Timeout bounds the whole transfer. Zero means no client timeout
	// beyond the caller's context.
	Timeout time.Duration
	// Overwrite allows replacing an existing destination file.
	Overwrite bool
	// AllowedDir confines the destination. A destination resolving
	// outside it is rejected before any network traffic.
	AllowedDir string
	UserAgent  string
}

// Engine streams remote files to disk through a temporary .part path so a
// failed transfer never leaves a partial file at the final destination.
type Engine struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a transfer engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{
		client: &http.Client{},
		logger: logging.WithComponent(logger, "transfer"),
	}
}

// Download fetches rawURL into destPath and returns the byte count. The
// body lands in destPath+".part" first and is renamed only after the
// advertised content length, when present, has been fully delivered.
func (e *Engine) Download(ctx context.Context, rawURL, destPath string, opts Options) (int64, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return 0, services.Wrap(services.ErrInvalidInput, "transfer", "download",
			fmt.Sprintf("malformed url %q", rawURL), err)
	}

	dest, err := filepath.Abs(destPath)
	if err != nil {
		return 0, services.Wrap(services.ErrInvalidInput, "transfer", "download", "resolving destination", err)
	}
	if opts.AllowedDir != "" {
		if err := fileutil.EnsureSubpath(dest, opts.AllowedDir); err != nil {
			return 0, services.Wrap(services.ErrPolicyViolation, "transfer", "download", "destination confinement", err)
		}
	}
	if err := fileutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return 0, services.Wrap(services.ErrIntegrity, "transfer", "download", "creating destination directory", err)
	}
	if !opts.Overwrite && fileutil.FileExists(dest) {
		return 0, services.Wrap(services.ErrConflict, "transfer", "download",
			fmt.Sprintf("destination %s already exists", dest), nil)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrInvalidInput, "transfer", "download", "building request", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrUpstream, "transfer", "download", "requesting file", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, services.Wrap(services.ErrUpstream, "transfer", "download",
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, rawURL), nil)
	}

	written, err := e.writeTemp(dest, resp)
	if err != nil {
		return 0, err
	}

	e.logger.Info("download complete", "dest", dest, logging.Int64("bytes", written))
	return written, nil
}

// writeTemp streams the body into the .part file, verifies the byte count
// against Content-Length and renames into place. The temp file is removed
// on every failure path.
func (e *Engine) writeTemp(dest string, resp *http.Response) (int64, error) {
	tmp := dest + ".part"
	os.Remove(tmp)

	f, err := os.Create(tmp)
	if err != nil {
		return 0, services.Wrap(services.ErrIntegrity, "transfer", "download", "creating temp file", err)
	}

	written, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp)
		if copyErr == nil {
			copyErr = closeErr
		}
		return 0, services.Wrap(services.ErrUpstream, "transfer", "download", "streaming body", copyErr)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		os.Remove(tmp)
		return 0, services.Wrap(services.ErrIntegrity, "transfer", "download",
			fmt.Sprintf("truncated transfer: got %d of %d bytes", written, resp.ContentLength), nil)
	}

	if err := fileutil.MoveAtomic(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, services.Wrap(services.ErrIntegrity, "transfer", "download", "finalizing file", err)
	}
	return written, nil
}

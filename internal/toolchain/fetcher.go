package toolchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
)

const defaultInstallerBaseURL = "https://repo.anaconda.com/miniconda"

// FetcherConfig configures the installer fetcher.
type FetcherConfig struct {
	// CacheDir is the local directory keeping downloaded installers.
	CacheDir string
	// BaseURL is the installer repository URL. Overridable for testing.
	BaseURL string
	// HTTPClient is the HTTP client for download requests.
	HTTPClient *http.Client
	// StatusWriter receives progress output during downloads, nothing is
	// printed when unset.
	StatusWriter io.Writer
	// Logger for logging.
	Logger log.Logger
}

func (c *FetcherConfig) defaults() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache directory is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultInstallerBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "toolchain.Fetcher"})

	return nil
}

// Fetcher downloads installer artifacts into a local cache directory. An
// artifact already in the cache is never downloaded again.
type Fetcher struct {
	cacheDir     string
	baseURL      string
	httpClient   *http.Client
	statusWriter io.Writer
	logger       log.Logger
}

// NewFetcher returns an installer fetcher.
func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Fetcher{
		cacheDir:     cfg.CacheDir,
		baseURL:      cfg.BaseURL,
		httpClient:   cfg.HTTPClient,
		statusWriter: cfg.StatusWriter,
		logger:       cfg.Logger,
	}, nil
}

// Fetch ensures the installer artifact for the given platform is in the
// cache and returns its local path. Platforms without an installer fail
// before any network request is made.
func (f *Fetcher) Fetch(ctx context.Context, goos, goarch string) (string, error) {
	file := InstallerFile(goos, goarch)
	if file == "" {
		return "", fmt.Errorf("no installer for %s/%s: %w", goos, goarch, model.ErrUnsupportedPlatform)
	}

	dstPath := filepath.Join(f.cacheDir, file)
	if _, err := os.Stat(dstPath); err == nil {
		f.logger.Debugf("Installer already cached: %s", dstPath)
		return dstPath, nil
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	url := fmt.Sprintf("%s/%s", f.baseURL, file)
	f.logger.Infof("Downloading installer: %s", file)
	if err := f.downloadFile(ctx, url, dstPath); err != nil {
		return "", fmt.Errorf("downloading installer: %w", err)
	}

	return dstPath, nil
}

func (f *Fetcher) downloadFile(ctx context.Context, url, dstPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	file, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", dstPath, err)
	}
	defer file.Close()

	var dst io.Writer = file
	if f.statusWriter != nil {
		pw := NewProgressWriter(file, f.statusWriter, resp.ContentLength)
		defer pw.Finish()
		dst = pw
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		os.Remove(dstPath)
		return fmt.Errorf("writing file %s: %w", dstPath, err)
	}

	return nil
}

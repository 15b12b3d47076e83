package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// downloadWorkers bounds parallel file downloads so the source server is not
// overwhelmed once the listing pages are enumerated.
const downloadWorkers = 4

// Fetcher downloads linked files to local storage. Downloads are idempotent:
// a file already present at its destination path is never re-fetched.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewFetcher creates a Fetcher. Redirects are followed by the underlying
// client's default policy.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Fetch downloads fileURL into destDir and returns the local path. The
// destination filename is the URL's final path segment; two URLs sharing a
// final segment collide, which is an accepted limitation. If the file is
// already present the network is skipped entirely.
func (f *Fetcher) Fetch(ctx context.Context, fileURL, destDir string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parsing file URL %q: %w", fileURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive filename from %q", fileURL)
	}
	destPath := filepath.Join(destDir, name)

	if _, err := os.Stat(destPath); err == nil {
		slog.Debug("file already exists, skipping download", "path", destPath)
		return destPath, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", destDir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", fileURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", fileURL, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath) // a truncated file would satisfy the skip-if-exists check
		return "", fmt.Errorf("writing %s: %w", destPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", destPath, err)
	}

	slog.Info("downloaded file", "url", fileURL, "path", destPath)
	return destPath, nil
}

// FetchAll downloads every distinct PDF link across docs into destDir and
// stamps the resulting local path onto the matching FileLinks. Individual
// download failures are logged and skipped; the remaining files still land.
func (f *Fetcher) FetchAll(ctx context.Context, docs []models.Document, destDir string) {
	unique := make(map[string]struct{})
	var urls []string
	for _, doc := range docs {
		for _, link := range doc.FileLinks {
			if link.FileType != "pdf" {
				continue
			}
			if _, seen := unique[link.URL]; seen {
				continue
			}
			unique[link.URL] = struct{}{}
			urls = append(urls, link.URL)
		}
	}
	slog.Info("downloading files", "count", len(urls))

	paths := make(map[string]string, len(urls))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)
	for _, fileURL := range urls {
		g.Go(func() error {
			localPath, err := f.Fetch(gCtx, fileURL, destDir)
			if err != nil {
				slog.Error("failed to download file", "url", fileURL, "error", err)
				return nil // partial failure never aborts the run
			}
			mu.Lock()
			paths[fileURL] = localPath
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	for i := range docs {
		for j := range docs[i].FileLinks {
			if p, ok := paths[docs[i].FileLinks[j].URL]; ok {
				docs[i].FileLinks[j].FilePath = p
			}
		}
	}
}

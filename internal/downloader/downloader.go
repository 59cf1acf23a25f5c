package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "echoscribe/internal/app/errors"
)

// Downloader resolves a source identifier into a local audio file.
type Downloader interface {
	Download(ctx context.Context, source string) (string, error)
}

var audioExtensions = []string{".mp3", ".m4a", ".wav", ".ogg", ".flac", ".ape"}

// ForSource picks the downloader matching the shape of the source identifier:
// a podcast RSS feed, a YouTube video, a direct audio URL, an episode web
// page, or a local file. Unrecognized sources are rejected before any network
// traffic.
func ForSource(source, outputDir string) (Downloader, error) {
	switch {
	case isFeedURL(source):
		return &PodcastDownloader{OutputDir: outputDir}, nil
	case isYouTubeURL(source):
		return &YouTubeDownloader{OutputDir: outputDir}, nil
	case isAudioURL(source):
		return &AudioDownloader{OutputDir: outputDir}, nil
	case isHTTPURL(source):
		return &EpisodePageDownloader{OutputDir: outputDir}, nil
	case isLocalAudioFile(source):
		return &LocalFileDownloader{}, nil
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedSource, "no downloader for %q", source)
	}
}

func isHTTPURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isFeedURL(source string) bool {
	if !isHTTPURL(source) {
		return false
	}
	u, _ := url.Parse(source)
	p := strings.ToLower(u.Path)
	return strings.HasSuffix(p, ".xml") || strings.HasSuffix(p, ".rss") || strings.Contains(p, "/rss")
}

func isAudioURL(source string) bool {
	if !isHTTPURL(source) {
		return false
	}
	u, _ := url.Parse(source)
	return audioExtension(u.Path) != ""
}

func isLocalAudioFile(source string) bool {
	info, err := os.Stat(source)
	return err == nil && !info.IsDir()
}

func audioExtension(p string) string {
	lower := strings.ToLower(p)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// validPath strips characters that cannot appear in file names.
func validPath(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	return strings.ReplaceAll(name, string(os.PathSeparator), "-")
}

// AudioDownloader fetches a direct audio URL.
type AudioDownloader struct {
	OutputDir string
}

func (d *AudioDownloader) Download(ctx context.Context, source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrUnsupportedSource, "invalid url %q", source)
	}

	name := validPath(path.Base(u.Path))
	if name == "" || name == "." {
		name = "audio" + audioExtension(u.Path)
	}
	target := filepath.Join(d.OutputDir, name)
	return target, fetchToFile(ctx, source, target)
}

// LocalFileDownloader passes an existing local file through unchanged.
type LocalFileDownloader struct{}

func (d *LocalFileDownloader) Download(ctx context.Context, source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrUnreachableSource, "local file %q", source)
	}
	if info.Size() == 0 {
		return "", apperrors.Wrapf(apperrors.ErrEmptySource, "local file %q", source)
	}
	return source, nil
}

// fetchToFile downloads url into target, creating parent directories. A
// failed or empty download never leaves a file behind.
func fetchToFile(ctx context.Context, rawURL, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUnsupportedSource, "invalid url %q", rawURL)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUnreachableSource, "GET %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Wrapf(apperrors.ErrUnreachableSource, "GET %s returned %d", rawURL, resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if written == 0 {
		os.Remove(target)
		return apperrors.Wrapf(apperrors.ErrEmptySource, "GET %s returned no data", rawURL)
	}
	return nil
}

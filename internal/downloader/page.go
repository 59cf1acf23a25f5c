package downloader

import (
	"context"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "echoscribe/internal/app/errors"
)

// EpisodePageDownloader handles episode web pages that are neither feeds nor
// direct audio links. Podcast players publish the audio location in the
// page's Open Graph metadata, so the og:audio tag is scraped and followed.
type EpisodePageDownloader struct {
	OutputDir string
}

func (d *EpisodePageDownloader) Download(ctx context.Context, source string) (string, error) {
	audioURL, title, err := episodeInfo(ctx, source)
	if err != nil {
		return "", err
	}

	name := validPath(strings.TrimSpace(title))
	if name == "" {
		name = validPath(path.Base(audioURL))
	}
	ext := audioExtension(audioURL)
	if ext == "" {
		ext = ".mp3"
	}

	target := filepath.Join(d.OutputDir, name+ext)
	return target, fetchToFile(ctx, audioURL, target)
}

// episodeInfo scrapes the audio URL and episode title from the page metadata.
func episodeInfo(ctx context.Context, pageURL string) (audioURL, title string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", apperrors.Wrapf(apperrors.ErrUnsupportedSource, "invalid url %q", pageURL)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", apperrors.Wrapf(apperrors.ErrUnreachableSource, "GET %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", apperrors.Wrapf(apperrors.ErrUnreachableSource, "GET %s returned %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", apperrors.Wrapf(apperrors.ErrUnsupportedSource, "page %s is not parseable HTML", pageURL)
	}

	audioTag := doc.Find(`meta[property="og:audio"]`).First()
	titleTag := doc.Find(`meta[property="og:title"]`).First()

	audioURL, ok := audioTag.Attr("content")
	if !ok || audioURL == "" {
		return "", "", apperrors.Wrapf(apperrors.ErrUnsupportedSource, "page %s has no og:audio metadata", pageURL)
	}
	title, _ = titleTag.Attr("content")
	return audioURL, title, nil
}

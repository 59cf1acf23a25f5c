package downloader

import (
	"context"
	"encoding/xml"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	apperrors "echoscribe/internal/app/errors"
)

// rssFeed models the subset of an RSS 2.0 podcast feed needed to locate the
// newest episode's audio enclosure.
type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title     string `xml:"title"`
	Enclosure struct {
		URL  string `xml:"url,attr"`
		Type string `xml:"type,attr"`
	} `xml:"enclosure"`
}

// PodcastDownloader resolves a podcast RSS feed to its most recent episode's
// audio file. Feeds list episodes newest first, so the first item carrying an
// enclosure wins.
type PodcastDownloader struct {
	OutputDir string
}

func (d *PodcastDownloader) Download(ctx context.Context, source string) (string, error) {
	feed, err := fetchFeed(ctx, source)
	if err != nil {
		return "", err
	}

	item, ok := newestEpisode(feed)
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrEmptySource, "feed %s has no audio enclosure", source)
	}

	name := validPath(strings.TrimSpace(item.Title))
	if name == "" {
		name = validPath(path.Base(item.Enclosure.URL))
	}
	ext := audioExtension(item.Enclosure.URL)
	if ext == "" {
		ext = ".mp3"
	}

	podcastDir := filepath.Join(d.OutputDir, validPath(strings.TrimSpace(feed.Channel.Title)))
	target := filepath.Join(podcastDir, name+ext)
	return target, fetchToFile(ctx, item.Enclosure.URL, target)
}

func fetchFeed(ctx context.Context, source string) (*rssFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedSource, "invalid feed url %q", source)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnreachableSource, "GET %s", source)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(apperrors.ErrUnreachableSource, "GET %s returned %d", source, resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedSource, "feed %s is not valid RSS", source)
	}
	return &feed, nil
}

func newestEpisode(feed *rssFeed) (rssItem, bool) {
	for _, item := range feed.Channel.Items {
		if item.Enclosure.URL != "" {
			return item, true
		}
	}
	return rssItem{}, false
}

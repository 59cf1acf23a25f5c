package downloader

import (
	"bytes"
	"context"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"

	apperrors "echoscribe/internal/app/errors"
)

// YouTubeDownloader extracts the audio track of a video URL with yt-dlp,
// which handles the signed stream URLs a plain page scrape cannot reach.
type YouTubeDownloader struct {
	OutputDir string
	// Binary overrides the yt-dlp executable (tests).
	Binary string
}

func isYouTubeURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "youtube.com" || host == "youtu.be"
}

func (d *YouTubeDownloader) Download(ctx context.Context, source string) (string, error) {
	binary := d.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	template := filepath.Join(d.OutputDir, "%(title)s.%(ext)s")

	// --print after_move:filepath reports the final audio path on stdout
	// while --no-simulate keeps the download itself running.
	cmd := exec.CommandContext(ctx, binary,
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "mp3",
		"--no-simulate",
		"--print", "after_move:filepath",
		"--output", template,
		source,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrUnreachableSource,
			"yt-dlp %s: %v: %s", source, err, strings.TrimSpace(stderr.String()))
	}

	audioPath := strings.TrimSpace(stdout.String())
	if audioPath == "" {
		return "", apperrors.Wrapf(apperrors.ErrEmptySource, "yt-dlp %s produced no audio file", source)
	}
	return audioPath, nil
}

// Package playlist resolves HLS playlist URLs into flat segment lists.
// Master playlists are resolved recursively to the highest-bandwidth media
// playlist. A hand-rolled line parser is the primary path because it copes
// with the malformed manifests real CDNs serve; a standards-compliant
// library parser is the fallback.
package playlist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"go-offline-vault/internal/models"
)

// Master playlists occasionally chain; stop before a cycle runs away.
const maxMasterDepth = 5

// Segment is one media chunk referenced by a media playlist. URI is kept as
// written in the manifest; absolute resolution happens in the transfer
// engine against Manifest.URL.
type Segment struct {
	URI      string
	Duration float64
	Index    int
}

// Manifest is the resolved media playlist.
type Manifest struct {
	// URL is the final media-playlist URL after master resolution.
	URL            string
	Segments       []Segment
	TargetDuration float64
	MediaSequence  int
	Version        int
	EndList        bool
}

type variant struct {
	uri        string
	bandwidth  int
	resolution string
}

// Resolver fetches and parses HLS playlists.
type Resolver struct {
	client     *http.Client
	maxRetries uint64
	retryDelay time.Duration
}

// NewResolver creates a Resolver. A nil client falls back to a default with
// a conservative timeout.
func NewResolver(client *http.Client, maxRetries int, retryDelay time.Duration) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Resolver{
		client:     client,
		maxRetries: uint64(maxRetries),
		retryDelay: retryDelay,
	}
}

// Resolve fetches playlistURL, recursing through master playlists, and
// returns the flattened media manifest.
func (r *Resolver) Resolve(ctx context.Context, playlistURL string) (*Manifest, error) {
	return r.resolve(ctx, playlistURL, 0)
}

func (r *Resolver) resolve(ctx context.Context, playlistURL string, depth int) (*Manifest, error) {
	if depth > maxMasterDepth {
		return nil, models.NewError(models.ErrPlaylistParse,
			"master playlist nesting exceeds %d levels at %s", maxMasterDepth, playlistURL)
	}

	body, err := r.fetch(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	man, variants := parseManual(body)
	if len(variants) == 0 && len(man.Segments) == 0 {
		log.Debugf("Manual parse of %s yielded nothing, trying fallback parser", playlistURL)
		man, variants, err = parseFallback(body)
		if err != nil {
			return nil, models.NewError(models.ErrPlaylistParse,
				"unable to parse playlist %s: %v", playlistURL, err)
		}
		if len(variants) == 0 && len(man.Segments) == 0 {
			return nil, models.NewError(models.ErrPlaylistParse,
				"playlist %s contains no streams and no segments", playlistURL)
		}
	}

	if len(variants) > 0 {
		best := pickBestVariant(variants)
		mediaURL, err := ResolveURI(playlistURL, best.uri)
		if err != nil {
			return nil, models.NewError(models.ErrPlaylistParse,
				"resolving media playlist URI %q against %s: %v", best.uri, playlistURL, err)
		}
		log.Debugf("Master playlist %s: selected variant bandwidth=%d resolution=%s uri=%s",
			playlistURL, best.bandwidth, best.resolution, mediaURL)
		return r.resolve(ctx, mediaURL, depth+1)
	}

	man.URL = playlistURL
	log.Debugf("Media playlist %s: %d segments, targetDuration=%.1f, endList=%t",
		playlistURL, len(man.Segments), man.TargetDuration, man.EndList)
	return man, nil
}

// pickBestVariant returns the variant with the highest bandwidth; on a tie
// the first occurrence wins.
func pickBestVariant(variants []variant) variant {
	best := variants[0]
	for _, v := range variants[1:] {
		if v.bandwidth > best.bandwidth {
			best = v
		}
	}
	return best
}

func (r *Resolver) fetch(ctx context.Context, playlistURL string) (string, error) {
	var body string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/vnd.apple.mpegurl, application/x-mpegurl, */*")

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("playlist request returned status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(data)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.retryDelay
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, r.maxRetries), ctx)); err != nil {
		return "", models.NewError(models.ErrPlaylistParse, "fetching playlist %s: %v", playlistURL, err)
	}
	return body, nil
}

// ResolveURI resolves a playlist or segment URI against its base URL.
// Absolute URIs pass through unchanged, a leading slash resolves against
// scheme+host, and anything else resolves against the base's directory.
func ResolveURI(base, uri string) (string, error) {
	if u, err := url.Parse(uri); err == nil && u.IsAbs() {
		return uri, nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URL %s: %w", base, err)
	}

	if strings.HasPrefix(uri, "/") {
		return b.Scheme + "://" + b.Host + uri, nil
	}

	ref, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parsing URI %s: %w", uri, err)
	}
	return b.ResolveReference(ref).String(), nil
}

// IsPlaylistURL reports whether a media URL points at an HLS manifest
// rather than a direct file.
func IsPlaylistURL(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	lowerPath := strings.ToLower(p)
	if strings.HasSuffix(lowerPath, ".m3u8") || strings.HasSuffix(lowerPath, ".m3u") {
		return true
	}

	lower := strings.ToLower(raw)
	if strings.Contains(lower, "mpegurl") {
		return true
	}
	for _, pattern := range []string{"playlist.m3u8", "master.m3u8", "index.m3u8"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	// "manifest" must stand alone as a path segment so names that merely
	// start with it, like manifesto.mp4, are not mistaken for an HLS manifest.
	for _, seg := range strings.Split(strings.Trim(lowerPath, "/"), "/") {
		if seg == "manifest" {
			return true
		}
	}
	return false
}

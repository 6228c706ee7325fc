// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package api

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmfield/rewind/internal/cache"
	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/metrics"
)

// maxProxyImageBytes caps proxied image size. Posters are well under this;
// anything larger is not an image we want to relay.
const maxProxyImageBytes = 10 << 20

// tmdbHosts are always allowed as artwork origins.
var tmdbHosts = []string{"image.tmdb.org", "www.themoviedb.org"}

// imageProxy relays artwork from allow-listed origins so report pages never
// embed the media server's API key bearing URLs in third-party contexts.
type imageProxy struct {
	embyHost string
	client   *http.Client
	images   *cache.Cache
}

// cachedImage is one proxied response body with its content type.
type cachedImage struct {
	contentType string
	body        []byte
}

func newImageProxy(cfg *config.Config) *imageProxy {
	embyHost := ""
	if parsed, err := url.Parse(cfg.Emby.URL); err == nil {
		embyHost = parsed.Hostname()
	}
	return &imageProxy{
		embyHost: embyHost,
		client:   &http.Client{Timeout: 15 * time.Second},
		images:   cache.New(cfg.Cache.PosterTTL),
	}
}

// allowed reports whether the target URL may be proxied. Only http(s) URLs
// pointing at TMDB, the configured media server, or private-network hosts
// pass; everything else is rejected to keep the proxy from becoming an open
// relay.
func (p *imageProxy) allowed(target *url.URL) bool {
	if target.Scheme != "http" && target.Scheme != "https" {
		return false
	}

	host := target.Hostname()
	if host == "" {
		return false
	}

	for _, allowed := range tmdbHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	if p.embyHost != "" && strings.EqualFold(host, p.embyHost) {
		return true
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}

	return false
}

// ImageProxy relays an allow-listed image.
//
// Method: GET
// Path: /api/v1/images/proxy?url=https://image.tmdb.org/t/p/w342/poster.jpg
func (h *Handler) ImageProxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		metrics.ImageProxyRequests.WithLabelValues("rejected").Inc()
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "url parameter is required", nil)
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || !h.proxy.allowed(target) {
		metrics.ImageProxyRequests.WithLabelValues("rejected").Inc()
		respondError(w, http.StatusForbidden, "FORBIDDEN", "URL is not an allowed image origin", nil)
		return
	}

	if cached, ok := h.proxy.images.Get(target.String()); ok {
		metrics.ImageProxyRequests.WithLabelValues("hit").Inc()
		img := cached.(*cachedImage)
		writeImage(w, img)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		metrics.ImageProxyRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to build upstream request", err)
		return
	}

	resp, err := h.proxy.client.Do(req)
	if err != nil {
		metrics.ImageProxyRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Image fetch failed", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.ImageProxyRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Image origin returned an error", nil)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		metrics.ImageProxyRequests.WithLabelValues("rejected").Inc()
		respondError(w, http.StatusForbidden, "FORBIDDEN", "Origin did not return an image", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyImageBytes+1))
	if err != nil {
		metrics.ImageProxyRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to read image body", err)
		return
	}
	if len(body) > maxProxyImageBytes {
		metrics.ImageProxyRequests.WithLabelValues("rejected").Inc()
		respondError(w, http.StatusForbidden, "FORBIDDEN", "Image exceeds the size limit", nil)
		return
	}

	img := &cachedImage{contentType: contentType, body: body}
	h.proxy.images.Set(target.String(), img)
	metrics.ImageProxyRequests.WithLabelValues("fetched").Inc()
	logging.Debug().Str("host", target.Hostname()).Int("bytes", len(body)).Msg("Image proxied")

	writeImage(w, img)
}

func writeImage(w http.ResponseWriter, img *cachedImage) {
	w.Header().Set("Content-Type", img.contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.body); err != nil {
		logging.Error().Err(err).Msg("Failed to write proxied image")
	}
}

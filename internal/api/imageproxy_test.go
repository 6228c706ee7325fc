// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestImageProxyAllowList(t *testing.T) {
	cfg := testAPIConfig()
	h := NewHandler(&fakeEmby{}, &fakeReports{}, cfg)

	tests := []struct {
		name    string
		url     string
		allowed bool
	}{
		{"tmdb image cdn", "https://image.tmdb.org/t/p/w342/x.jpg", true},
		{"tmdb site", "https://www.themoviedb.org/poster.jpg", true},
		{"configured emby host", "http://emby.local/Items/1/Images/Primary", true},
		{"localhost", "http://localhost:8096/img.jpg", true},
		{"loopback ip", "http://127.0.0.1:8096/img.jpg", true},
		{"private ip", "http://192.168.1.10:8096/img.jpg", true},
		{"ten dot", "http://10.0.0.5/img.jpg", true},
		{"public host", "https://evil.example.com/img.jpg", false},
		{"public ip", "http://8.8.8.8/img.jpg", false},
		{"ftp scheme", "ftp://image.tmdb.org/x.jpg", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := url.Parse(tt.url)
			if err != nil {
				t.Fatalf("bad test URL: %v", err)
			}
			if got := h.proxy.allowed(target); got != tt.allowed {
				t.Errorf("allowed(%q) = %v, want %v", tt.url, got, tt.allowed)
			}
		})
	}
}

func TestImageProxyFetchAndCache(t *testing.T) {
	fetches := 0
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegbytes")) //nolint:errcheck
	}))
	defer origin.Close()

	// The origin listens on 127.0.0.1, which the allow-list accepts.
	router := testRouter(&fakeEmby{}, &fakeReports{})
	path := "/api/v1/images/proxy?url=" + url.QueryEscape(origin.URL+"/poster.jpg")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected image content type, got %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "jpegbytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cached 200, got %d", rec.Code)
	}
	if fetches != 1 {
		t.Errorf("expected a single origin fetch, got %d", fetches)
	}
}

func TestImageProxyRejectsNonImage(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>")) //nolint:errcheck
	}))
	defer origin.Close()

	router := testRouter(&fakeEmby{}, &fakeReports{})
	path := "/api/v1/images/proxy?url=" + url.QueryEscape(origin.URL+"/page.html")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-image content, got %d", rec.Code)
	}
}

func TestImageProxyRejectsForbiddenHost(t *testing.T) {
	router := testRouter(&fakeEmby{}, &fakeReports{})

	rec, env := doRequest(t, router, "/api/v1/images/proxy?url="+url.QueryEscape("https://evil.example.com/x.jpg"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %+v", env.Error)
	}

	rec, _ = doRequest(t, router, "/api/v1/images/proxy")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing url, got %d", rec.Code)
	}
}

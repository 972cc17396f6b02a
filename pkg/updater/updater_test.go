// SPDX-License-Identifier: BSD-3-Clause

package updater

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func releaseServer(t *testing.T, tag string, assetBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	assetURL := srv.URL + "/asset"
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name":%q,"assets":[{"name":%q,"browser_download_url":%q}]}`,
			tag, fmt.Sprintf("lfcd_%s_%s", runtime.GOOS, runtime.GOARCH), assetURL)
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(assetBody))
	})
	return srv
}

func TestCheckUpdateReportsNewerVersion(t *testing.T) {
	srv := releaseServer(t, "v1.2.0", "binary-contents")
	u := New(Config{ReleasesURL: srv.URL + "/latest"})

	available, latest, err := u.CheckUpdate(context.Background(), "v1.1.0")
	if err != nil {
		t.Fatalf("CheckUpdate: %v", err)
	}
	if !available {
		t.Fatal("expected an update to be available")
	}
	if latest != "1.2.0" {
		t.Fatalf("latest = %q, want 1.2.0", latest)
	}
}

func TestCheckUpdateNoneWhenVersionsMatch(t *testing.T) {
	srv := releaseServer(t, "v1.1.0", "binary-contents")
	u := New(Config{ReleasesURL: srv.URL + "/latest"})

	available, _, err := u.CheckUpdate(context.Background(), "v1.1.0")
	if err != nil {
		t.Fatalf("CheckUpdate: %v", err)
	}
	if available {
		t.Fatal("expected no update when versions match")
	}
}

func TestUpdateDownloadsMatchingAsset(t *testing.T) {
	srv := releaseServer(t, "v1.2.0", "binary-contents")
	u := New(Config{ReleasesURL: srv.URL + "/latest"})

	target := filepath.Join(t.TempDir(), "lfcd-new")
	if err := u.Update(context.Background(), target); err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read downloaded target: %v", err)
	}
	if string(data) != "binary-contents" {
		t.Fatalf("downloaded content = %q, want %q", data, "binary-contents")
	}
}

func TestUpdateNoMatchingAsset(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v1.2.0","assets":[{"name":"lfcd_other_other","browser_download_url":"x"}]}`)
	})

	u := New(Config{ReleasesURL: srv.URL + "/latest"})
	err := u.Update(context.Background(), filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatal("expected ErrNoReleaseAsset")
	}
}

func TestCheckUpdateFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	u := New(Config{ReleasesURL: srv.URL})
	if _, _, err := u.CheckUpdate(context.Background(), "v1.0.0"); err == nil {
		t.Fatal("expected fetch error")
	}
}

// SPDX-License-Identifier: BSD-3-Clause

package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/lfcd/lfcd/pkg/file"
)

// DefaultReleasesURL is GitHub's "latest release" API shape. Config.URL
// overrides it for self-hosted feeds.
const DefaultReleasesURL = "https://api.github.com/repos/lfcd/lfcd/releases/latest"

// Config controls where Updater looks for releases and how long it
// waits for the network.
type Config struct {
	// ReleasesURL is a GitHub-releases-API-shaped endpoint returning the
	// latest release as JSON (tag_name + assets[].name/browser_download_url).
	ReleasesURL string
	// HTTPClient is reused across checks/downloads. A client with a
	// sane timeout is constructed if nil.
	HTTPClient *http.Client
}

// Updater implements pkg/rpcserver's Updater interface: it answers
// whether a newer release is published and can fetch the asset built
// for the running GOOS/GOARCH.
type Updater struct {
	url    string
	client *http.Client
}

// New builds an Updater from cfg, filling in defaults for an empty URL
// or HTTP client.
func New(cfg Config) *Updater {
	url := cfg.ReleasesURL
	if url == "" {
		url = DefaultReleasesURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Updater{url: url, client: client}
}

type release struct {
	TagName string  `json:"tag_name"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// CheckUpdate fetches the latest published release and reports whether
// its tag differs from currentVersion. Version ordering isn't
// evaluated (the release feed is assumed to only ever publish forward),
// so any mismatch is treated as "available".
func (u *Updater) CheckUpdate(ctx context.Context, currentVersion string) (bool, string, error) {
	rel, err := u.fetchLatest(ctx)
	if err != nil {
		return false, "", err
	}
	latest := strings.TrimPrefix(rel.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")
	return latest != current && latest != "", latest, nil
}

// Update downloads the release asset matching the running platform to
// targetPath.
func (u *Updater) Update(ctx context.Context, targetPath string) error {
	rel, err := u.fetchLatest(ctx)
	if err != nil {
		return err
	}

	a, ok := matchAsset(rel.Assets)
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNoReleaseAsset, runtime.GOOS, runtime.GOARCH)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BrowserDownloadURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrDownloadFailed, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if err := file.AtomicReplaceFile(targetPath, body, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return nil
}

func (u *Updater) fetchLatest(ctx context.Context) (release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return release{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return release{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return release{}, fmt.Errorf("%w: unexpected status %s", ErrFetchFailed, resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return release{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return rel, nil
}

// matchAsset picks the release asset whose name embeds the running
// GOOS and GOARCH, e.g. "lfcd_linux_amd64".
func matchAsset(assets []asset) (asset, bool) {
	for _, a := range assets {
		name := strings.ToLower(a.Name)
		if strings.Contains(name, runtime.GOOS) && strings.Contains(name, runtime.GOARCH) {
			return a, true
		}
	}
	return asset{}, false
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sync"
	"time"

	goversion "github.com/hashicorp/go-version"
)

const (
	versionURL          = "https://raw.githubusercontent.com/cwsl/sdr_tunermon/refs/heads/main/version.go"
	versionCheckTimeout = 10 * time.Second
)

// versionRegex matches the Version constant in version.go
var versionRegex = regexp.MustCompile(`const\s+Version\s*=\s*"([^"]+)"`)

// VersionChecker periodically fetches the published version and compares it
// against the running build
type VersionChecker struct {
	interval time.Duration

	mu     sync.RWMutex
	latest string

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewVersionChecker creates a checker polling at the given interval
func NewVersionChecker(interval time.Duration) *VersionChecker {
	return &VersionChecker{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs an immediate check then polls at the configured interval
func (vc *VersionChecker) Start() {
	vc.wg.Add(1)
	go func() {
		defer vc.wg.Done()

		vc.check()

		ticker := time.NewTicker(vc.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				vc.check()
			case <-vc.stopChan:
				return
			}
		}
	}()
}

// Stop shuts down the poll loop
func (vc *VersionChecker) Stop() {
	close(vc.stopChan)
	vc.wg.Wait()
}

// LatestVersion returns the most recently fetched published version, or ""
// if no fetch has succeeded yet
func (vc *VersionChecker) LatestVersion() string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.latest
}

// UpdateAvailable reports whether the published version is newer than the
// running build
func (vc *VersionChecker) UpdateAvailable() bool {
	latest := vc.LatestVersion()
	if latest == "" {
		return false
	}

	current, err := goversion.NewVersion(Version)
	if err != nil {
		return false
	}
	published, err := goversion.NewVersion(latest)
	if err != nil {
		return false
	}

	return published.GreaterThan(current)
}

func (vc *VersionChecker) check() {
	latest, err := fetchPublishedVersion()
	if err != nil {
		log.Printf("Version check: %v", err)
		return
	}

	vc.mu.Lock()
	changed := vc.latest != latest
	vc.latest = latest
	vc.mu.Unlock()

	if changed {
		log.Printf("Version check: latest published version is %s (running %s)", latest, Version)
	}
}

// fetchPublishedVersion fetches version.go from the repository and extracts
// the Version constant
func fetchPublishedVersion() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("tunermon/%s", Version))

	client := &http.Client{Timeout: versionCheckTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch version file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status fetching version file: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}

	match := versionRegex.FindSubmatch(body)
	if match == nil {
		return "", fmt.Errorf("version constant not found in version file")
	}

	return string(match[1]), nil
}

package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheEntry is the on-disk form of a downloaded feed.
type cacheEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Body      []byte    `json:"body"`
}

func getCachePath(feedURL string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}

	cacheDir := filepath.Join(homeDir, ".traintracker_cache", "calendars")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("could not create cache directory: %w", err)
	}

	// Feed URLs carry tokens and query strings, so the file is named by hash.
	sum := sha1.Sum([]byte(feedURL))
	return filepath.Join(cacheDir, hex.EncodeToString(sum[:])+".json"), nil
}

// readCache returns the cached feed body if it is younger than ttl.
func readCache(feedURL string, ttl time.Duration) ([]byte, bool) {
	path, err := getCachePath(feedURL)
	if err != nil {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Source != feedURL || time.Since(entry.Timestamp) > ttl {
		return nil, false
	}
	return entry.Body, true
}

func writeCache(feedURL string, body []byte) {
	path, err := getCachePath(feedURL)
	if err != nil {
		return
	}

	data, err := json.Marshal(cacheEntry{Timestamp: time.Now(), Source: feedURL, Body: body})
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0600)
}

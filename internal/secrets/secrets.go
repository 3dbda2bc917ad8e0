// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads feed credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Bearer tokens for authenticated feeds live in files named feed-token-<host>,
// for example feed-token-dav.example.com.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FeedTokenPrefix is the filename prefix of per-host bearer tokens.
const FeedTokenPrefix = "feed-token-"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// FeedToken returns the bearer token stored for host, if any. Host matching
// is case-insensitive and ignores a port suffix.
func FeedToken(secrets map[string]string, host string) (string, bool) {
	host = strings.ToLower(host)
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	if host == "" {
		return "", false
	}
	token, ok := secrets[FeedTokenPrefix+host]
	return token, ok
}

package core

// files.go ingests remotely-referenced files into inline payloads. A cell
// that carries one or more URLs (separated by ',' or '|') is expanded into
// a list of base64-encoded file payloads, each with a generated name that
// will not collide across rows or fields.

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/logging"
)

// MaxInlineFileSize caps how much of a fetched resource is embedded (32MB).
var MaxInlineFileSize int64 = 32 * 1024 * 1024

// FilePayload is a file embedded directly in a create request rather than
// referenced by URL.
type FilePayload struct {
	Name   string `json:"name"`
	Base64 string `json:"base64"`
}

// ContainsLinks reports whether the cell value carries at least one URL.
func ContainsLinks(s string) bool {
	return strings.Contains(s, "http://") || strings.Contains(s, "https://")
}

// FileIngestor retrieves remote resources and encodes them for embedding.
type FileIngestor struct {
	client *http.Client
}

// NewFileIngestor creates an ingestor using the given HTTP client,
// or http.DefaultClient when nil.
func NewFileIngestor(client *http.Client) *FileIngestor {
	if client == nil {
		client = http.DefaultClient
	}
	return &FileIngestor{client: client}
}

// Ingest splits the value into candidate URLs and retrieves them
// concurrently, waiting for all to finish. Failed retrievals are logged
// and dropped; the surviving payloads keep the candidates' order. An
// empty result means every candidate failed — the caller decides whether
// that fails the row.
func (g *FileIngestor) Ingest(ctx context.Context, value string) []FilePayload {
	urls := splitLinks(value)

	results := make([]*FilePayload, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			p, err := g.fetch(ctx, u)
			if err != nil {
				logging.FromContext(ctx).Warn("file retrieval failed", "url", u, "error", err)
				return
			}
			results[i] = p
		}(i, u)
	}
	wg.Wait()

	payloads := make([]FilePayload, 0, len(urls))
	for _, p := range results {
		if p != nil {
			payloads = append(payloads, *p)
		}
	}
	return payloads
}

// fetch retrieves one resource and encodes its bytes as base64.
func (g *FileIngestor) fetch(ctx context.Context, url string) (*FilePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxInlineFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxInlineFileSize {
		return nil, fmt.Errorf("exceeds %dMB limit", MaxInlineFileSize/(1024*1024))
	}

	return &FilePayload{
		Name:   uniqueFileName(url),
		Base64: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// splitLinks splits a cell value on ',' and '|' into trimmed candidates.
func splitLinks(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '|'
	})
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

// uniqueFileName builds <epoch-millis>_<random 0-9999>_<basename> with any
// query string stripped from the basename.
func uniqueFileName(url string) string {
	base := path.Base(url)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return fmt.Sprintf("%d_%d_%s", time.Now().UnixMilli(), rand.Intn(10000), base)
}

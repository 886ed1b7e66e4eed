package objectstore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// B2 talks to a Backblaze-style object store over plain HTTP with basic
// authentication. Payloads are addressed by name under a single bucket;
// the upload URL doubles as the storage locator.
type B2 struct {
	endpoint string
	bucket   string
	keyID    string
	appKey   string
	client   *http.Client
}

// NewB2 creates a client for the given endpoint and bucket.
func NewB2(endpoint, bucket, keyID, appKey string) *B2 {
	return &B2{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		bucket:   bucket,
		keyID:    keyID,
		appKey:   appKey,
		client:   newHTTPClient(),
	}
}

// Put uploads the payload under name and returns its locator URL.
func (b *B2) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	locator := fmt.Sprintf("%s/file/%s/%s", b.endpoint, b.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, locator, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}

	checksum := sha1.Sum(body)

	req.SetBasicAuth(b.keyID, b.appKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Header.Set("X-Bz-File-Name", name)
	req.Header.Set("X-Bz-Content-Sha1", hex.EncodeToString(checksum[:]))

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrUpstream, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: upload %s: status %d: %s", ErrUpstream, name, resp.StatusCode, detail)
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return locator, nil
}

// Get fetches the payload at the given locator.
func (b *B2) Get(ctx context.Context, locator string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.SetBasicAuth(b.keyID, b.appKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrUpstream, locator, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrUpstream, locator, resp.StatusCode)
	}

	return &Object{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

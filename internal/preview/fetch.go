// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// resolveImage turns a background image reference into raw bytes. The
// reference is either an inline data URI or a remote URL fetched with the
// renderer's bounded timeout. Failures here are reported to the caller,
// which degrades to a render without a background image.
func (r *Renderer) resolveImage(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return r.fetchRemote(ctx, ref)
	}
	return nil, fmt.Errorf("unsupported image reference %q", truncate(ref, 64))
}

// decodeDataURI extracts the payload of a base64 data URI
// (data:image/png;base64,....).
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma == -1 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := uri[5:comma], uri[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URI is not base64-encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return data, nil
}

// fetchRemote downloads a remote background image. The request inherits the
// renderer's HTTP client timeout so a stalled host cannot hang a submission;
// the body read is capped to avoid image bombs.
func (r *Renderer) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > r.cfg.MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", r.cfg.MaxImageBytes)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

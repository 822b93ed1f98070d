// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/NVIDIA/observability-stack/pkg/defaults"
)

// RespondJSON writes a JSON response with the given status code and data.
// It buffers the JSON encoding before writing headers to prevent partial responses.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("json encoding failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	RespondBytes(w, statusCode, "application/json", buf.Bytes())
}

// RespondBytes writes an already encoded body.
func RespondBytes(w http.ResponseWriter, statusCode int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		// Connection is broken, log but can't recover
		slog.Warn("response write failed", "error", err)
	}
}

const (
	// HttpReaderUserAgent identifies descriptor downloads.
	HttpReaderUserAgent = "obsctl/1.0"

	// HttpReaderMaxBytes caps the size of a downloaded source.
	HttpReaderMaxBytes int64 = 16 << 20
)

// HttpReaderOption defines a configuration option for HttpReader.
type HttpReaderOption func(*HttpReader)

// HttpReader fetches descriptor and parameter sources over HTTP.
type HttpReader struct {
	UserAgent string
	MaxBytes  int64
	Client    *http.Client
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) HttpReaderOption {
	return func(r *HttpReader) {
		r.UserAgent = userAgent
	}
}

// WithTotalTimeout sets the overall request timeout.
func WithTotalTimeout(timeout time.Duration) HttpReaderOption {
	return func(r *HttpReader) {
		if timeout > 0 {
			r.Client.Timeout = timeout
		}
	}
}

// WithMaxBytes limits the response size.
func WithMaxBytes(n int64) HttpReaderOption {
	return func(r *HttpReader) {
		r.MaxBytes = n
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) HttpReaderOption {
	return func(r *HttpReader) {
		if tr, ok := r.Client.Transport.(*http.Transport); ok {
			tr.TLSClientConfig.InsecureSkipVerify = skip //nolint:gosec
		}
	}
}

// WithClient replaces the HTTP client.
func WithClient(client *http.Client) HttpReaderOption {
	return func(r *HttpReader) {
		if client != nil {
			r.Client = client
		}
	}
}

// NewHttpReader creates a new HttpReader with the specified options.
func NewHttpReader(options ...HttpReaderOption) *HttpReader {
	r := &HttpReader{
		UserAgent: HttpReaderUserAgent,
		MaxBytes:  HttpReaderMaxBytes,
		Client: &http.Client{
			Timeout:   defaults.HTTPClientTimeout,
			Transport: newDefaultHTTPTransport(),
		},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func newDefaultHTTPTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// ReadWithContext fetches url and returns the body.
// The request is bound to the provided context for cancellation and deadlines.
func (r *HttpReader) ReadWithContext(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed for url %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %s", url, resp.Status)
	}

	limit := r.MaxBytes
	if limit <= 0 {
		limit = HttpReaderMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, limit)
	}
	return data, nil
}

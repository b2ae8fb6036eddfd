// Package gzippedhttp compresses responses for clients that accept gzip and
// inflates gzip-encoded request bodies.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// CompressedReader inflates a gzip request body.
type CompressedReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

// NewCompressedReader starts decompressing body.
func NewCompressedReader(body io.ReadCloser) (*CompressedReader, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &CompressedReader{r: body, zr: zr}, nil
}

// Read returns decompressed bytes.
func (c *CompressedReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

// Close closes the gzip stream and the wrapped body.
func (c *CompressedReader) Close() error {
	if err := c.zr.Close(); err != nil {
		_ = c.r.Close()
		return err
	}
	return c.r.Close()
}

// CompressedResponseWriter decides on the first header write whether the
// body gets compressed. Only 2xx answers that may carry a body are.
type CompressedResponseWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

// NewCompressedResponseWriter wraps w; compression starts with the first
// successful response.
func NewCompressedResponseWriter(w http.ResponseWriter) *CompressedResponseWriter {
	return &CompressedResponseWriter{ResponseWriter: w}
}

// WriteHeader decides whether the body gets compressed.
func (c *CompressedResponseWriter) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.wroteHeader = true

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices && statusCode != http.StatusNoContent {
		header := c.Header()
		header.Set("Content-Encoding", "gzip")
		header.Del("Content-Length")
		header.Add("Vary", "Accept-Encoding")

		c.zw = gzipWriterPool.Get().(*gzip.Writer)
		c.zw.Reset(c.ResponseWriter)
	}

	c.ResponseWriter.WriteHeader(statusCode)
}

// Write writes p, compressed when WriteHeader chose so.
func (c *CompressedResponseWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	if c.zw == nil {
		return c.ResponseWriter.Write(p)
	}

	return c.zw.Write(p)
}

// Close flushes the gzip trailer and returns the writer to the pool.
func (c *CompressedResponseWriter) Close() error {
	if c.zw == nil {
		return nil
	}

	err := c.zw.Close()
	gzipWriterPool.Put(c.zw)
	c.zw = nil

	return err
}

// GzipResponse compresses responses when the request's Accept-Encoding
// allows gzip.
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		compressed := NewCompressedResponseWriter(response)
		defer compressed.Close()

		h.ServeHTTP(compressed, request)
	}

	return http.HandlerFunc(middleware)
}

// UngzipRequest replaces a gzip-encoded request body with its inflated form.
// A body that is not valid gzip is rejected with 400.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		body, err := NewCompressedReader(request.Body)
		if err != nil {
			http.Error(response, "malformed gzip body", http.StatusBadRequest)
			return
		}
		defer body.Close()

		request.Body = body
		request.Header.Del("Content-Encoding")
		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

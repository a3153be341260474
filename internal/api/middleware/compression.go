// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

type compressionAlgorithm int

const (
	algorithmNone compressionAlgorithm = iota
	algorithmGzip
	algorithmBrotli
	algorithmZstd
)

// compressionWriter buffers the response until it crosses minSize, so the
// encoding decision is made before the header goes out. Headers written after
// WriteHeader reaches the real ResponseWriter are ignored by net/http, which
// is why the status is held back until the destination is decided.
type compressionWriter struct {
	http.ResponseWriter
	algorithm compressionAlgorithm
	minSize   int
	level     int

	status  int
	buf     []byte
	writer  io.Writer
	decided bool
}

func (w *compressionWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *compressionWriter) Write(data []byte) (int, error) {
	if w.decided {
		return w.writer.Write(data)
	}

	w.buf = append(w.buf, data...)
	if len(w.buf) >= w.minSize {
		if err := w.decide(true); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

// decide picks the final destination, sends the held-back header, and drains
// the buffer into it.
func (w *compressionWriter) decide(compress bool) error {
	w.decided = true
	w.writer = w.ResponseWriter

	if compress && w.shouldCompress() {
		if err := w.initCompression(); err == nil {
			// The original length no longer applies to the encoded body.
			w.Header().Del("Content-Length")
		}
	}

	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(w.status)

	if len(w.buf) > 0 {
		if _, err := w.writer.Write(w.buf); err != nil {
			return err
		}
		w.buf = nil
	}
	return nil
}

func (w *compressionWriter) shouldCompress() bool {
	contentType := w.Header().Get("Content-Type")
	return strings.Contains(contentType, "text/") ||
		strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "application/javascript")
}

func (w *compressionWriter) initCompression() error {
	switch w.algorithm {
	case algorithmZstd:
		encoder, err := zstd.NewWriter(w.ResponseWriter, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(w.level)))
		if err != nil {
			return err
		}
		w.Header().Set("Content-Encoding", "zstd")
		w.writer = encoder

	case algorithmBrotli:
		w.Header().Set("Content-Encoding", "br")
		w.writer = brotli.NewWriterLevel(w.ResponseWriter, w.level)

	case algorithmGzip:
		gw, err := gzip.NewWriterLevel(w.ResponseWriter, w.level)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.writer = gw
	}

	return nil
}

// errFlusher matches the Flush signature the encoders share.
type errFlusher interface {
	Flush() error
}

func (w *compressionWriter) Flush() {
	if !w.decided {
		if err := w.decide(len(w.buf) >= w.minSize); err != nil {
			return
		}
	}
	if f, ok := w.writer.(errFlusher); ok {
		f.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// finalize sends an under-threshold response as-is and closes any encoder.
func (w *compressionWriter) finalize() error {
	if !w.decided {
		if err := w.decide(false); err != nil {
			return err
		}
	}
	if w.writer == w.ResponseWriter {
		return nil
	}
	if closer, ok := w.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// negotiateAlgorithm picks the best encoding the client accepts.
// Priority: zstd > brotli > gzip.
func negotiateAlgorithm(acceptEncoding string) compressionAlgorithm {
	encodings := parseAcceptEncoding(acceptEncoding)

	if encodings["zstd"] > 0 {
		return algorithmZstd
	}
	if encodings["br"] > 0 {
		return algorithmBrotli
	}
	if encodings["gzip"] > 0 {
		return algorithmGzip
	}

	return algorithmNone
}

func parseAcceptEncoding(acceptEncoding string) map[string]float64 {
	encodings := make(map[string]float64)

	for _, part := range strings.Split(acceptEncoding, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		encoding := part
		qvalue := 1.0

		if idx := strings.Index(part, ";q="); idx != -1 {
			encoding = strings.TrimSpace(part[:idx])
			if q, err := strconv.ParseFloat(strings.TrimSpace(part[idx+3:]), 64); err == nil {
				qvalue = q
			}
		}

		if encoding == "*" {
			encodings["zstd"] = qvalue
			encodings["br"] = qvalue
			encodings["gzip"] = qvalue
			continue
		}
		encodings[encoding] = qvalue
	}

	return encodings
}

// Compress returns a middleware that compresses compressible responses above
// minSize bytes using the best encoding the client accepts.
func Compress(minSize, level int) func(http.Handler) http.Handler {
	if level < 1 {
		level = 1
	}
	if level > 9 {
		level = 9
	}
	if minSize < 0 {
		minSize = 1024
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			algorithm := negotiateAlgorithm(r.Header.Get("Accept-Encoding"))

			if algorithm == algorithmNone {
				next.ServeHTTP(w, r)
				return
			}

			wrapped := &compressionWriter{
				ResponseWriter: w,
				algorithm:      algorithm,
				minSize:        minSize,
				level:          level,
			}

			w.Header().Set("Vary", "Accept-Encoding")

			next.ServeHTTP(wrapped, r)

			wrapped.finalize()
		})
	}
}

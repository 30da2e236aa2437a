package strategy

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
)

// readBody returns the decompressed, UTF-8 body of resp, capped at limit bytes.
//
// The disguise advertises gzip and deflate itself, which turns off the
// transport's transparent decompression, so decoding happens here.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open deflate body: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	raw, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	// Convert legacy encodings (Shift_JIS, windows-1252, ...) using the
	// Content-Type charset or the document's meta tags.
	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return raw, nil //nolint:nilerr // unknown charset: keep the bytes as they are
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return raw, nil //nolint:nilerr // partial decode: keep the bytes as they are
	}
	return decoded, nil
}

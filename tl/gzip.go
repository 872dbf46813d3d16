package tl

import (
	"bytes"
	"compress/gzip"
	"io"
)

// gunzip decompresses a gzip_packed payload, matching the teacher's
// tl_decode.go handling of CRC_gzip_packed.
func gunzip(raw []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// gzipBytes compresses body for constructors that want to send
// gzip_packed payloads (the mirror operation; MTProto allows but does not
// require the client to compress outgoing requests).
func gzipBytes(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

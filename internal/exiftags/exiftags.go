// Package exiftags wraps github.com/barasher/go-exiftool for the template
// engine's `{exiftool:GROUP:TAG}` field (§4.G.1) and the external-tool
// collaborator (§6). An exiftool.Exiftool instance is not goroutine-safe, so
// callers get one Reader per worker — the same discipline util/import.go
// uses for its per-worker instances.
package exiftags

import (
	"fmt"
	"strconv"

	exif "github.com/barasher/go-exiftool"
)

// Reader extracts and flattens exiftool metadata for one worker.
type Reader struct {
	et *exif.Exiftool
}

// NewReader starts one exiftool process with a generous read buffer, the
// way util/import.go's worker sizes its buffer for large RAW/HEIC files.
func NewReader() (*Reader, error) {
	buf := make([]byte, 4096*1024)
	et, err := exif.NewExiftool(exif.Buffer(buf, 2048*1024))
	if err != nil {
		return nil, fmt.Errorf("exiftags: starting exiftool: %w", err)
	}
	return &Reader{et: et}, nil
}

// Close stops the underlying exiftool process.
func (r *Reader) Close() error {
	if r.et == nil {
		return nil
	}
	return r.et.Close()
}

// Tags returns path's metadata flattened to TAG -> stringified value, keyed
// so that `{exiftool:CreateDate}` and (when exiftool is run with grouped
// output) `{exiftool:EXIF:CreateDate}` both resolve against the same map.
func (r *Reader) Tags(path string) (map[string]string, error) {
	if r.et == nil {
		return nil, fmt.Errorf("exiftags: reader not initialized")
	}
	metadata := r.et.ExtractMetadata(path)
	if len(metadata) == 0 {
		return nil, fmt.Errorf("exiftags: no metadata returned for %s", path)
	}
	if metadata[0].Err != nil {
		return nil, fmt.Errorf("exiftags: reading %s: %w", path, metadata[0].Err)
	}

	out := make(map[string]string, len(metadata[0].Fields))
	for k, v := range metadata[0].Fields {
		out[k] = stringify(v)
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

package pedfile

import (
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression indicates how (and whether) a pedigree file is compressed
type Compression uint32

const (
	CompressionDisabled Compression = iota
	CompressionGZIP
	CompressionZStandard
)

func (c Compression) String() string {
	switch c {
	case CompressionDisabled:
		return "CompressionDisabled"
	case CompressionGZIP:
		return "CompressionGZIP"
	case CompressionZStandard:
		return "CompressionZStandard"

	default:
		return "Illegal selection"
	}
}

// CompressionFromPath picks the compression from the file extension.
func CompressionFromPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return CompressionGZIP
	case strings.HasSuffix(path, ".zst"), strings.HasSuffix(path, ".zstd"):
		return CompressionZStandard
	}
	return CompressionDisabled
}

// decompress wraps r according to c. The returned closer releases decoder
// resources; it does not close r.
func decompress(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionGZIP:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, pfx.Err(err)
		}
		return gz, func() { gz.Close() }, nil
	case CompressionZStandard:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, pfx.Err(err)
		}
		return dec, dec.Close, nil
	}

	return r, func() {}, nil
}

// compress wraps w according to c. Closing the returned writer flushes the
// compressed stream but does not close w.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGZIP:
		return gzip.NewWriter(w), nil
	case CompressionZStandard:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return enc, nil
	}

	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

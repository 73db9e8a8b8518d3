package pedfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pedigree"
	"github.com/carbocation/pfx"
)

const gsPrefix = "gs://"

// Open reads the pedigree located at path. Paths starting with gs:// are
// read from Google Cloud Storage with application default credentials.
// Compression is inferred from the extension.
func Open(ctx context.Context, path string, table *pedigree.FrequencyTable) (*pedigree.Pedigree, error) {
	f, err := OpenFile(ctx, path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if err := f.Validate(); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	p, _, err := f.Build(table)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return p, nil
}

// OpenFile decodes the File at path without validating it.
func OpenFile(ctx context.Context, path string) (*File, error) {
	rc, err := openReader(ctx, path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rc.Close()

	r, release, err := decompress(rc, CompressionFromPath(path))
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer release()

	f, err := Decode(r)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return f, nil
}

// Write stores f at a local path, compressing by extension.
func Write(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer out.Close()

	w, err := compress(out, CompressionFromPath(path))
	if err != nil {
		return pfx.Err(err)
	}
	if err := f.Encode(w); err != nil {
		w.Close()
		return pfx.Err(err)
	}
	if err := w.Close(); err != nil {
		return pfx.Err(err)
	}

	if err := out.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func openReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if !strings.HasPrefix(path, gsPrefix) {
		return os.Open(path)
	}

	bucket, object, err := splitGSPath(path)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, pfx.Err(err)
	}

	return &gsReader{Reader: r, client: client}, nil
}

func splitGSPath(path string) (bucket, object string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(path, gsPrefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%q is not of the form gs://bucket/object", path)
	}
	return parts[0], parts[1], nil
}

// gsReader closes the storage client along with the object reader.
type gsReader struct {
	*storage.Reader
	client *storage.Client
}

func (g *gsReader) Close() error {
	err := g.Reader.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}

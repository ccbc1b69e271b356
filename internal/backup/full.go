package backup

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Source is a database that can be copied while in use.
type Source interface {
	// Snapshot writes a consistent image of the database to w.
	Snapshot(w io.Writer) (int64, error)
	// Count returns the number of persisted objects.
	Count() (int, error)
}

// Options configures a backup.
type Options struct {
	// OutputPath is the path of the backup file.
	OutputPath string
	// Compress enables gzip compression of the image.
	Compress bool
}

// Full writes a backup of src to opts.OutputPath. The file appears
// atomically once complete.
func Full(src Source, opts *Options) (*Stats, error) {
	if opts == nil || opts.OutputPath == "" {
		return nil, ErrOutputPathEmpty
	}
	start := time.Now()

	count, err := src.Count()
	if err != nil {
		return nil, fmt.Errorf("backup: count objects: %w", err)
	}

	var image bytes.Buffer
	if _, err := src.Snapshot(&image); err != nil {
		return nil, fmt.Errorf("backup: snapshot: %w", err)
	}

	header := NewHeader()
	header.ObjectCount = uint32(count)
	header.Checksum = crc32.ChecksumIEEE(image.Bytes())
	header.SetCompressed(opts.Compress)

	stats := &Stats{
		ObjectCount: count,
		TotalBytes:  int64(image.Len()),
	}

	payload := image.Bytes()
	if opts.Compress {
		var zbuf bytes.Buffer
		zw := gzip.NewWriter(&zbuf)
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("backup: compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("backup: compress: %w", err)
		}
		payload = zbuf.Bytes()
		stats.CompressedBytes = int64(len(payload))
	}

	if err := writeAtomic(opts.OutputPath, func(w io.Writer) error {
		if _, err := header.WriteTo(w); err != nil {
			return err
		}
		_, err := w.Write(payload)
		return err
	}); err != nil {
		return nil, fmt.Errorf("backup: write %s: %w", opts.OutputPath, err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// writeAtomic writes a temporary file next to path and renames it.
func writeAtomic(path string, fill func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

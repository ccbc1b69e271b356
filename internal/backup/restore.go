package backup

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"time"
)

// RestoreOptions configures a restore.
type RestoreOptions struct {
	// InputPath is the path of the backup file.
	InputPath string
	// TargetPath is the database file to write.
	TargetPath string
}

// Verify reads a backup file and checks its header and checksum.
func Verify(path string) (*Header, error) {
	if path == "" {
		return nil, ErrInputPathEmpty
	}
	header, _, err := load(path)
	return header, err
}

// Restore verifies the backup and writes its image to opts.TargetPath,
// replacing any existing file.
func Restore(opts *RestoreOptions) (*Stats, error) {
	if opts == nil || opts.InputPath == "" {
		return nil, ErrInputPathEmpty
	}
	if opts.TargetPath == "" {
		return nil, ErrTargetPathEmpty
	}
	start := time.Now()

	header, image, err := load(opts.InputPath)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(opts.TargetPath, func(w io.Writer) error {
		_, err := w.Write(image)
		return err
	}); err != nil {
		return nil, fmt.Errorf("backup: write %s: %w", opts.TargetPath, err)
	}

	return &Stats{
		ObjectCount: int(header.ObjectCount),
		TotalBytes:  int64(len(image)),
		Duration:    time.Since(start),
	}, nil
}

// load reads the header and the uncompressed image of a backup file.
func load(path string) (*Header, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("backup: open %s: %w", path, err)
	}
	defer f.Close()

	header, err := ReadHeader(f)
	if err != nil {
		return nil, nil, err
	}

	var r io.Reader = f
	if header.IsCompressed() {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		defer zr.Close()
		r = zr
	}

	var image bytes.Buffer
	if _, err := io.Copy(&image, r); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if crc32.ChecksumIEEE(image.Bytes()) != header.Checksum {
		return nil, nil, ErrChecksumMismatch
	}
	return header, image.Bytes(), nil
}

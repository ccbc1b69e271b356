package backup

import (
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// Backup format constants.
const (
	// Version is the current backup format version.
	Version uint32 = 1

	// HeaderSize is the size of the backup header in bytes.
	HeaderSize = 32
)

// Magic is the magic number of backup files.
var Magic = [4]byte{'N', 'S', 'P', 'B'}

// Backup errors.
var (
	ErrOutputPathEmpty   = errors.New("backup: output path is empty")
	ErrInputPathEmpty    = errors.New("backup: input path is empty")
	ErrTargetPathEmpty   = errors.New("backup: target path is empty")
	ErrInvalidBackup     = errors.New("backup: invalid backup file")
	ErrInvalidMagic      = errors.New("backup: invalid magic number")
	ErrUnsupportedFormat = errors.New("backup: unsupported format version")
	ErrChecksumMismatch  = errors.New("backup: checksum mismatch")
)

// Header flags.
const (
	// FlagCompressed marks a gzip-compressed image.
	FlagCompressed uint32 = 1 << iota
)

// Header is the fixed-size prefix of a backup file.
type Header struct {
	Magic       [4]byte
	Version     uint32
	Timestamp   int64
	Flags       uint32
	ObjectCount uint32
	Checksum    uint32
}

// NewHeader creates a header stamped with the current time.
func NewHeader() *Header {
	return &Header{
		Magic:     Magic,
		Version:   Version,
		Timestamp: time.Now().Unix(),
	}
}

// IsCompressed reports whether the image is compressed.
func (h *Header) IsCompressed() bool {
	return h.Flags&FlagCompressed != 0
}

// SetCompressed sets the compressed flag.
func (h *Header) SetCompressed(compressed bool) {
	if compressed {
		h.Flags |= FlagCompressed
	} else {
		h.Flags &^= FlagCompressed
	}
}

// Time returns the creation time.
func (h *Header) Time() time.Time {
	return time.Unix(h.Timestamp, 0)
}

// WriteTo writes the header in its binary layout.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.Timestamp))
	binary.LittleEndian.PutUint32(buf[16:20], h.Flags)
	binary.LittleEndian.PutUint32(buf[20:24], h.ObjectCount)
	binary.LittleEndian.PutUint32(buf[24:28], h.Checksum)
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadHeader reads and validates a header.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, ErrInvalidBackup
	}

	h := &Header{}
	copy(h.Magic[:], buf[0:4])
	if h.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	if h.Version != Version {
		return nil, ErrUnsupportedFormat
	}
	h.Timestamp = int64(binary.LittleEndian.Uint64(buf[8:16]))
	h.Flags = binary.LittleEndian.Uint32(buf[16:20])
	h.ObjectCount = binary.LittleEndian.Uint32(buf[20:24])
	h.Checksum = binary.LittleEndian.Uint32(buf[24:28])
	return h, nil
}

// Stats describes a finished backup or restore.
type Stats struct {
	ObjectCount     int
	TotalBytes      int64
	CompressedBytes int64
	Duration        time.Duration
}

// CompressionRatio returns the fraction of bytes saved by compression.
func (s *Stats) CompressionRatio() float64 {
	if s.TotalBytes == 0 || s.CompressedBytes == 0 {
		return 0
	}
	return 1 - float64(s.CompressedBytes)/float64(s.TotalBytes)
}

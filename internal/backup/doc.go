// Package backup writes and restores snapshots of the persisted address
// book.
//
// # Overview
//
// The bolt database under storage.path holds every certificate and
// membership change made through ModProps and ModLinkAtt. A backup is a
// consistent copy of that file taken in a read transaction, so it can be
// made while the server runs.
//
// # Backup Format
//
// A backup file is a 32-byte header followed by the database image,
// gzip-compressed when the header says so:
//
//	Bytes 0-3:   Magic number ("NSPB")
//	Bytes 4-7:   Version (uint32)
//	Bytes 8-15:  Timestamp (int64, Unix seconds)
//	Bytes 16-19: Flags (uint32)
//	Bytes 20-23: Object count (uint32)
//	Bytes 24-27: Checksum (uint32, CRC32 of the uncompressed image)
//	Bytes 28-31: Reserved
//
// # Creating Backups
//
//	stats, err := backup.Full(db, &backup.Options{
//	    OutputPath: "/backup/nspid-20261019.bak",
//	    Compress:   true,
//	})
//
// # Restoring Backups
//
// Restore writes the image to the database path. The server must be
// stopped, since bolt holds an exclusive lock on the open file.
//
//	stats, err := backup.Restore(&backup.RestoreOptions{
//	    InputPath:  "/backup/nspid-20261019.bak",
//	    TargetPath: "/var/lib/nspid/nspid.db",
//	})
package backup

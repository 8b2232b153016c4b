package store

import "errors"

var (
	// ErrEngineNotOpen is returned when an engine operation runs outside the
	// open-to-close window.
	ErrEngineNotOpen = errors.New("engine is not open; call Open() before performing operations")
	// ErrEngineOpenFailed indicates opening the backend failed.
	ErrEngineOpenFailed = errors.New("engine open failed")
	// ErrEngineWriteFailed indicates a bulk update could not be committed.
	ErrEngineWriteFailed = errors.New("engine write failed")
	// ErrEngineDeleteFailed indicates a predicate delete could not be committed.
	ErrEngineDeleteFailed = errors.New("engine delete failed")
	// ErrEngineReadFailed indicates reading from the backend failed.
	ErrEngineReadFailed = errors.New("engine read failed")
	// ErrBucketNotFound is returned when the content bucket does not exist.
	ErrBucketNotFound = errors.New("content bucket not found")
	// ErrDiskPathResolveFailed indicates database path resolution failed.
	ErrDiskPathResolveFailed = errors.New("disk path resolve failed")
	// ErrDiskPathIsDirectory is returned when the database path points at a directory.
	ErrDiskPathIsDirectory = errors.New("disk path is a directory")
	// ErrCodecEncodeFailed indicates encoding a record envelope failed.
	ErrCodecEncodeFailed = errors.New("record encode failed")
	// ErrCodecDecodeFailed indicates decoding a record envelope failed.
	ErrCodecDecodeFailed = errors.New("record decode failed")
)

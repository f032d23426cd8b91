package zimtype

import "errors"

// Sentinel errors for archive decoding.
var (
	// ErrShortRead is returned when the source ends before a required read completes.
	ErrShortRead = errors.New("zim: short read")

	// ErrInvalidMagicNumber is returned when the header does not start with the archive magic.
	ErrInvalidMagicNumber = errors.New("zim: invalid magic number")

	// ErrInvalidCompression is returned when a cluster tag carries an unknown compression code.
	ErrInvalidCompression = errors.New("zim: invalid compression")

	// ErrTooManyBlobs is returned when a cluster offset table claims more entries than allowed.
	ErrTooManyBlobs = errors.New("zim: too many blobs in cluster")

	// ErrInvalidMimeListBounds is returned when the MIME list region is empty or inverted.
	ErrInvalidMimeListBounds = errors.New("zim: invalid mime list bounds")

	// ErrMimeListNotTerminated is returned when a MIME entry runs off the end of its region.
	ErrMimeListNotTerminated = errors.New("zim: mime list not terminated")

	// ErrInvalidUTF8 is returned when a MIME type, URL or title is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("zim: invalid utf-8")

	// ErrOffsetsDeferred is returned when blob offsets are requested from a
	// compressed cluster whose offset table was not decoded.
	ErrOffsetsDeferred = errors.New("zim: cluster offsets deferred")

	// ErrIndexOutOfRange is returned when a dirent or cluster index is outside its pointer table.
	ErrIndexOutOfRange = errors.New("zim: index out of range")

	// ErrNoMainPage is returned when the header does not name a main page.
	ErrNoMainPage = errors.New("zim: no main page")

	// ErrDecompression is returned when a compressed cluster payload cannot be opened.
	ErrDecompression = errors.New("zim: decompression failed")
)

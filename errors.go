package zim

import "github.com/meigma/zim/internal/zimtype"

// Errors re-exported from internal/zimtype.
var (
	// ErrShortRead is returned when the source ends before a required read completes.
	ErrShortRead = zimtype.ErrShortRead

	// ErrInvalidMagicNumber is returned when the source is not a ZIM archive.
	ErrInvalidMagicNumber = zimtype.ErrInvalidMagicNumber

	// ErrInvalidCompression is returned for a cluster tag with an unknown compression code.
	ErrInvalidCompression = zimtype.ErrInvalidCompression

	// ErrTooManyBlobs is returned when a cluster offset table exceeds MaxBlobs entries.
	ErrTooManyBlobs = zimtype.ErrTooManyBlobs

	// ErrInvalidMimeListBounds is returned when the header describes an empty or inverted MIME region.
	ErrInvalidMimeListBounds = zimtype.ErrInvalidMimeListBounds

	// ErrMimeListNotTerminated is returned when a MIME entry runs past its region.
	ErrMimeListNotTerminated = zimtype.ErrMimeListNotTerminated

	// ErrInvalidUTF8 is returned when a MIME type, URL or title is not valid UTF-8.
	ErrInvalidUTF8 = zimtype.ErrInvalidUTF8

	// ErrOffsetsDeferred is returned when blob offsets of an undecoded compressed cluster are requested.
	ErrOffsetsDeferred = zimtype.ErrOffsetsDeferred

	// ErrIndexOutOfRange is returned when a dirent or cluster index is outside its pointer table.
	ErrIndexOutOfRange = zimtype.ErrIndexOutOfRange

	// ErrNoMainPage is returned by MainPage when the header names no main page.
	ErrNoMainPage = zimtype.ErrNoMainPage

	// ErrDecompression is returned when a compressed cluster payload cannot be decoded.
	ErrDecompression = zimtype.ErrDecompression
)

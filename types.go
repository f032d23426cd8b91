package zim

import (
	"github.com/meigma/zim/internal/format"
	"github.com/meigma/zim/internal/zimtype"
)

// Re-export types from internal/zimtype for the public API.
type (
	// Header is the fixed 80-byte archive header.
	Header = zimtype.Header

	// Cluster describes one cluster and, when decoded, its blob offset table.
	Cluster = zimtype.Cluster

	// Compression identifies the codec used for a cluster payload.
	Compression = zimtype.Compression

	// TableState records whether a cluster's offset table was decoded.
	TableState = zimtype.TableState

	// Dirent is one decoded directory entry.
	Dirent = zimtype.Dirent

	// DirentData is the variant payload of a dirent.
	DirentData = zimtype.DirentData

	// DirentKind identifies the variant of a dirent payload.
	DirentKind = zimtype.DirentKind
)

// Re-export format constants.
const (
	MagicNumber = zimtype.MagicNumber
	HeaderSize  = zimtype.HeaderSize
	NoPage      = zimtype.NoPage
	MaxBlobs    = format.MaxBlobs

	RedirectMimeType   = zimtype.RedirectMimeType
	LinkTargetMimeType = zimtype.LinkTargetMimeType
	DeletedMimeType    = zimtype.DeletedMimeType
)

// Re-export compression constants.
const (
	CompressionNone  = zimtype.CompressionNone
	CompressionZip   = zimtype.CompressionZip
	CompressionBzip2 = zimtype.CompressionBzip2
	CompressionLzma  = zimtype.CompressionLzma
	CompressionZstd  = zimtype.CompressionZstd
)

// Re-export table states.
const (
	TableDecoded  = zimtype.TableDecoded
	TableDeferred = zimtype.TableDeferred
)

// Re-export dirent kinds.
const (
	KindContent    = zimtype.KindContent
	KindRedirect   = zimtype.KindRedirect
	KindLinkTarget = zimtype.KindLinkTarget
	KindDeleted    = zimtype.KindDeleted
)

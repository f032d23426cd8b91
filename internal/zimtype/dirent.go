package zimtype

// Reserved MIME-type codes that select a non-content dirent variant.
const (
	RedirectMimeType   uint16 = 0xFFFF
	LinkTargetMimeType uint16 = 0xFFFE
	DeletedMimeType    uint16 = 0xFFFD
)

// DirentKind identifies the variant of a dirent payload.
type DirentKind uint8

const (
	KindContent DirentKind = iota
	KindRedirect
	KindLinkTarget
	KindDeleted
)

// KindForMimeType maps a dirent MIME-type code to its variant.
// Any code other than the three reserved values selects KindContent.
func KindForMimeType(code uint16) DirentKind {
	switch code {
	case RedirectMimeType:
		return KindRedirect
	case LinkTargetMimeType:
		return KindLinkTarget
	case DeletedMimeType:
		return KindDeleted
	default:
		return KindContent
	}
}

// String returns the name of the dirent kind.
func (k DirentKind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindRedirect:
		return "redirect"
	case KindLinkTarget:
		return "link-target"
	case KindDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DirentData is the variant payload of a dirent.
//
// ClusterIndex and BlobIndex are set only for KindContent;
// RedirectIndex only for KindRedirect. The other kinds carry no payload.
type DirentData struct {
	Kind          DirentKind
	ClusterIndex  uint32
	BlobIndex     uint32
	RedirectIndex uint32
}

// Dirent is one decoded directory entry.
type Dirent struct {
	// MimeType is the raw code. For content dirents it indexes the
	// archive MIME list; validity against that list is not checked.
	MimeType uint16

	// ExtraLen is the length of Parameter.
	ExtraLen uint8

	// Namespace is the raw namespace byte. See NamespaceRune.
	Namespace byte

	Revision  uint32
	Data      DirentData
	URL       string
	Title     string
	Parameter []byte
}

// NamespaceRune interprets the namespace byte as a character.
//
// Bytes 0x00-0x7F map to ASCII. Bytes 0x80-0xFF are mapped to the code
// point with the same value (Latin-1); the format does not define them.
func (d *Dirent) NamespaceRune() rune {
	return rune(d.Namespace)
}

// IsContent reports whether the dirent points at a blob.
func (d *Dirent) IsContent() bool { return d.Data.Kind == KindContent }

// IsRedirect reports whether the dirent redirects to another dirent.
func (d *Dirent) IsRedirect() bool { return d.Data.Kind == KindRedirect }

// IsLinkTarget reports whether the dirent is a link target.
func (d *Dirent) IsLinkTarget() bool { return d.Data.Kind == KindLinkTarget }

// IsDeleted reports whether the dirent is a tombstone.
func (d *Dirent) IsDeleted() bool { return d.Data.Kind == KindDeleted }

// EffectiveTitle returns the title, or the URL when the stored title is empty.
func (d *Dirent) EffectiveTitle() string {
	if d.Title == "" {
		return d.URL
	}
	return d.Title
}

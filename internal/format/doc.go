// Package format decodes the binary structures of a ZIM archive.
//
// Every decoder reads from an io.Reader (or io.ReadSeeker when it must
// position itself) and consumes exactly the bytes of the structure it
// decodes. All integers are little-endian. A read that ends early is
// reported as zimtype.ErrShortRead; decoders never return partial results.
package format

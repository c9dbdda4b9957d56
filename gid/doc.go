// Package gid converts storage identifiers into opaque, type-tagged external
// identifiers and back.
//
// An external identifier has the form
//
//	<namespace>/<TypeTag>/<digits>
//
// where digits is the decimal rendering of the first 13 hex characters
// (52 bits) of the row's UUID, zero padded to at least 13 digits. The
// projection is lossy: the remaining 76 bits are discarded and Decode never
// recovers the UUID, only the 13-character prefix that a storage query must
// match on.
//
// Type tags match ^[A-Z][A-Za-z0-9]*$. The encoders refuse any other tag,
// so every identifier they produce decodes back to the same tag.
//
// Integer-keyed entities use the same text form with the integer itself as
// the digit run (see EncodeInt).
package gid

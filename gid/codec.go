package gid

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultNamespace is the namespace used when none is configured.
const DefaultNamespace = "gid://invoicekit"

const (
	// PrefixLength is the number of hex characters of a UUID kept by a projection.
	PrefixLength = 13

	// MinDigits and MaxDigits bound the decimal digit run of an external identifier.
	MinDigits = 13
	MaxDigits = 16

	// MaxProjection is the largest value representable in PrefixLength hex characters.
	MaxProjection uint64 = 1<<52 - 1
)

var typeTagPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// Codec encodes and decodes external identifiers for one namespace.
//
// Contract:
// - Concurrency: a Codec is immutable and safe for concurrent use.
// - Errors: every parse failure unwraps to ErrMalformedIdentifier.
type Codec struct {
	namespace string
}

// ID is a decoded external identifier.
type ID struct {
	Namespace  string
	Type       string
	Projection string

	value uint64
}

// New creates a codec for namespace.
func New(namespace string) (*Codec, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" || strings.HasSuffix(namespace, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	return &Codec{namespace: namespace}, nil
}

// MustNew is like New but panics on an invalid namespace.
func MustNew(namespace string) *Codec {
	c, err := New(namespace)
	if err != nil {
		panic(err)
	}
	return c
}

// Namespace returns the namespace this codec writes and accepts.
func (c *Codec) Namespace() string {
	return c.namespace
}

// ValidType reports whether typ is an acceptable type tag.
func ValidType(typ string) bool {
	return typeTagPattern.MatchString(typ)
}

// Encode returns the external identifier for a UUID-keyed row.
// Same inputs always yield the same output.
//
// typ must satisfy ValidType; Encode panics otherwise, because an
// identifier with such a tag could never be decoded. Callers holding an
// unchecked tag use EncodeString or EncodeInt, which return ErrInvalidType.
func (c *Codec) Encode(typ string, id uuid.UUID) string {
	if !ValidType(typ) {
		panic(fmt.Errorf("%w: %q", ErrInvalidType, typ))
	}
	return c.namespace + "/" + typ + "/" + Project(id)
}

// EncodeString parses a textual UUID (hyphenated or not) and encodes it.
func (c *Codec) EncodeString(typ string, id string) (string, error) {
	if !ValidType(typ) {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", malformed(id, "not a uuid")
	}
	return c.Encode(typ, u), nil
}

// EncodeInt returns the external identifier for an integer-keyed row.
func (c *Codec) EncodeInt(typ string, n int64) (string, error) {
	if !ValidType(typ) {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if n < 0 || uint64(n) > MaxProjection {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	return c.namespace + "/" + typ + "/" + formatProjection(uint64(n)), nil
}

// Decode parses an external identifier. The returned projection identifies a
// 13-character UUID prefix, never the full UUID.
func (c *Codec) Decode(s string) (ID, error) {
	rest, ok := strings.CutPrefix(s, c.namespace+"/")
	if !ok {
		return ID{}, malformed(s, "unknown namespace")
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return ID{}, malformed(s, "wrong segment count")
	}
	typ, digits := parts[0], parts[1]
	if !ValidType(typ) {
		return ID{}, malformed(s, "invalid type tag")
	}
	v, err := parseProjection(s, digits)
	if err != nil {
		return ID{}, err
	}
	return ID{Namespace: c.namespace, Type: typ, Projection: digits, value: v}, nil
}

// IsType reports whether s decodes to an identifier of type typ.
// It never fails; malformed input reports false.
func (c *Codec) IsType(s, typ string) bool {
	id, err := c.Decode(s)
	if err != nil {
		return false
	}
	return id.Type == typ
}

// Prefix returns the 13-character lowercase hex prefix of the projection.
func (id ID) Prefix() string {
	return fmt.Sprintf("%013x", id.value)
}

// Int returns the projection as an integer, for integer-keyed types.
func (id ID) Int() int64 {
	return int64(id.value)
}

// String re-renders the identifier.
func (id ID) String() string {
	return id.Namespace + "/" + id.Type + "/" + id.Projection
}

// Project returns the decimal projection of id: its first 13 hex characters
// read as an integer, zero padded to 13 digits.
func Project(id uuid.UUID) string {
	return formatProjection(top52(id))
}

// Prefix returns the first 13 hex characters of id, hyphens stripped.
func Prefix(id uuid.UUID) string {
	return fmt.Sprintf("%013x", top52(id))
}

// ProjectionToPrefix converts a decimal projection back into its 13-character
// lowercase hex prefix.
func ProjectionToPrefix(projection string) (string, error) {
	v, err := parseProjection(projection, projection)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%013x", v), nil
}

// PrefixToProjection converts a 13-character hex prefix into its decimal projection.
func PrefixToProjection(prefix string) (string, error) {
	if len(prefix) != PrefixLength {
		return "", malformed(prefix, "prefix must be 13 hex characters")
	}
	v, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		return "", malformed(prefix, "non-hex prefix")
	}
	return formatProjection(v), nil
}

func top52(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[:8]) >> 12
}

func formatProjection(v uint64) string {
	return fmt.Sprintf("%0*d", MinDigits, v)
}

func parseProjection(input, digits string) (uint64, error) {
	if len(digits) < MinDigits || len(digits) > MaxDigits {
		return 0, malformed(input, "digit run must be 13 to 16 digits")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, malformed(input, "non-numeric payload")
		}
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || v > MaxProjection {
		return 0, malformed(input, "projection out of range")
	}
	return v, nil
}

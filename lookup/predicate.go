package lookup

import (
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/jonwraymond/invoicekit/gid"
)

// Kind distinguishes prefix predicates from integer predicates.
type Kind int

const (
	// KindPrefix matches any UUID starting with Prefix.
	KindPrefix Kind = iota
	// KindInteger matches an integer primary key exactly.
	KindInteger
)

func (k Kind) String() string {
	switch k {
	case KindPrefix:
		return "prefix"
	case KindInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// Predicate is the value a storage query filters on.
type Predicate struct {
	Kind Kind

	// Type is the type tag carried by the input, empty for bare inputs.
	Type string

	// Prefix is the 13-character lowercase hex prefix (KindPrefix).
	Prefix string

	// Int is the integer key (KindInteger).
	Int int64
}

// Projection returns the decimal projection matching this predicate, suitable
// for an equality match on an indexed projection column.
func (p Predicate) Projection() string {
	if p.Kind == KindInteger {
		return fmt.Sprintf("%0*d", gid.MinDigits, p.Int)
	}
	projection, err := gid.PrefixToProjection(p.Prefix)
	if err != nil {
		return ""
	}
	return projection
}

// HyphenatedPrefix renders the prefix as it appears at the start of a
// canonical hyphenated UUID ("xxxxxxxx-xxxx-x").
func (p Predicate) HyphenatedPrefix() string {
	if len(p.Prefix) != gid.PrefixLength {
		return p.Prefix
	}
	return p.Prefix[:8] + "-" + p.Prefix[8:12] + "-" + p.Prefix[12:]
}

// LikePattern returns a SQL LIKE pattern for hyphenated UUID text columns.
func (p Predicate) LikePattern() string {
	return p.HyphenatedPrefix() + "%"
}

// Matches reports whether id satisfies a prefix predicate.
func (p Predicate) Matches(id uuid.UUID) bool {
	return p.Kind == KindPrefix && gid.Prefix(id) == p.Prefix
}

func (p Predicate) String() string {
	if p.Kind == KindInteger {
		return "int:" + strconv.FormatInt(p.Int, 10)
	}
	return "prefix:" + p.Prefix
}

// Builder builds predicates and formats rows for one identifier codec.
//
// Contract:
// - Concurrency: a Builder is immutable after construction and safe for concurrent use.
// - Errors: Predicate failures unwrap to gid.ErrMalformedIdentifier.
type Builder struct {
	codec        *gid.Codec
	integerTypes mapset.Set[string]
}

// NewBuilder creates a builder. integerTypes lists the type tags whose
// storage key is a small integer rather than a UUID.
func NewBuilder(codec *gid.Codec, integerTypes ...string) *Builder {
	return &Builder{
		codec:        codec,
		integerTypes: mapset.NewSet(integerTypes...),
	}
}

// Codec returns the builder's identifier codec.
func (b *Builder) Codec() *gid.Codec {
	return b.codec
}

// IsIntegerType reports whether typ is keyed by an integer.
func (b *Builder) IsIntegerType(typ string) bool {
	return b.integerTypes.Contains(typ)
}

// Predicate normalizes raw into a query predicate. raw may be an external
// identifier, a bare decimal projection, or a legacy UUID (hyphenated or
// not); for integer-keyed types a bare integer is also accepted.
//
// A non-empty expectedType must match the type of an external identifier.
func (b *Builder) Predicate(expectedType, raw string) (Predicate, error) {
	raw = strings.TrimSpace(raw)

	if strings.Contains(raw, "/") {
		id, err := b.codec.Decode(raw)
		if err != nil {
			return Predicate{}, err
		}
		if expectedType != "" && id.Type != expectedType {
			return Predicate{}, &gid.ParseError{Input: raw, Reason: "expected type " + expectedType}
		}
		if b.IsIntegerType(id.Type) {
			return Predicate{Kind: KindInteger, Type: id.Type, Int: id.Int()}, nil
		}
		return Predicate{Kind: KindPrefix, Type: id.Type, Prefix: id.Prefix()}, nil
	}

	if b.IsIntegerType(expectedType) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 || uint64(n) > gid.MaxProjection {
			return Predicate{}, &gid.ParseError{Input: raw, Reason: "not an integer key"}
		}
		return Predicate{Kind: KindInteger, Int: n}, nil
	}

	if isDigits(raw) && len(raw) >= gid.MinDigits && len(raw) <= gid.MaxDigits {
		prefix, err := gid.ProjectionToPrefix(raw)
		if err != nil {
			return Predicate{}, err
		}
		return Predicate{Kind: KindPrefix, Prefix: prefix}, nil
	}

	if len(raw) == 32 || len(raw) == 36 {
		if u, err := uuid.Parse(raw); err == nil {
			return Predicate{Kind: KindPrefix, Prefix: gid.Prefix(u)}, nil
		}
	}

	return Predicate{}, &gid.ParseError{Input: raw, Reason: "unrecognized identifier"}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

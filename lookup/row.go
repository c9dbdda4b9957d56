package lookup

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonwraymond/invoicekit/gid"
)

// IDField is the primary key column of every row.
const IDField = "id"

// Row is a storage row keyed by column name.
type Row map[string]any

// ForeignKeys maps a foreign-key field name to the type tag of the row it
// references, e.g. {"customer_id": "Customer"}.
type ForeignKeys map[string]string

// FormatRow returns a shallow copy of row with its id, and every declared
// foreign key present in the row, replaced by external identifiers.
// Absent or nil fields pass through unchanged, as do values that cannot be
// encoded. FormatRow never fails.
func (b *Builder) FormatRow(row Row, typ string, fks ForeignKeys) Row {
	if row == nil {
		return nil
	}

	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}

	if v, ok := row[IDField]; ok && v != nil {
		if encoded, ok := b.encodeValue(typ, v); ok {
			out[IDField] = encoded
		}
	}

	for field, fkType := range fks {
		v, ok := row[field]
		if !ok || v == nil {
			continue
		}
		if encoded, ok := b.encodeValue(fkType, v); ok {
			out[field] = encoded
		}
	}

	return out
}

// FormatRows applies FormatRow to every row, preserving order.
func (b *Builder) FormatRows(rows []Row, typ string, fks ForeignKeys) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = b.FormatRow(row, typ, fks)
	}
	return out
}

func (b *Builder) encodeValue(typ string, v any) (string, bool) {
	if !gid.ValidType(typ) {
		return "", false
	}
	if b.IsIntegerType(typ) {
		n, ok := asInt(v)
		if !ok {
			return "", false
		}
		s, err := b.codec.EncodeInt(typ, n)
		return s, err == nil
	}

	switch x := v.(type) {
	case uuid.UUID:
		return b.codec.Encode(typ, x), true
	case *uuid.UUID:
		if x == nil {
			return "", false
		}
		return b.codec.Encode(typ, *x), true
	case uuid.NullUUID:
		if !x.Valid {
			return "", false
		}
		return b.codec.Encode(typ, x.UUID), true
	case string:
		s, err := b.codec.EncodeString(typ, x)
		return s, err == nil
	case []byte:
		s, err := b.codec.EncodeString(typ, string(x))
		return s, err == nil
	default:
		return "", false
	}
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return fromUint(x)
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func fromUint(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

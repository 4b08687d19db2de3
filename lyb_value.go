package yangcontext

import (
	"sort"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// The leaf value body is preceded by one type tag byte:
// low 5 bits carry the base type, bit 7 the default flag, bit 6 the
// user-type flag and bit 5 the unresolved-reference flag.
const (
	lybValDefault    = 0x80
	lybValUserType   = 0x40
	lybValUnresolved = 0x20
	lybValTypeMask   = 0x1F
)

const (
	lybTypeInt8 = iota
	lybTypeInt16
	lybTypeInt32
	lybTypeInt64
	lybTypeUint8
	lybTypeUint16
	lybTypeUint32
	lybTypeUint64
	lybTypeDec64
	lybTypeBool
	lybTypeEmpty
	lybTypeString
	lybTypeBinary
	lybTypeEnum
	lybTypeBits
	lybTypeIdentityref
	lybTypeInstanceID
	lybTypeLeafref
	lybTypeUnion
)

var lybTypeOf = map[yang.TypeKind]int{
	yang.Yint8:               lybTypeInt8,
	yang.Yint16:              lybTypeInt16,
	yang.Yint32:              lybTypeInt32,
	yang.Yint64:              lybTypeInt64,
	yang.Yuint8:              lybTypeUint8,
	yang.Yuint16:             lybTypeUint16,
	yang.Yuint32:             lybTypeUint32,
	yang.Yuint64:             lybTypeUint64,
	yang.Ydecimal64:          lybTypeDec64,
	yang.Ybool:               lybTypeBool,
	yang.Yempty:              lybTypeEmpty,
	yang.Ystring:             lybTypeString,
	yang.Ybinary:             lybTypeBinary,
	yang.Yenum:               lybTypeEnum,
	yang.Ybits:               lybTypeBits,
	yang.Yidentityref:        lybTypeIdentityref,
	yang.YinstanceIdentifier: lybTypeInstanceID,
	yang.Yleafref:            lybTypeLeafref,
	yang.Yunion:              lybTypeUnion,
}

var lybIntWidth = map[int]int{
	lybTypeInt8:   1,
	lybTypeInt16:  2,
	lybTypeInt32:  4,
	lybTypeInt64:  8,
	lybTypeUint8:  1,
	lybTypeUint16: 2,
	lybTypeUint32: 4,
	lybTypeUint64: 8,
}

// enumWidth picks the narrowest index width for the enum cardinality.
func enumWidth(count int) int {
	switch {
	case count <= 0x100:
		return 1
	case count <= 0x10000:
		return 2
	case count <= 0x1000000:
		return 3
	default:
		return 4
	}
}

// bitsSize returns the bitmap size of a bits type.
func bitsSize(typ *yang.YangType) int {
	max := int64(-1)
	for _, pos := range typ.Bit.NameMap() {
		if pos > max {
			max = pos
		}
	}
	return int(max/8) + 1
}

// valueAsInt converts a stored integer leaf value to its wire form.
func valueAsInt(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case int8:
		return uint64(int64(n)), true
	case int16:
		return uint64(int64(n)), true
	case int32:
		return uint64(int64(n)), true
	case int64:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

// encodeValue writes the type tag and the binary body of the leaf value.
func (c *Context) encodeValue(w *lybWriter, leaf *DataLeaf) error {
	schema := leaf.schema
	typ := schema.Type
	if typ == nil {
		return Errorf(EInt, "leaf %q has no type", schema.Name)
	}
	code, ok := lybTypeOf[typ.Kind]
	if !ok {
		return Errorf(EInval, "type %q of %q cannot be encoded", typ.Name, schema.Name)
	}
	tag := byte(code)
	if leaf.IsDefault() {
		tag |= lybValDefault
	}
	plugin := c.lookupTypePlugin(schema)
	if plugin != nil {
		tag |= lybValUserType
	}
	switch code {
	case lybTypeInstanceID, lybTypeLeafref:
		tag |= lybValUnresolved
	case lybTypeUnion:
		if unionHasReference(typ) {
			tag |= lybValUnresolved
		}
	}
	if err := w.writeByte(tag); err != nil {
		return err
	}
	if plugin != nil {
		canonical, err := plugin.Canonical(leaf.value)
		if err != nil {
			return WrapErrorf(EInval, err, "user type %q", typ.Name)
		}
		return w.writeString(canonical)
	}
	switch code {
	case lybTypeInt8, lybTypeInt16, lybTypeInt32, lybTypeInt64,
		lybTypeUint8, lybTypeUint16, lybTypeUint32, lybTypeUint64:
		wire, ok := valueAsInt(leaf.value)
		if !ok {
			return Errorf(EInval, "leaf %q holds no numeric value", schema.Name)
		}
		return w.writeUint64n(wire, lybIntWidth[code])
	case lybTypeDec64:
		number, ok := leaf.value.(yang.Number)
		if !ok {
			return Errorf(EInval, "leaf %q holds no decimal64 value", schema.Name)
		}
		scaled := int64(number.Value)
		if number.Kind == yang.Negative {
			scaled = -scaled
		}
		return w.writeUint64n(uint64(scaled), 8)
	case lybTypeBool:
		b := byte(0)
		if v, ok := leaf.value.(bool); ok && v {
			b = 1
		}
		return w.writeByte(b)
	case lybTypeEmpty:
		return nil
	case lybTypeString, lybTypeBinary,
		lybTypeIdentityref, lybTypeInstanceID, lybTypeLeafref, lybTypeUnion:
		return w.writeString(leaf.ValueString())
	case lybTypeEnum:
		names := typ.Enum.Names()
		value := leaf.ValueString()
		index := -1
		for i := range names {
			if names[i] == value {
				index = i
				break
			}
		}
		if index < 0 {
			return Errorf(EInval, "enum %q not found in %q", value, schema.Name)
		}
		return w.writeUint64n(uint64(index), enumWidth(len(names)))
	case lybTypeBits:
		bitmap := make([]byte, bitsSize(typ))
		for _, name := range strings.Fields(leaf.ValueString()) {
			pos, ok := typ.Bit.NameMap()[name]
			if !ok {
				return Errorf(EInval, "bit %q not found in %q", name, schema.Name)
			}
			bitmap[pos/8] |= 1 << uint(pos%8)
		}
		return w.write(bitmap)
	}
	return Errorf(EInt, "unhandled type code %d", code)
}

// decodedValue is the outcome of the two-pass leaf decode: the parsed
// value union plus the canonical string, with the reference types left
// unresolved for the caller.
type decodedValue struct {
	value      interface{}
	canonical  string
	def        bool
	unresolved bool
	kind       yang.TypeKind
}

// decodeValue reads the type tag and the value body. Pass one parses the
// binary body; pass two fills the canonical string, resolving identityref
// and bits against the context.
func (c *Context) decodeValue(r *lybReader, schema *SchemaNode) (*decodedValue, error) {
	typ := schema.Type
	if typ == nil {
		return nil, Errorf(EInval, "schema %q has no type", schema.Name)
	}
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	code := int(tag & lybValTypeMask)
	dv := &decodedValue{
		def:        tag&lybValDefault != 0,
		unresolved: tag&lybValUnresolved != 0,
		kind:       typ.Kind,
	}
	if tag&lybValUserType != 0 {
		canonical, err := r.readString()
		if err != nil {
			return nil, err
		}
		dv.canonical = canonical
		plugin := c.lookupTypePlugin(schema)
		if plugin == nil {
			return nil, Errorf(EInval, "no plugin for user type %q of %q", typ.Name, schema.Name)
		}
		v, err := plugin.Parse(canonical)
		if err != nil {
			return nil, WrapErrorf(EInval, err, "user type %q", typ.Name)
		}
		dv.value = v
		return dv, nil
	}
	switch code {
	case lybTypeInt8, lybTypeInt16, lybTypeInt32, lybTypeInt64,
		lybTypeUint8, lybTypeUint16, lybTypeUint32, lybTypeUint64:
		width := lybIntWidth[code]
		wire, err := r.readUint64n(width)
		if err != nil {
			return nil, err
		}
		dv.value = intFromWire(code, wire, width)
		dv.canonical = ValueToValueString(dv.value)
	case lybTypeDec64:
		wire, err := r.readUint64n(8)
		if err != nil {
			return nil, err
		}
		scaled := int64(wire)
		number := yang.Number{FractionDigits: uint8(typ.FractionDigits)}
		if scaled < 0 {
			number.Kind = yang.Negative
			number.Value = uint64(-scaled)
		} else {
			number.Value = uint64(scaled)
		}
		dv.value = number
		dv.canonical = number.String()
	case lybTypeBool:
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		dv.value = b != 0
		dv.canonical = ValueToValueString(dv.value)
	case lybTypeEmpty:
		dv.value = nil
		dv.canonical = ""
	case lybTypeString, lybTypeBinary, lybTypeInstanceID, lybTypeLeafref, lybTypeUnion:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		dv.value = s
		dv.canonical = s
	case lybTypeIdentityref:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		name := s
		if i := strings.Index(s, ":"); i >= 0 {
			name = s[i+1:]
		}
		if _, ok := schema.Identityref[name]; !ok {
			return nil, Errorf(EInval, "identityref %q not found for %q", s, schema.Name).
				atSchema(GeneratePath(schema, false))
		}
		dv.value = name
		dv.canonical = name
	case lybTypeEnum:
		names := typ.Enum.Names()
		wire, err := r.readUint64n(enumWidth(len(names)))
		if err != nil {
			return nil, err
		}
		if int(wire) >= len(names) {
			return nil, Errorf(EInval, "enum index %d out of range for %q", wire, schema.Name)
		}
		dv.value = names[wire]
		dv.canonical = names[wire]
	case lybTypeBits:
		bitmap := make([]byte, bitsSize(typ))
		if err := r.read(bitmap); err != nil {
			return nil, err
		}
		type bit struct {
			name string
			pos  int64
		}
		var set []bit
		for name, pos := range typ.Bit.NameMap() {
			if bitmap[pos/8]&(1<<uint(pos%8)) != 0 {
				set = append(set, bit{name, pos})
			}
		}
		sort.Slice(set, func(i, j int) bool { return set[i].pos < set[j].pos })
		names := make([]string, len(set))
		for i := range set {
			names[i] = set[i].name
		}
		dv.value = strings.Join(names, " ")
		dv.canonical = dv.value.(string)
	default:
		return nil, Errorf(EInval, "unknown LYB type code %d", code)
	}
	return dv, nil
}

// intFromWire sign-extends or truncates a little-endian integer body.
func intFromWire(code int, wire uint64, width int) interface{} {
	switch code {
	case lybTypeInt8:
		return int8(wire)
	case lybTypeInt16:
		return int16(wire)
	case lybTypeInt32:
		return int32(wire)
	case lybTypeInt64:
		return int64(wire)
	case lybTypeUint8:
		return uint8(wire)
	case lybTypeUint16:
		return uint16(wire)
	case lybTypeUint32:
		return uint32(wire)
	default:
		return wire
	}
}

// unionHasReference reports whether a union carries a member type whose
// resolution needs a data tree.
func unionHasReference(typ *yang.YangType) bool {
	for _, t := range typ.Type {
		switch t.Kind {
		case yang.Yleafref, yang.YinstanceIdentifier:
			return true
		case yang.Yunion:
			if unionHasReference(t) {
				return true
			}
		}
	}
	return false
}

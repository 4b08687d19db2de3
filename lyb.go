package yangcontext

import (
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/openconfig/goyang/pkg/yang"
)

// LYBOption controls the LYB codec.
type LYBOption uint32

const (
	// LYBStrict fails on unknown modules and schema nodes instead of
	// skipping the affected subtree.
	LYBStrict LYBOption = 1 << iota
	// LYBModUpdate accepts an implemented newer revision of a module
	// named by the data.
	LYBModUpdate
	// LYBWithSiblings encodes the node and its following siblings.
	LYBWithSiblings
)

// UnresolvedRef is a reference-typed leaf whose value could not be bound
// during decode. The caller completes the resolution against a reference
// tree once the whole data set is available.
type UnresolvedRef struct {
	Node      *DataLeaf
	Kind      yang.TypeKind
	Canonical string
}

// packRevision packs a YYYY-MM-DD revision date into two octets.
func packRevision(revision string) uint16 {
	if len(revision) != 10 {
		return 0
	}
	year, err1 := strconv.Atoi(revision[0:4])
	month, err2 := strconv.Atoi(revision[5:7])
	day, err3 := strconv.Atoi(revision[8:10])
	if err1 != nil || err2 != nil || err3 != nil || year < 2000 {
		return 0
	}
	return uint16(year-2000)<<9 | uint16(month)<<5 | uint16(day)
}

// unpackRevision restores a packed revision date.
func unpackRevision(packed uint16) string {
	if packed == 0 {
		return ""
	}
	year := int(packed>>9) + 2000
	month := int(packed>>5) & 0x0F
	day := int(packed) & 0x1F
	var b strings.Builder
	b.WriteString(strconv.Itoa(year))
	b.WriteByte('-')
	if month < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(month))
	b.WriteByte('-')
	if day < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(day))
	return b.String()
}

// EncodeLYB serializes the data tree into the LYB binary form. Handing in
// the tree root encodes all its children as top-level subtrees.
func (c *Context) EncodeLYB(node DataNode, opts LYBOption) ([]byte, error) {
	if !IsValid(node) {
		return nil, c.record(Errorf(EInval, "no data node to encode"))
	}
	var tops []DataNode
	switch {
	case node.Schema().IsRoot:
		tops = node.Children()
	case opts&LYBWithSiblings != 0 && node.Parent() != nil:
		parent := node.Parent().Children()
		from := 0
		for i := range parent {
			if parent[i] == node {
				from = i
				break
			}
		}
		tops = parent[from:]
	default:
		tops = []DataNode{node}
	}

	// module table: every module of every node and annotation, in the
	// order of first appearance
	var mods []*Module
	index := map[*Module]int{}
	addMod := func(m *Module) {
		if m == nil {
			return
		}
		if _, ok := index[m]; !ok {
			index[m] = len(mods)
			mods = append(mods, m)
		}
	}
	for _, top := range tops {
		walkData(top, func(n DataNode) {
			addMod(n.Schema().Module)
			for _, attr := range n.Metadata() {
				addMod(attr.Module)
			}
		})
	}
	if len(mods) > lybModMax {
		return nil, c.record(Errorf(EInval, "too many modules in one data set"))
	}

	w := &lybWriter{}
	w.writeRaw([]byte(lybMagic))
	w.writeRaw([]byte{0}) // flags
	w.writeUint16(uint16(len(mods)))
	for _, m := range mods {
		if err := w.writeString(m.Name); err != nil {
			return nil, c.record(err.(*Error))
		}
		if err := w.writeUint16(packRevision(m.Revision)); err != nil {
			return nil, c.record(err.(*Error))
		}
	}
	for _, top := range tops {
		if err := c.encodeSubtree(w, top, index, true); err != nil {
			if ee, ok := err.(*Error); ok {
				return nil, c.record(ee)
			}
			return nil, c.record(WrapErrorf(EInt, err, "LYB encoding failed"))
		}
	}
	w.writeRaw([]byte{0}) // top-level terminator
	return w.bytes(), nil
}

func (c *Context) encodeSubtree(w *lybWriter, node DataNode, index map[*Module]int, top bool) error {
	if err := w.startSubtree(); err != nil {
		return err
	}
	schema := node.Schema()
	if top {
		if err := w.writeUint16(uint16(index[schema.Module])); err != nil {
			return err
		}
		if err := w.writeSchemaHash(schema, schema.Module.Schemas); err != nil {
			return err
		}
	} else {
		if err := w.writeSchemaHash(schema, schema.Parent.Children); err != nil {
			return err
		}
	}
	if err := c.encodeAttributes(w, node, index); err != nil {
		return err
	}
	switch n := node.(type) {
	case *DataLeaf:
		if err := c.encodeValue(w, n); err != nil {
			return err
		}
	case *DataAnydata:
		if blob, ok := n.value.([]byte); ok {
			if err := w.writeByte(lybAnydataLYB); err != nil {
				return err
			}
			if len(blob) > lybStringMax {
				return Errorf(EInval, "anydata blob of %d bytes is too large", len(blob))
			}
			if err := w.writeUint16(uint16(len(blob))); err != nil {
				return err
			}
			if err := w.write(blob); err != nil {
				return err
			}
		} else {
			if err := w.writeByte(lybAnydataStr); err != nil {
				return err
			}
			if err := w.writeString(n.ValueString()); err != nil {
				return err
			}
		}
	case *DataBranch:
		for _, child := range n.children {
			if err := c.encodeSubtree(w, child, index, false); err != nil {
				return err
			}
		}
	}
	return w.stopSubtree()
}

func (c *Context) encodeAttributes(w *lybWriter, node DataNode, index map[*Module]int) error {
	attrs := node.Metadata()
	if len(attrs) > lybAttrMax {
		return Errorf(EInval, "too many attributes on %q", node)
	}
	if err := w.writeByte(byte(len(attrs))); err != nil {
		return err
	}
	for _, attr := range attrs {
		if err := w.startSubtree(); err != nil {
			return err
		}
		if err := w.writeUint16(uint16(index[attr.Module])); err != nil {
			return err
		}
		if err := w.writeString(attr.Name); err != nil {
			return err
		}
		// annotation values ride as their canonical strings
		if err := w.writeByte(lybTypeString); err != nil {
			return err
		}
		if err := w.writeString(attr.Value); err != nil {
			return err
		}
		if err := w.stopSubtree(); err != nil {
			return err
		}
	}
	return nil
}

// DecodeLYB parses a LYB byte stream against the context. It returns the
// decoded tree under a fresh root node together with the references left
// unresolved. In lenient mode subtrees of unknown modules and schema
// nodes are skipped; LYBStrict turns them into failures.
func (c *Context) DecodeLYB(data []byte, opts LYBOption) (DataNode, []*UnresolvedRef, error) {
	if len(data) < 6 || string(data[0:3]) != lybMagic {
		return nil, nil, c.record(Errorf(EInval, "malformed LYB magic"))
	}
	r := &lybReader{data: data, off: 4} // past magic and flags
	modCount, err := r.readUint16()
	if err != nil {
		return nil, nil, c.record(err.(*Error))
	}
	table := make([]*Module, int(modCount))
	for i := 0; i < int(modCount); i++ {
		name, err := r.readString()
		if err != nil {
			return nil, nil, c.record(err.(*Error))
		}
		packed, err := r.readUint16()
		if err != nil {
			return nil, nil, c.record(err.(*Error))
		}
		table[i] = c.resolveDataModule(name, unpackRevision(packed), opts)
		if table[i] == nil && opts&LYBStrict != 0 {
			return nil, nil, c.record(Errorf(EInval, "module %q of the data is not available",
				moduleKey(name, unpackRevision(packed))))
		}
	}
	inTable := map[*Module]bool{}
	for _, m := range table {
		if m != nil {
			inTable[m] = true
		}
	}

	root, err := NewDataNode(c.root)
	if err != nil {
		return nil, nil, err
	}
	var unresolved []*UnresolvedRef
	for {
		if r.off >= len(r.data) {
			return nil, nil, c.record(Errorf(EInval, "LYB data misses the terminator"))
		}
		if r.data[r.off] == 0 {
			break
		}
		if err := r.startSubtree(); err != nil {
			return nil, nil, c.record(err.(*Error))
		}
		modIndex, err := r.readUint16()
		if err != nil {
			return nil, nil, c.record(err.(*Error))
		}
		var mod *Module
		if int(modIndex) < len(table) {
			mod = table[modIndex]
		}
		if mod == nil {
			if opts&LYBStrict != 0 {
				return nil, nil, c.record(Errorf(EInval, "top-level subtree uses an unknown module"))
			}
			glog.Warningf("skipping a top-level subtree of an unknown module")
			if err := r.skipSubtree(); err != nil {
				return nil, nil, c.record(err.(*Error))
			}
			continue
		}
		if err := c.decodeSubtree(r, root.(*DataBranch), mod.Schemas, table, inTable, opts, &unresolved, true); err != nil {
			if ee, ok := err.(*Error); ok {
				return nil, nil, c.record(ee)
			}
			return nil, nil, c.record(WrapErrorf(EInt, err, "LYB decoding failed"))
		}
	}
	return root, unresolved, nil
}

// resolveDataModule maps a module-table entry to an implemented module:
// the exact revision first, an implemented newer revision with
// LYBModUpdate, the data callback last.
func (c *Context) resolveDataModule(name, revision string, opts LYBOption) *Module {
	m := c.GetModule(name, revision)
	if m == nil && revision == "" {
		m = c.GetModuleLatest(name)
	}
	if (m == nil || !m.Implemented) && opts&LYBModUpdate != 0 {
		if newer := c.GetModuleImplemented(name); newer != nil &&
			!revisionLess(newer.Revision, revision) {
			m = newer
		}
	}
	if (m == nil || !m.Implemented) && c.dataClb != nil {
		if loaded, err := c.dataClb(c, name, "", c.dataData); err == nil && loaded != nil {
			m = loaded
		}
	}
	if m == nil || !m.Implemented {
		return nil
	}
	return m
}

// decodeSubtree reads one subtree into the parent branch. A frame was
// already pushed for the top-level flavor; nested subtrees push theirs.
func (c *Context) decodeSubtree(r *lybReader, parent *DataBranch, candidates []*SchemaNode,
	table []*Module, inTable map[*Module]bool, opts LYBOption,
	unresolved *[]*UnresolvedRef, framePushed bool) error {
	if !framePushed {
		if err := r.startSubtree(); err != nil {
			return err
		}
	}
	schema, err := r.readSchemaHash(candidates, func(m *Module) bool { return m == nil || inTable[m] })
	if err != nil {
		return err
	}
	if schema == nil {
		if opts&LYBStrict != 0 {
			return Errorf(EInval, "unknown schema hash below %q", parent.schema.Name)
		}
		glog.Warningf("skipping a subtree with an unknown schema hash below %q", parent.schema.Name)
		return r.skipSubtree()
	}
	node, err := NewDataNode(schema)
	if err != nil {
		return err
	}
	if err := c.decodeAttributes(r, node, table); err != nil {
		return err
	}
	switch n := node.(type) {
	case *DataLeaf:
		dv, err := c.decodeValue(r, schema)
		if err != nil {
			return err
		}
		n.setValueRaw(dv.value)
		n.SetDefault(dv.def)
		if dv.unresolved {
			*unresolved = append(*unresolved, &UnresolvedRef{
				Node:      n,
				Kind:      dv.kind,
				Canonical: dv.canonical,
			})
		}
	case *DataAnydata:
		vtype, err := r.readByte()
		if err != nil {
			return err
		}
		switch vtype {
		case lybAnydataLYB:
			length, err := r.readUint16()
			if err != nil {
				return err
			}
			blob := make([]byte, int(length))
			if err := r.read(blob); err != nil {
				return err
			}
			n.SetBlob(blob)
		case lybAnydataStr:
			s, err := r.readString()
			if err != nil {
				return err
			}
			n.value = s
		default:
			return Errorf(EInval, "unknown anydata value type %d", vtype)
		}
	case *DataBranch:
		for {
			done, err := r.subtreeDone()
			if err != nil {
				return err
			}
			if done {
				break
			}
			if err := c.decodeSubtree(r, n, schema.Children, table, inTable, opts, unresolved, false); err != nil {
				return err
			}
		}
		promoteDefaultContainer(n)
	}
	if err := r.stopSubtree(); err != nil {
		return err
	}
	_, err = parent.Insert(node)
	return err
}

func (c *Context) decodeAttributes(r *lybReader, node DataNode, table []*Module) error {
	count, err := r.readByte()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if err := r.startSubtree(); err != nil {
			return err
		}
		modIndex, err := r.readUint16()
		if err != nil {
			return err
		}
		name, err := r.readString()
		if err != nil {
			return err
		}
		tag, err := r.readByte()
		if err != nil {
			return err
		}
		var value string
		switch int(tag & lybValTypeMask) {
		case lybTypeString, lybTypeBinary, lybTypeIdentityref,
			lybTypeInstanceID, lybTypeLeafref, lybTypeUnion:
			value, err = r.readString()
			if err != nil {
				return err
			}
		default:
			// an attribute body this decoder does not interpret
			if err := r.skipSubtree(); err != nil {
				return err
			}
			glog.Warningf("dropping attribute %q with an opaque body", name)
			continue
		}
		var mod *Module
		if int(modIndex) < len(table) {
			mod = table[modIndex]
		}
		if mod != nil {
			if c.AnnotationSchema(mod.Name, name) == nil {
				glog.Warningf("attribute %q is not a declared annotation of %q", name, mod.Name)
			}
			node.SetMetadata(&Attr{Module: mod, Name: name, Value: value})
		}
		if err := r.stopSubtree(); err != nil {
			return err
		}
	}
	return nil
}

// promoteDefaultContainer marks a non-presence container default once
// every child turned out to be default.
func promoteDefaultContainer(branch *DataBranch) {
	if !branch.schema.IsContainer() || len(branch.children) == 0 {
		return
	}
	if container, ok := branch.schema.Node.(*yang.Container); ok && container.Presence != nil {
		return
	}
	for _, child := range branch.children {
		if !child.IsDefault() {
			return
		}
	}
	branch.SetDefault(true)
}

// ResolveReferences completes the references deferred by the decoder
// against the reference tree. A leafref must name an existing instance of
// its target; an instance-identifier must point at an existing node.
func ResolveReferences(unresolved []*UnresolvedRef, refTree DataNode) error {
	for _, ref := range unresolved {
		switch ref.Kind {
		case yang.Yleafref:
			target := ref.Node.schema.LeafrefTarget
			if target == nil {
				continue
			}
			if !leafrefValueExists(refTree, target, ref.Canonical) {
				return Errorf(EValid, "leafref %q has no target instance", ref.Canonical).
					atData(ref.Node.Path())
			}
		case yang.YinstanceIdentifier:
			found, err := Find(refTree, ref.Canonical)
			if err != nil || len(found) == 0 {
				return Errorf(EValid, "instance-identifier %q does not exist", ref.Canonical).
					atData(ref.Node.Path())
			}
		default:
			// union members resolve loosely; the value stays textual
		}
	}
	return nil
}

func leafrefValueExists(refTree DataNode, target *SchemaNode, value string) bool {
	found := false
	walkData(refTree, func(n DataNode) {
		if found || n.Schema() != target {
			return
		}
		if n.ValueString() == value {
			found = true
		}
	})
	return found
}

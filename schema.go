package yangcontext

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
	"github.com/openconfig/ygot/util"
)

// SchemaNode - the node structure of the context schema tree.
type SchemaNode struct {
	*yang.Entry
	Parent        *SchemaNode            // the parent schema node
	Module        *Module                // the module owning the schema node
	Children      []*SchemaNode          // the child schema nodes
	Directory     map[string]*SchemaNode // the children including the qualified name aliases
	Enum          map[string]int64       // enumeration and bits values
	Identityref   map[string]*Module     // identity values usable for the node
	Keyname       []string               // list key names
	LeafrefTarget *SchemaNode            // resolved target of a leafref-typed leaf
	IsRoot        bool                   // the synthetic root of the schema tree
	IsKey         bool                   // a key node of a list
	Private       interface{}            // user slot released through Context.Destroy

	hash0    byte
	hashinit bool
}

func (schema *SchemaNode) String() string {
	if schema == nil {
		return ""
	}
	return schema.Name
}

// GetQName() returns the namespace-qualified name of the schema node.
func (schema *SchemaNode) GetQName() string {
	if schema.Module == nil {
		return schema.Name
	}
	return schema.Module.Name + ":" + schema.Name
}

// IsAnyData() returns true if the schema node is anydata or anyxml.
func (schema *SchemaNode) IsAnyData() bool {
	return schema.Kind == yang.AnyDataEntry || schema.Kind == yang.AnyXMLEntry
}

// IsListable() checks if the schema node is a list or a leaf-list node.
func (schema *SchemaNode) IsListable() bool {
	return schema.ListAttr != nil
}

// IsListHasKey() checks the list node has keys.
func (schema *SchemaNode) IsListHasKey() bool {
	return schema.IsList() && schema.Key != ""
}

// GetRootSchema() returns the root of the schema tree.
func (schema *SchemaNode) GetRootSchema() *SchemaNode {
	for schema != nil {
		if schema.IsRoot {
			return schema
		}
		schema = schema.Parent
	}
	return nil
}

// GetSchema() returns a child of the schema node. The qualified name
// (module-name:node-name) is accepted for the name.
func (schema *SchemaNode) GetSchema(name string) *SchemaNode {
	return schema.Directory[name]
}

// FindSchema() returns the descendant schema node of the path.
func (schema *SchemaNode) FindSchema(path string) *SchemaNode {
	pathnode, err := ParsePath(&path)
	if err != nil {
		return nil
	}
	target := schema
	for i := range pathnode {
		if target == nil {
			return nil
		}
		switch pathnode[i].Select {
		case NodeSelectSelf:
		case NodeSelectParent:
			target = target.Parent
		case NodeSelectFromRoot:
			target = target.GetRootSchema()
		}
		if pathnode[i].Name != "" {
			target = target.Directory[pathnode[i].Name]
		}
	}
	return target
}

// buildSchemaNode wraps a parsed entry and its descendants. Choice and case
// entries stay in the tree but their data children attach through them.
func buildSchemaNode(e *yang.Entry, mod *Module, parent *SchemaNode) (*SchemaNode, error) {
	n := &SchemaNode{
		Entry:     e,
		Parent:    parent,
		Module:    mod,
		Directory: map[string]*SchemaNode{},
	}
	n.Directory["."] = n
	if owner := entryModule(e, mod); owner != nil {
		n.Module = owner
	}
	if e.Key != "" {
		n.Keyname = strings.Split(e.Key, " ")
	}
	if parent != nil {
		switch {
		case parent.IsChoice(), parent.IsCase():
			for parent.Parent != nil {
				parent = parent.Parent
				if !parent.IsChoice() && !parent.IsCase() {
					break
				}
			}
			if parent == nil {
				return nil, Errorf(EInt, "no data parent found for %q", e.Name)
			}
		}
		n.Parent = parent
		parent.Directory[n.Module.Name+":"+e.Name] = n
		if e.Prefix != nil {
			parent.Directory[e.Prefix.Name+":"+e.Name] = n
		}
		if _, ok := parent.Directory[e.Name]; !ok {
			parent.Directory[e.Name] = n
		}
		parent.Directory[".."] = parent
		parent.Children = append(parent.Children, n)
		for i := range parent.Keyname {
			if parent.Keyname[i] == e.Name {
				n.IsKey = true
			}
		}
	}
	if err := updateType(n, e.Type); err != nil {
		return nil, err
	}
	for _, ce := range sortedEntries(e.Dir) {
		if _, err := buildSchemaNode(ce, n.Module, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func sortedEntries(dir map[string]*yang.Entry) []*yang.Entry {
	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]*yang.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, dir[name])
	}
	return entries
}

// entryModule finds the registry module owning the entry. Augmented nodes
// belong to the augmenting module, not to the augmented tree.
func entryModule(e *yang.Entry, base *Module) *Module {
	if base == nil || base.ctx == nil {
		return base
	}
	if e.Node != nil {
		if root := yang.RootNode(e.Node); root != nil {
			if m := base.ctx.byMod[root]; m != nil {
				return m
			}
			// the entry may come from a submodule; fall through to the
			// namespace lookup below
		}
	}
	if ns := e.Namespace(); ns != nil && ns.Name != "" {
		if m := base.ctx.GetModuleByNamespace(ns.Name, ""); m != nil {
			return m
		}
	}
	return base
}

// updateType fills the helper maps derived from the leaf type.
func updateType(schema *SchemaNode, typ *yang.YangType) error {
	if typ == nil {
		return nil
	}
	switch typ.Kind {
	case yang.Ybits:
		if schema.Enum == nil {
			schema.Enum = map[string]int64{}
		}
		for bs, bi := range typ.Bit.NameMap() {
			schema.Enum[bs] = bi
		}
	case yang.Yenum:
		if schema.Enum == nil {
			schema.Enum = map[string]int64{}
		}
		for es, ei := range typ.Enum.NameMap() {
			schema.Enum[es] = ei
		}
	case yang.Yidentityref:
		if schema.Identityref == nil {
			schema.Identityref = map[string]*Module{}
		}
		if typ.IdentityBase != nil {
			for i := range typ.IdentityBase.Values {
				name := typ.IdentityBase.Values[i].NName()
				root := yang.RootNode(typ.IdentityBase.Values[i])
				var owner *Module
				if schema.Module != nil && schema.Module.ctx != nil {
					owner = schema.Module.ctx.byMod[root]
				}
				if owner == nil {
					owner = schema.Module
				}
				schema.Identityref[name] = owner
			}
		}
	case yang.Yunion:
		for i := range typ.Type {
			if err := updateType(schema, typ.Type[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildRootSchema reconstructs the synthetic root schema node over the
// enabled implemented modules of the context.
func (c *Context) buildRootSchema() {
	root := &SchemaNode{
		Entry: &yang.Entry{
			Name: "root",
			Kind: yang.DirectoryEntry,
			Dir:  map[string]*yang.Entry{},
		},
		Directory: map[string]*SchemaNode{},
		IsRoot:    true,
	}
	root.Directory["."] = root
	for _, m := range c.modules {
		m.Schemas = nil
		if m.Disabled || !m.Implemented {
			continue
		}
		entry := yang.ToEntry(m.Mod)
		if entry == nil {
			continue
		}
		for _, ce := range sortedEntries(entry.Dir) {
			sn, err := buildSchemaNode(ce, m, root)
			if err != nil {
				if ee, ok := err.(*Error); ok {
					c.record(ee)
				} else {
					c.record(WrapErrorf(EInt, err, "schema build failed for %q", m.Name))
				}
				continue
			}
			m.Schemas = append(m.Schemas, sn)
		}
	}
	c.root = root
	// leafref targets can only be resolved once the whole tree exists
	walkSchema(root, func(sn *SchemaNode) {
		if sn.Type != nil && sn.Type.Kind == yang.Yleafref && sn.Type.Path != "" {
			sn.LeafrefTarget = sn.resolveLeafrefTarget(sn.Type.Path)
		}
	})
}

// resolveLeafrefTarget follows a leafref path expression through the
// schema tree. Predicates are ignored; prefixes resolve through the
// Directory aliases.
func (schema *SchemaNode) resolveLeafrefTarget(path string) *SchemaNode {
	target := schema
	if strings.HasPrefix(path, "/") {
		target = schema.GetRootSchema()
	}
	for _, elem := range strings.Split(strings.Trim(path, "/"), "/") {
		if target == nil {
			return nil
		}
		if i := strings.IndexByte(elem, '['); i >= 0 {
			elem = elem[:i]
		}
		switch elem {
		case "", ".":
		case "..":
			target = target.Parent
		default:
			next := target.Directory[elem]
			if next == nil {
				// a prefixed name whose prefix is unknown here
				if _, name := SplitQName(elem); name != elem {
					next = target.Directory[name]
				}
			}
			target = next
		}
	}
	if target == schema {
		return nil
	}
	return target
}

// collectAnnotations registers the metadata annotation schemas declared
// through the ietf-yang-metadata extension by the module set.
func (c *Context) collectAnnotations(set []*Module) {
	c.annotations = map[string]*SchemaNode{}
	for _, m := range set {
		for _, ext := range m.Mod.Extensions {
			keyword := strings.SplitN(ext.Keyword, ":", 2)
			if len(keyword) != 2 || keyword[1] != "annotation" {
				continue
			}
			extmod := yang.FindModuleByPrefix(m.Mod, keyword[0])
			if extmod == nil || extmod.Name != "ietf-yang-metadata" {
				continue
			}
			name := ext.NName()
			annot := &yang.Entry{
				Node: ext,
				Name: name,
				Kind: yang.LeafEntry,
				Type: &yang.YangType{Kind: yang.Ystring, Name: "string"},
			}
			for _, sub := range ext.SubStatements() {
				if sub.Kind() != "type" {
					continue
				}
				tname, tmod := sub.NName(), m.Mod
				if prefix, base := SplitQName(tname); prefix != "" {
					if found := yang.FindModuleByPrefix(m.Mod, prefix); found != nil {
						tmod = found
						tname = base
					}
				}
				if td := yang.BaseTypedefs[tname]; td != nil {
					annot.Type = td.YangType
					continue
				}
				for j := range tmod.Typedef {
					if tmod.Typedef[j].Name == tname {
						annot.Type = tmod.Typedef[j].YangType
						break
					}
				}
			}
			sn := &SchemaNode{
				Entry:     annot,
				Module:    m,
				Directory: map[string]*SchemaNode{},
			}
			updateType(sn, annot.Type)
			c.annotations[m.Name+":"+name] = sn
		}
	}
}

// ValueStringToValue converts a string to the typed value of the schema,
// checking ranges, patterns and the other type restrictions.
func ValueStringToValue(schema *SchemaNode, typ *yang.YangType, value string) (interface{}, error) {
	switch typ.Kind {
	case yang.Ystring, yang.Ybinary:
		if len(typ.Length) > 0 {
			length := yang.FromInt(int64(len(value)))
			if !numberInRange(typ.Length, length) {
				return nil, Errorf(EValid, "%q is out of the length range %v", value, typ.Length)
			}
		}
		patterns, isPOSIX := util.SanitizedPattern(typ)
		for _, p := range patterns {
			var r *regexp.Regexp
			var err error
			if isPOSIX {
				r, err = regexp.CompilePOSIX(p)
			} else {
				r, err = regexp.Compile(p)
			}
			if err != nil {
				return nil, WrapErrorf(EInt, err, "pattern compile failed")
			}
			if !r.MatchString(value) {
				return nil, Errorf(EValid, "%q does not match pattern %q of %q", value, p, schema.Name)
			}
		}
		return value, nil
	case yang.Ybool:
		switch value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, Errorf(EValid, "%q is not boolean", value)
	case yang.Yempty:
		if value != "" {
			return nil, Errorf(EValid, "empty type of %q takes no value", schema.Name)
		}
		return nil, nil
	case yang.Yint8, yang.Yint16, yang.Yint32, yang.Yint64,
		yang.Yuint8, yang.Yuint16, yang.Yuint32, yang.Yuint64:
		number, err := yang.ParseInt(value)
		if err != nil {
			return nil, err
		}
		if len(typ.Range) > 0 && !numberInRange(typ.Range, number) {
			return nil, Errorf(EValid, "%q is out of the range %v", value, typ.Range)
		}
		if typ.Kind == yang.Yuint64 {
			return number.Value, nil
		}
		n, err := number.Int()
		if err != nil {
			return nil, err
		}
		switch typ.Kind {
		case yang.Yint8:
			return int8(n), nil
		case yang.Yint16:
			return int16(n), nil
		case yang.Yint32:
			return int32(n), nil
		case yang.Yint64:
			return n, nil
		case yang.Yuint8:
			return uint8(n), nil
		case yang.Yuint16:
			return uint16(n), nil
		case yang.Yuint32:
			return uint32(n), nil
		}
		return number, nil
	case yang.Ybits:
		return canonicalBits(schema, value)
	case yang.Yenum:
		if _, ok := schema.Enum[value]; ok {
			return value, nil
		}
		return nil, Errorf(EValid, "enum %q not found in %q", value, schema.Name)
	case yang.Yidentityref:
		name := value
		if i := strings.Index(value, ":"); i >= 0 {
			name = value[i+1:]
		}
		if _, ok := schema.Identityref[name]; ok {
			return name, nil
		}
		return nil, Errorf(EValid, "identityref %q not found for %q", value, schema.Name)
	case yang.Yleafref, yang.YinstanceIdentifier:
		// reference values stay textual until resolved against a tree
		return value, nil
	case yang.Ydecimal64:
		number, err := yang.ParseDecimal(value, uint8(typ.FractionDigits))
		if err != nil {
			return nil, err
		}
		if len(typ.Range) > 0 && !numberInRange(typ.Range, number) {
			return nil, Errorf(EValid, "%q is out of the range %v", value, typ.Range)
		}
		return number, nil
	case yang.Yunion:
		for i := range typ.Type {
			v, err := ValueStringToValue(schema, typ.Type[i], value)
			if err == nil {
				return v, nil
			}
		}
		return nil, Errorf(EValid, "%q does not match any member type of %q", value, typ.Name)
	case yang.Ynone:
		return value, nil
	}
	return nil, Errorf(EValid, "invalid value %q for %q", value, schema.Name)
}

func numberInRange(ranges yang.YangRange, n yang.Number) bool {
	for i := range ranges {
		if !(ranges[i].Max.Less(n) || n.Less(ranges[i].Min)) {
			return true
		}
	}
	return false
}

// canonicalBits reorders a bits value into the bit position order.
func canonicalBits(schema *SchemaNode, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	names := strings.Fields(value)
	seen := map[string]bool{}
	for _, name := range names {
		if _, ok := schema.Enum[name]; !ok {
			return "", Errorf(EValid, "bit %q not found in %q", name, schema.Name)
		}
		if seen[name] {
			return "", Errorf(EValid, "bit %q set twice", name)
		}
		seen[name] = true
	}
	sort.Slice(names, func(i, j int) bool {
		return schema.Enum[names[i]] < schema.Enum[names[j]]
	})
	return strings.Join(names, " "), nil
}

// ValueToValueString converts a typed value to its canonical string.
func ValueToValueString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case yang.Number:
		return v.String()
	case []byte:
		return string(v)
	case nil:
		return ""
	}
	return fmt.Sprint(value)
}

// CollectSchemaEntries returns all schema nodes below e.
func CollectSchemaEntries(e *SchemaNode, leafOnly bool) []*SchemaNode {
	if e == nil {
		return nil
	}
	collected := make([]*SchemaNode, 0, 16)
	for _, child := range e.Children {
		collected = append(collected, CollectSchemaEntries(child, leafOnly)...)
	}
	if e.Parent != nil {
		if e.IsLeaf() || e.IsLeafList() || !leafOnly {
			collected = append(collected, e)
		}
	}
	return collected
}

// GeneratePath returns the slash path of the schema node.
func GeneratePath(schema *SchemaNode, keyPrint bool) string {
	path := ""
	for e := schema; e != nil && e.Parent != nil; e = e.Parent {
		if e.IsCase() || e.IsChoice() {
			continue
		}
		elem := e.Name
		if keyPrint && e.Key != "" {
			for _, k := range strings.Split(e.Key, " ") {
				elem += "[" + k + "=*]"
			}
		}
		path = "/" + elem + path
	}
	return path
}

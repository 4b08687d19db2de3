package yangcontext

// DataLeaf - the node structure for leaf and leaf-list data nodes. Every
// leaf-list value is a separate sibling instance.
type DataLeaf struct {
	schema   *SchemaNode
	parent   *DataBranch
	value    interface{}
	metadata []*Attr
	def      bool
}

func (leaf *DataLeaf) IsDataNode()        {}
func (leaf *DataLeaf) IsNil() bool        { return leaf == nil }
func (leaf *DataLeaf) IsBranchNode() bool { return false }
func (leaf *DataLeaf) IsLeafNode() bool   { return true }
func (leaf *DataLeaf) IsLeaf() bool       { return leaf.schema.IsLeaf() }
func (leaf *DataLeaf) IsLeafList() bool   { return leaf.schema.IsLeafList() }
func (leaf *DataLeaf) IsList() bool       { return false }
func (leaf *DataLeaf) IsContainer() bool  { return false }

func (leaf *DataLeaf) Name() string        { return leaf.schema.Name }
func (leaf *DataLeaf) Schema() *SchemaNode { return leaf.schema }
func (leaf *DataLeaf) Parent() DataNode {
	if leaf.parent == nil {
		return nil
	}
	return leaf.parent
}
func (leaf *DataLeaf) Children() []DataNode { return nil }

func (leaf *DataLeaf) String() string { return leaf.ID() }

func (leaf *DataLeaf) ID() string {
	if leaf.schema.IsLeafList() {
		return leaf.schema.Name + "[.=" + leaf.ValueString() + "]"
	}
	return leaf.schema.Name
}

func (leaf *DataLeaf) Path() string {
	if leaf == nil {
		return ""
	}
	if leaf.parent != nil {
		return leaf.parent.Path() + "/" + leaf.ID()
	}
	return "/" + leaf.ID()
}

func (leaf *DataLeaf) Insert(child DataNode) (DataNode, error) {
	return nil, Errorf(EInval, "insert is not supported on %q", leaf)
}

func (leaf *DataLeaf) Delete(child DataNode) error {
	return Errorf(EInval, "delete is not supported on %q", leaf)
}

func (leaf *DataLeaf) Get(id string) DataNode      { return nil }
func (leaf *DataLeaf) GetAll(id string) []DataNode { return nil }
func (leaf *DataLeaf) Len() int                    { return 0 }
func (leaf *DataLeaf) Child(index int) DataNode    { return nil }

// SetValueString writes the value to the leaf after the type checks of
// the schema.
func (leaf *DataLeaf) SetValueString(value ...string) error {
	if len(value) > 1 {
		return Errorf(EInval, "data node %q is a single value node", leaf)
	}
	if leaf.parent != nil && leaf.schema.IsKey {
		// the key value identifies the instance; it must not move
		return Errorf(EInval, "key node %q cannot be updated in place", leaf)
	}
	for i := range value {
		v, err := ValueStringToValue(leaf.schema, leaf.schema.Type, value[i])
		if err != nil {
			return err
		}
		leaf.value = v
		leaf.def = false
	}
	return nil
}

// setValueRaw stores an already-decoded value without re-validation.
func (leaf *DataLeaf) setValueRaw(v interface{}) { leaf.value = v }

func (leaf *DataLeaf) Value() interface{}  { return leaf.value }
func (leaf *DataLeaf) ValueString() string { return ValueToValueString(leaf.value) }

// HasValueString returns true if the leaf stores the value.
func (leaf *DataLeaf) HasValueString(value string) bool {
	return leaf.ValueString() == value
}

func (leaf *DataLeaf) IsDefault() bool     { return leaf.def }
func (leaf *DataLeaf) SetDefault(on bool)  { leaf.def = on }
func (leaf *DataLeaf) Metadata() []*Attr   { return leaf.metadata }
func (leaf *DataLeaf) SetMetadata(a *Attr) { leaf.metadata = append(leaf.metadata, a) }

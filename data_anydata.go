package yangcontext

// DataAnydata - the node structure for anydata and anyxml data nodes.
// The content is kept opaque: either a text value or a nested LYB blob.
type DataAnydata struct {
	schema   *SchemaNode
	parent   *DataBranch
	value    interface{} // string or []byte (raw LYB)
	metadata []*Attr
}

func (any *DataAnydata) IsDataNode()        {}
func (any *DataAnydata) IsNil() bool        { return any == nil }
func (any *DataAnydata) IsBranchNode() bool { return false }
func (any *DataAnydata) IsLeafNode() bool   { return false }
func (any *DataAnydata) IsLeaf() bool       { return false }
func (any *DataAnydata) IsLeafList() bool   { return false }
func (any *DataAnydata) IsList() bool       { return false }
func (any *DataAnydata) IsContainer() bool  { return false }

func (any *DataAnydata) Name() string        { return any.schema.Name }
func (any *DataAnydata) ID() string          { return any.schema.Name }
func (any *DataAnydata) Schema() *SchemaNode { return any.schema }
func (any *DataAnydata) Parent() DataNode {
	if any.parent == nil {
		return nil
	}
	return any.parent
}
func (any *DataAnydata) Children() []DataNode { return nil }

func (any *DataAnydata) String() string { return any.schema.Name }

func (any *DataAnydata) Path() string {
	if any.parent != nil {
		return any.parent.Path() + "/" + any.ID()
	}
	return "/" + any.ID()
}

func (any *DataAnydata) Insert(child DataNode) (DataNode, error) {
	return nil, Errorf(EInval, "insert is not supported on %q", any)
}

func (any *DataAnydata) Delete(child DataNode) error {
	return Errorf(EInval, "delete is not supported on %q", any)
}

func (any *DataAnydata) Get(id string) DataNode      { return nil }
func (any *DataAnydata) GetAll(id string) []DataNode { return nil }
func (any *DataAnydata) Len() int                    { return 0 }
func (any *DataAnydata) Child(index int) DataNode    { return nil }

func (any *DataAnydata) SetValueString(value ...string) error {
	if len(value) > 1 {
		return Errorf(EInval, "anydata node %q is a single value node", any)
	}
	for i := range value {
		any.value = value[i]
	}
	return nil
}

// SetBlob stores a raw nested LYB blob as the anydata content.
func (any *DataAnydata) SetBlob(blob []byte) { any.value = blob }

func (any *DataAnydata) Value() interface{} { return any.value }

func (any *DataAnydata) ValueString() string {
	switch v := any.value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func (any *DataAnydata) IsDefault() bool     { return false }
func (any *DataAnydata) SetDefault(on bool)  {}
func (any *DataAnydata) Metadata() []*Attr   { return any.metadata }
func (any *DataAnydata) SetMetadata(a *Attr) { any.metadata = append(any.metadata, a) }

package yangcontext

// Attr is a metadata annotation attached to a data node.
type Attr struct {
	Module *Module // module declaring the annotation
	Name   string
	Value  string
}

// DataNode is a node of an instance data tree.
type DataNode interface {
	IsDataNode()
	IsNil() bool        // the data node is null
	IsBranchNode() bool // a DataBranch (container, list, rpc or notification)
	IsLeafNode() bool   // a DataLeaf (leaf or leaf-list instance)

	IsLeaf() bool      // an yang leaf
	IsLeafList() bool  // an yang leaf-list
	IsList() bool      // an yang list
	IsContainer() bool // an yang container

	Name() string // the name of the data node
	ID() string   // the node ID (NODE[KEY=VALUE]) identifying the instance

	Schema() *SchemaNode
	Parent() DataNode
	Children() []DataNode

	Insert(child DataNode) (DataNode, error) // inserts a child and returns the replaced node
	Delete(child DataNode) error
	Get(id string) DataNode
	GetAll(id string) []DataNode
	Len() int
	Child(index int) DataNode

	SetValueString(value ...string) error
	Value() interface{}
	ValueString() string

	String() string
	Path() string

	IsDefault() bool
	SetDefault(on bool)

	Metadata() []*Attr
	SetMetadata(attr *Attr)
}

// NewDataNode creates a data node of the schema.
func NewDataNode(schema *SchemaNode) (DataNode, error) {
	return NewWithValueString(schema)
}

// NewWithValueString creates a data node of the schema and writes the
// values into it.
func NewWithValueString(schema *SchemaNode, value ...string) (DataNode, error) {
	if schema == nil {
		return nil, Errorf(EInval, "schema node is not present")
	}
	var node DataNode
	switch {
	case schema.IsAnyData():
		node = &DataAnydata{schema: schema}
	case schema.IsDir() || schema.IsRoot:
		node = &DataBranch{schema: schema}
	default:
		node = &DataLeaf{schema: schema}
	}
	if len(value) > 0 {
		if err := node.SetValueString(value...); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// IsValid() returns true if the node is a usable data node.
func IsValid(node DataNode) bool {
	return node != nil && !node.IsNil() && node.Schema() != nil
}

func setParent(node DataNode, parent *DataBranch) {
	switch n := node.(type) {
	case *DataBranch:
		n.parent = parent
	case *DataLeaf:
		n.parent = parent
	case *DataAnydata:
		n.parent = parent
	}
}

// GetOrNew gets or creates the child of branch with the node id.
func GetOrNew(branch DataNode, id string) (DataNode, bool, error) {
	b, ok := branch.(*DataBranch)
	if !ok {
		return nil, false, Errorf(EInval, "%q is not a branch node", branch)
	}
	pathnode, err := ParsePath(&id)
	if err != nil {
		return nil, false, err
	}
	if len(pathnode) != 1 {
		return nil, false, Errorf(EInval, "invalid node id %q", id)
	}
	return b.getOrNew(pathnode[0])
}

func (branch *DataBranch) getOrNew(pn *PathNode) (DataNode, bool, error) {
	cschema := branch.schema.GetSchema(pn.Name)
	if cschema == nil && pn.Prefix != "" {
		cschema = branch.schema.GetSchema(pn.Prefix + ":" + pn.Name)
	}
	if cschema == nil {
		return nil, false, Errorf(EInval, "schema %q not found below %q", pn.Name, branch.schema.Name)
	}
	pmap, err := predicateMap(pn.Predicates)
	if err != nil {
		return nil, false, err
	}
	id := composeID(cschema, pmap)
	if !cschema.IsListable() || cschema.IsListHasKey() {
		if found := branch.Get(id); found != nil {
			return found, false, nil
		}
	}
	var child DataNode
	if cschema.IsLeafList() {
		if v, ok := pmap["."]; ok {
			child, err = NewWithValueString(cschema, v)
		} else {
			child, err = NewWithValueString(cschema)
		}
	} else {
		child, err = NewWithValueString(cschema)
	}
	if err != nil {
		return nil, false, err
	}
	// the key leaves come first so the instance ID is complete
	for _, k := range cschema.Keyname {
		v, ok := pmap[k]
		if !ok {
			continue
		}
		kschema := cschema.GetSchema(k)
		if kschema == nil {
			return nil, false, Errorf(EInval, "key schema %q not found", k)
		}
		kn, err := NewWithValueString(kschema, v)
		if err != nil {
			return nil, false, err
		}
		if _, err := child.Insert(kn); err != nil {
			return nil, false, err
		}
	}
	if _, err := branch.Insert(child); err != nil {
		return nil, false, err
	}
	return child, true, nil
}

// Set writes the value to the data node of the path, creating the
// intermediate nodes on the way.
func Set(root DataNode, path string, value ...string) error {
	pathnode, err := ParsePath(&path)
	if err != nil {
		return err
	}
	node := root
	for i := range pathnode {
		switch pathnode[i].Select {
		case NodeSelectSelf:
			continue
		case NodeSelectParent:
			node = node.Parent()
			if node == nil {
				return Errorf(EInval, "no parent of %q", root)
			}
			continue
		case NodeSelectFromRoot:
			for node.Parent() != nil {
				node = node.Parent()
			}
		}
		branch, ok := node.(*DataBranch)
		if !ok {
			return Errorf(EInval, "%q is not a branch node", node)
		}
		next, _, err := branch.getOrNew(pathnode[i])
		if err != nil {
			return err
		}
		node = next
	}
	if len(value) > 0 {
		return node.SetValueString(value...)
	}
	return nil
}

// Find returns all data nodes of the path below root.
func Find(root DataNode, path string) ([]DataNode, error) {
	pathnode, err := ParsePath(&path)
	if err != nil {
		return nil, err
	}
	current := []DataNode{root}
	for i := range pathnode {
		var next []DataNode
		for _, node := range current {
			switch pathnode[i].Select {
			case NodeSelectSelf:
				next = append(next, node)
				continue
			case NodeSelectParent:
				if node.Parent() != nil {
					next = append(next, node.Parent())
				}
				continue
			case NodeSelectAll:
				next = append(next, node.Children()...)
				continue
			case NodeSelectFromRoot:
				for node.Parent() != nil {
					node = node.Parent()
				}
			}
			name := pathnode[i].Name
			if name == "" {
				next = append(next, node)
				continue
			}
			pmap, err := predicateMap(pathnode[i].Predicates)
			if err != nil {
				return nil, err
			}
			for _, child := range node.Children() {
				if child.Name() != name && child.Schema().GetQName() != name {
					continue
				}
				if matchPredicates(child, pmap) {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return current, nil
}

func matchPredicates(node DataNode, pmap map[string]string) bool {
	if len(pmap) == 0 {
		return true
	}
	for k, v := range pmap {
		if k == "." {
			if node.ValueString() != v {
				return false
			}
			continue
		}
		kn := node.Get(k)
		if kn == nil || kn.ValueString() != v {
			return false
		}
	}
	return true
}

// walkData visits the node and all its descendants.
func walkData(node DataNode, f func(DataNode)) {
	f(node)
	for _, child := range node.Children() {
		walkData(child, f)
	}
}

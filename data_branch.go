package yangcontext

import "strings"

// DataBranch - the node structure for container, list, rpc and
// notification data nodes.
type DataBranch struct {
	schema   *SchemaNode
	parent   *DataBranch
	children []DataNode
	metadata []*Attr
	def      bool
}

func (branch *DataBranch) IsDataNode()        {}
func (branch *DataBranch) IsNil() bool        { return branch == nil }
func (branch *DataBranch) IsBranchNode() bool { return true }
func (branch *DataBranch) IsLeafNode() bool   { return false }
func (branch *DataBranch) IsLeaf() bool       { return false }
func (branch *DataBranch) IsLeafList() bool   { return false }
func (branch *DataBranch) IsList() bool       { return branch.schema.IsList() }
func (branch *DataBranch) IsContainer() bool  { return branch.schema.IsContainer() }

func (branch *DataBranch) Name() string        { return branch.schema.Name }
func (branch *DataBranch) Schema() *SchemaNode { return branch.schema }
func (branch *DataBranch) Parent() DataNode {
	if branch.parent == nil {
		return nil
	}
	return branch.parent
}
func (branch *DataBranch) Children() []DataNode { return branch.children }
func (branch *DataBranch) Value() interface{}   { return nil }
func (branch *DataBranch) ValueString() string  { return "" }

func (branch *DataBranch) String() string { return branch.ID() }

// ID returns the instance ID of the branch. List instances carry their key
// values as predicates.
func (branch *DataBranch) ID() string {
	if !branch.schema.IsListHasKey() {
		return branch.schema.Name
	}
	var id strings.Builder
	id.WriteString(branch.schema.Name)
	for _, k := range branch.schema.Keyname {
		kn := branch.Get(k)
		if kn == nil {
			break
		}
		id.WriteString("[")
		id.WriteString(k)
		id.WriteString("=")
		id.WriteString(kn.ValueString())
		id.WriteString("]")
	}
	return id.String()
}

func (branch *DataBranch) Path() string {
	if branch == nil {
		return ""
	}
	if branch.schema.IsRoot {
		return ""
	}
	if branch.parent != nil {
		return branch.parent.Path() + "/" + branch.ID()
	}
	return "/" + branch.ID()
}

// Insert appends the child node. A single-instance sibling with the same
// ID is replaced and returned.
func (branch *DataBranch) Insert(child DataNode) (DataNode, error) {
	if !IsValid(child) {
		return nil, Errorf(EInval, "invalid child node inserted to %q", branch)
	}
	if child.Parent() != nil {
		return nil, Errorf(EInval, "node %q is already inserted", child)
	}
	cschema := child.Schema()
	if branch.schema.GetSchema(cschema.GetQName()) != cschema &&
		branch.schema.GetSchema(cschema.Name) != cschema {
		return nil, Errorf(EInval, "schema %q is not a child of %q", cschema.Name, branch.schema.Name)
	}
	var old DataNode
	if !cschema.IsListable() {
		id := child.ID()
		for i := range branch.children {
			if branch.children[i].Schema() == cschema && branch.children[i].ID() == id {
				old = branch.children[i]
				setParent(old, nil)
				branch.children[i] = child
				setParent(child, branch)
				return old, nil
			}
		}
	}
	branch.children = append(branch.children, child)
	setParent(child, branch)
	return nil, nil
}

// Delete removes the child node.
func (branch *DataBranch) Delete(child DataNode) error {
	for i := range branch.children {
		if branch.children[i] == child {
			branch.children = append(branch.children[:i], branch.children[i+1:]...)
			setParent(child, nil)
			return nil
		}
	}
	return Errorf(EInval, "node %q not found in %q", child, branch)
}

// Get returns the first child having the id. A bare name matches the
// first instance.
func (branch *DataBranch) Get(id string) DataNode {
	for i := range branch.children {
		if branch.children[i].Name() == id || branch.children[i].ID() == id {
			return branch.children[i]
		}
	}
	return nil
}

// GetAll returns all children having the id.
func (branch *DataBranch) GetAll(id string) []DataNode {
	var all []DataNode
	for i := range branch.children {
		if branch.children[i].Name() == id || branch.children[i].ID() == id {
			all = append(all, branch.children[i])
		}
	}
	return all
}

func (branch *DataBranch) Len() int { return len(branch.children) }

func (branch *DataBranch) Child(index int) DataNode {
	if index < 0 || index >= len(branch.children) {
		return nil
	}
	return branch.children[index]
}

// SetValueString is not supported on branch nodes.
func (branch *DataBranch) SetValueString(value ...string) error {
	if len(value) == 0 {
		return nil
	}
	return Errorf(EInval, "branch node %q takes no value", branch)
}

func (branch *DataBranch) IsDefault() bool     { return branch.def }
func (branch *DataBranch) SetDefault(on bool)  { branch.def = on }
func (branch *DataBranch) Metadata() []*Attr   { return branch.metadata }
func (branch *DataBranch) SetMetadata(a *Attr) { branch.metadata = append(branch.metadata, a) }

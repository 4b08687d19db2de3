package yangcontext

import "bytes"

// Equal compares two data trees structurally: same schema nodes, same
// canonical values, same default flags and metadata, children in the
// same order.
func Equal(a, b DataNode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Schema() != b.Schema() {
		return false
	}
	if a.IsDefault() != b.IsDefault() {
		return false
	}
	if !equalMetadata(a.Metadata(), b.Metadata()) {
		return false
	}
	switch an := a.(type) {
	case *DataLeaf:
		bn, ok := b.(*DataLeaf)
		if !ok {
			return false
		}
		return an.ValueString() == bn.ValueString()
	case *DataAnydata:
		bn, ok := b.(*DataAnydata)
		if !ok {
			return false
		}
		ab, aok := an.value.([]byte)
		bb, bok := bn.value.([]byte)
		if aok != bok {
			return false
		}
		if aok {
			return bytes.Equal(ab, bb)
		}
		return an.ValueString() == bn.ValueString()
	case *DataBranch:
		bn, ok := b.(*DataBranch)
		if !ok {
			return false
		}
		if len(an.children) != len(bn.children) {
			return false
		}
		for i := range an.children {
			if !Equal(an.children[i], bn.children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func equalMetadata(a, b []*Attr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Module != b[i].Module || a[i].Name != b[i].Name || a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

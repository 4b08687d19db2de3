package yangcontext

import (
	"strings"
)

type NodeSelect int

const (
	NodeSelectChild    NodeSelect = iota // select children by name
	NodeSelectSelf                       // the path element is `.`
	NodeSelectFromRoot                   // the path starts with `/`
	NodeSelectParent                     // the path element is `..`
	NodeSelectAll                        // wildcard `*`
)

// PathNode is one element of a parsed node path.
type PathNode struct {
	Prefix     string
	Name       string
	Select     NodeSelect
	Predicates []string
}

// ParsePath splits a node path (/a/b[k=v]/c) into path elements. The
// predicates are kept verbatim.
func ParsePath(path *string) ([]*PathNode, error) {
	nodes := make([]*PathNode, 0, 8)
	p := *path
	length := len(p)
	begin, end := 0, 0
	insideBrackets := 0
	fromRoot := false
	if length > 0 && p[0] == '/' {
		fromRoot = true
		begin, end = 1, 1
	}
	flush := func(elem string, root bool) error {
		if elem == "" {
			return nil
		}
		node := &PathNode{Select: NodeSelectChild}
		if root {
			node.Select = NodeSelectFromRoot
		}
		if i := strings.IndexByte(elem, '['); i >= 0 {
			preds, err := splitPredicates(elem[i:])
			if err != nil {
				return err
			}
			node.Predicates = preds
			elem = elem[:i]
		}
		switch elem {
		case ".":
			node.Select = NodeSelectSelf
			nodes = append(nodes, node)
			return nil
		case "..":
			node.Select = NodeSelectParent
			nodes = append(nodes, node)
			return nil
		case "*":
			node.Select = NodeSelectAll
			nodes = append(nodes, node)
			return nil
		}
		if i := strings.IndexByte(elem, ':'); i >= 0 && insideBrackets == 0 {
			node.Prefix = elem[:i]
			elem = elem[i+1:]
		}
		node.Name = elem
		nodes = append(nodes, node)
		return nil
	}
	for end < length {
		switch p[end] {
		case '/':
			if insideBrackets == 0 {
				if err := flush(p[begin:end], fromRoot && len(nodes) == 0); err != nil {
					return nil, err
				}
				begin = end + 1
			}
		case '[':
			if end == 0 || p[end-1] != '\\' {
				insideBrackets++
			}
		case ']':
			if end == 0 || p[end-1] != '\\' {
				insideBrackets--
				if insideBrackets < 0 {
					return nil, Errorf(EInval, "unbalanced brackets in %q", p)
				}
			}
		}
		end++
	}
	if insideBrackets != 0 {
		return nil, Errorf(EInval, "unbalanced brackets in %q", p)
	}
	if err := flush(p[begin:end], fromRoot && len(nodes) == 0); err != nil {
		return nil, err
	}
	return nodes, nil
}

// splitPredicates splits "[k1=v1][k2=v2]" into "k1=v1", "k2=v2".
func splitPredicates(s string) ([]string, error) {
	var preds []string
	depth := 0
	begin := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			if i == 0 || s[i-1] != '\\' {
				if depth == 0 {
					begin = i + 1
				}
				depth++
			}
		case ']':
			if i == 0 || s[i-1] != '\\' {
				depth--
				if depth == 0 {
					preds = append(preds, s[begin:i])
				}
				if depth < 0 {
					return nil, Errorf(EInval, "unbalanced predicate in %q", s)
				}
			}
		}
	}
	if depth != 0 {
		return nil, Errorf(EInval, "unbalanced predicate in %q", s)
	}
	return preds, nil
}

// predicateMap turns the predicates of a path element into a value map.
// The leaf-list value predicate is keyed ".".
func predicateMap(preds []string) (map[string]string, error) {
	if len(preds) == 0 {
		return nil, nil
	}
	pmap := make(map[string]string, len(preds))
	for _, p := range preds {
		i := strings.IndexByte(p, '=')
		if i < 0 {
			return nil, Errorf(EInval, "predicate %q has no value", p)
		}
		key := p[:i]
		if j := strings.IndexByte(key, ':'); j >= 0 {
			key = key[j+1:]
		}
		pmap[key] = strings.Trim(p[i+1:], `'"`)
	}
	return pmap, nil
}

// composeID builds the node ID (NAME[KEY=VALUE]...) of a schema node from
// its predicate map.
func composeID(schema *SchemaNode, pmap map[string]string) string {
	switch {
	case schema.IsListHasKey():
		var id strings.Builder
		id.WriteString(schema.Name)
		for _, k := range schema.Keyname {
			v, ok := pmap[k]
			if !ok {
				break
			}
			id.WriteString("[")
			id.WriteString(k)
			id.WriteString("=")
			id.WriteString(v)
			id.WriteString("]")
		}
		return id.String()
	case schema.IsLeafList():
		if v, ok := pmap["."]; ok {
			return schema.Name + "[.=" + v + "]"
		}
	}
	return schema.Name
}

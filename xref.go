package yangcontext

import (
	"github.com/openconfig/goyang/pkg/yang"
)

// xrefIndex holds the reverse edges of the schema cross-references:
// identity bases to derived identities, features to the features depending
// on them, and leafref targets back to the referencing leaves. The edges
// live on the target side; sources never carry them.
type xrefIndex struct {
	derived    map[*Identity][]*Identity
	dependents map[*Feature][]*Feature
	backlinks  map[*SchemaNode][]*SchemaNode
}

func newXrefIndex() *xrefIndex {
	return &xrefIndex{
		derived:    map[*Identity][]*Identity{},
		dependents: map[*Feature][]*Feature{},
		backlinks:  map[*SchemaNode][]*SchemaNode{},
	}
}

// build adds the back-edges contributed by the implemented members of the
// module set.
func (x *xrefIndex) build(set []*Module) {
	for _, m := range set {
		if !m.Implemented || m.Disabled {
			continue
		}
		for _, id := range m.Identities {
			for _, base := range id.Bases {
				x.derived[base] = append(x.derived[base], id)
			}
		}
		for _, f := range m.Features {
			for _, expr := range f.IfFeature {
				for _, name := range featureRefs(expr) {
					if ref := m.resolveFeatureRef(name); ref != nil {
						x.dependents[ref] = append(x.dependents[ref], f)
					}
				}
			}
		}
		for _, top := range m.Schemas {
			walkSchema(top, func(sn *SchemaNode) {
				if sn.LeafrefTarget != nil {
					x.backlinks[sn.LeafrefTarget] = append(x.backlinks[sn.LeafrefTarget], sn)
				}
			})
		}
	}
}

// teardown removes every back-edge whose source module belongs to the set.
// A nil set tears the whole index down. Sets left empty are dropped.
func (x *xrefIndex) teardown(set map[*Module]bool) {
	inSet := func(m *Module) bool { return set == nil || set[m] }
	for base, list := range x.derived {
		kept := list[:0]
		for _, id := range list {
			if !inSet(id.Module) {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(x.derived, base)
		} else {
			x.derived[base] = kept
		}
	}
	for target, list := range x.dependents {
		kept := list[:0]
		for _, f := range list {
			if !inSet(f.Module) {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(x.dependents, target)
		} else {
			x.dependents[target] = kept
		}
	}
	for target, list := range x.backlinks {
		kept := list[:0]
		for _, sn := range list {
			if !inSet(sn.Module) {
				kept = append(kept, sn)
			}
		}
		if len(kept) == 0 {
			delete(x.backlinks, target)
		} else {
			x.backlinks[target] = kept
		}
	}
}

// edgeCount returns the total number of reverse edges per kind.
func (x *xrefIndex) edgeCount() (identities, features, leafrefs int) {
	for _, list := range x.derived {
		identities += len(list)
	}
	for _, list := range x.dependents {
		features += len(list)
	}
	for _, list := range x.backlinks {
		leafrefs += len(list)
	}
	return
}

// DerivedIdentities returns the identities directly derived from base.
func (c *Context) DerivedIdentities(base *Identity) []*Identity {
	return c.xref.derived[base]
}

// FeatureDependents returns the features whose if-feature refers to f.
func (c *Context) FeatureDependents(f *Feature) []*Feature {
	return c.xref.dependents[f]
}

// LeafrefBacklinks returns the leafref schema nodes targeting the node.
func (c *Context) LeafrefBacklinks(target *SchemaNode) []*SchemaNode {
	return c.xref.backlinks[target]
}

// FindIdentity resolves a possibly module-qualified identity name against
// the enabled modules of the context.
func (c *Context) FindIdentity(qname string) *Identity {
	modname, name := SplitQName(qname)
	for _, m := range c.modules {
		if m.Disabled {
			continue
		}
		if modname != "" && m.Name != modname {
			continue
		}
		if id := m.Identity(name); id != nil {
			return id
		}
	}
	return nil
}

// IdentityIsDerivedFrom walks the base DAG upward.
func IdentityIsDerivedFrom(id, base *Identity) bool {
	for _, b := range id.Bases {
		if b == base || IdentityIsDerivedFrom(b, base) {
			return true
		}
	}
	return false
}

// resolveFeatureRef finds the feature a possibly prefixed if-feature name
// refers to, using the import prefixes of the defining module.
func (m *Module) resolveFeatureRef(name string) *Feature {
	prefix, fname := SplitQName(name)
	target := m
	if prefix != "" && m.Mod.Prefix != nil && prefix != m.Mod.Prefix.Name {
		ym := yang.FindModuleByPrefix(m.Mod, prefix)
		if ym == nil {
			return nil
		}
		if found := m.ctx.byMod[ym]; found != nil {
			target = found
		} else {
			return nil
		}
	}
	return target.Feature(fname)
}

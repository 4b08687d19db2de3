package yangcontext

import (
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// Module is a schema module installed in a Context. It wraps the parsed
// module and carries the registry state (conformance, disable flag,
// latest-revision marker) that the parser does not track.
type Module struct {
	Mod       *yang.Module // parsed module handed over by the schema parser
	Name      string
	Revision  string // empty if the module has no revision statement
	Namespace string
	Filepath  string // file of origin, empty for built-in and callback modules

	Implemented bool // implemented vs. import-only conformance
	Disabled    bool
	Latest      bool // newest revision among the same-name modules

	Imports    []*Module
	Includes   []*Submodule
	Features   []*Feature
	Identities []*Identity

	// Schemas are the top-level schema nodes of the module.
	// Built only for enabled implemented modules.
	Schemas []*SchemaNode

	internal bool
	ctx      *Context
}

// Submodule belongs to exactly one parent module and shares its namespace.
type Submodule struct {
	Mod      *yang.Module
	Name     string
	Revision string
	Parent   *Module
	Disabled bool
}

// Feature is a module feature with its if-feature condition.
type Feature struct {
	Name      string
	Module    *Module
	Enabled   bool
	IfFeature []string // raw if-feature expressions
}

// Identity is a named singleton. Derived identities point at their bases;
// the reverse edges live in the context cross-reference index.
type Identity struct {
	Name   string
	Module *Module
	Bases  []*Identity
}

func (m *Module) String() string {
	if m.Revision == "" {
		return m.Name
	}
	return m.Name + "@" + m.Revision
}

// IsInternal() returns true if the module is one of the built-in modules
// preloaded at context creation.
func (m *Module) IsInternal() bool { return m.internal }

// Feature returns the module feature with the name if it is present.
func (m *Module) Feature(name string) *Feature {
	for i := range m.Features {
		if m.Features[i].Name == name {
			return m.Features[i]
		}
	}
	return nil
}

// Identity returns the module identity with the name if it is present.
func (m *Module) Identity(name string) *Identity {
	for i := range m.Identities {
		if m.Identities[i].Name == name {
			return m.Identities[i]
		}
	}
	return nil
}

// importsModule reports whether m imports dep directly.
func (m *Module) importsModule(dep *Module) bool {
	for i := range m.Imports {
		if m.Imports[i] == dep {
			return true
		}
	}
	return false
}

func (f *Feature) String() string { return f.Module.Name + ":" + f.Name }

func (i *Identity) String() string { return i.Module.Name + ":" + i.Name }

// QName returns the module-qualified identity name, "module:identity".
// Identityref leaf values hold the bare identity name, not this form.
func (i *Identity) QName() string { return i.Module.Name + ":" + i.Name }

// revisionLess compares two YYYY-MM-DD revision dates. An empty revision is
// older than any dated one.
func revisionLess(a, b string) bool {
	if a == b {
		return false
	}
	if a == "" {
		return true
	}
	if b == "" {
		return false
	}
	return a < b
}

// moduleRevision extracts the newest revision date of a parsed module.
func moduleRevision(m *yang.Module) string {
	return m.Current()
}

// moduleNamespace extracts the namespace of a parsed module. A submodule
// shares the namespace of the module it belongs to.
func moduleNamespace(m *yang.Module) string {
	if m.Namespace != nil {
		return m.Namespace.Name
	}
	return ""
}

// splitModuleName splits "name@revision" file-style module names.
func splitModuleName(name string) (string, string) {
	if i := strings.IndexByte(name, '@'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// newModule wraps a parsed module into a registry record. Imports, includes
// and cross-module identity bases are bound later by bindModule once all
// records of the parse round exist.
func newModule(c *Context, ym *yang.Module, implemented bool) *Module {
	m := &Module{
		Mod:         ym,
		Name:        ym.Name,
		Revision:    moduleRevision(ym),
		Namespace:   moduleNamespace(ym),
		Implemented: implemented,
		ctx:         c,
	}
	for i := range ym.Feature {
		f := &Feature{
			Name:   ym.Feature[i].Name,
			Module: m,
		}
		for _, iff := range ym.Feature[i].IfFeature {
			f.IfFeature = append(f.IfFeature, iff.Name)
		}
		m.Features = append(m.Features, f)
	}
	for i := range ym.Identity {
		m.Identities = append(m.Identities, &Identity{
			Name:   ym.Identity[i].Name,
			Module: m,
		})
	}
	return m
}

// bindModule resolves the import, include and identity-base edges of m
// against the other registry records. byMod maps every parsed module to
// its record.
func (c *Context) bindModule(m *Module, byMod map[*yang.Module]*Module) {
	m.Imports = m.Imports[:0]
	for _, imp := range m.Mod.Import {
		if imp.Module == nil {
			continue
		}
		if im := byMod[imp.Module]; im != nil && !m.importsModule(im) {
			m.Imports = append(m.Imports, im)
		}
	}
	m.Includes = m.Includes[:0]
	for _, inc := range m.Mod.Include {
		if inc.Module == nil {
			continue
		}
		m.Includes = append(m.Includes, &Submodule{
			Mod:      inc.Module,
			Name:     inc.Module.Name,
			Revision: moduleRevision(inc.Module),
			Parent:   m,
		})
	}
	for i, id := range m.Mod.Identity {
		rec := m.Identities[i]
		rec.Bases = rec.Bases[:0]
		if len(id.Base) == 0 {
			continue
		}
		prefix, base := SplitQName(id.Base[0].Name)
		bm := m
		if prefix != "" {
			if ym := yang.FindModuleByPrefix(m.Mod, prefix); ym != nil {
				if found := byMod[ym]; found != nil {
					bm = found
				}
			}
		}
		if b := bm.Identity(base); b != nil {
			rec.Bases = append(rec.Bases, b)
		}
	}
}

// SplitQName splits a "prefix:name" qualified name.
func SplitQName(qname string) (string, string) {
	if i := strings.Index(qname, ":"); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}

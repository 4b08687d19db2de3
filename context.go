package yangcontext

import (
	"io"
	"os"
	"path/filepath"

	"github.com/openconfig/goyang/pkg/yang"
)

// ContextOptions is the flag set of a Context.
type ContextOptions uint32

const (
	// NoYangLibrary skips the ietf-yang-library and ietf-datastores built-ins.
	NoYangLibrary ContextOptions = 1 << iota
	// DisableSearchDirs turns the search-directory loader off.
	DisableSearchDirs
	// DisableSearchCwd keeps the working directory out of the module search.
	DisableSearchCwd
	// PreferSearchDirs consults the search directories before the import callback.
	PreferSearchDirs
	// AllImplemented makes every loaded module implemented, imports included.
	AllImplemented
	// Trusted is kept in the option set; no code of this package reads it.
	Trusted
)

// ImportFormat is the schema input format of a loader callback.
type ImportFormat int

const (
	FormatYANG ImportFormat = iota // compact text form
	FormatYIN                      // XML form; not supported by the parser
)

// ModuleData is a schema source returned by an import callback.
type ModuleData struct {
	Data   []byte
	Format ImportFormat
	Free   func() // optional; called after the buffer was parsed
}

// ImportCallback feeds module sources into the loader. Returning (nil, nil)
// means "not found here, try the next loader".
type ImportCallback func(modName, modRev, submodName, submodRev string, userData interface{}) (*ModuleData, error)

// DataCallback is consulted by the LYB decoder when a referenced module is
// missing or not implemented. It may load the module as a side effect.
type DataCallback func(c *Context, name, namespace string, userData interface{}) (*Module, error)

// Context owns the installed schema modules and the indexes over them.
// The mutating API (load, enable, disable, remove) is single-threaded;
// read-only use is safe from several goroutines when no mutation runs.
type Context struct {
	ms      *yang.Modules
	modules []*Module // insertion order; the internal-module prefix first
	byMod   map[*yang.Module]*Module

	internalCount int
	searchdirs    []string
	options       ContextOptions
	moduleSetID   uint32

	importClb  ImportCallback
	importData interface{}
	dataClb    DataCallback
	dataData   interface{}

	root        *SchemaNode // synthetic root over all enabled implemented modules
	xref        *xrefIndex
	annotations map[string]*SchemaNode // "module:annotation" metadata schemas
	plugins     *PluginRegistry

	errs      []*Error
	destroyed bool
}

// New creates a Context with the built-in modules preloaded.
// Every search directory must exist and be readable.
func New(searchdirs []string, options ContextOptions) (*Context, error) {
	c := &Context{
		ms:          yang.NewModules(),
		byMod:       map[*yang.Module]*Module{},
		options:     options,
		xref:        newXrefIndex(),
		annotations: map[string]*SchemaNode{},
		plugins:     acquirePlugins(),
	}
	for _, dir := range searchdirs {
		if err := c.SetSearchDir(dir); err != nil {
			return nil, err
		}
	}
	if err := c.loadInternalModules(); err != nil {
		return nil, err
	}
	c.rebuild()
	c.moduleSetID = 1
	return c, nil
}

// SetOption sets flags of the context flag set.
func (c *Context) SetOption(o ContextOptions) { c.options |= o }

// UnsetOption clears flags of the context flag set.
func (c *Context) UnsetOption(o ContextOptions) { c.options &^= o }

// Option reports whether all the given flags are set.
func (c *Context) Option(o ContextOptions) bool { return c.options&o == o }

// SetSearchDir appends a module search directory. The path is canonicalized
// and silently ignored if already present.
func (c *Context) SetSearchDir(dir string) error {
	canon, err := canonicalDir(dir)
	if err != nil {
		return c.record(WrapErrorf(ESys, err, "search dir %q is not usable", dir))
	}
	for i := range c.searchdirs {
		if c.searchdirs[i] == canon {
			return nil
		}
	}
	c.searchdirs = append(c.searchdirs, canon)
	yang.AddPath(canon)
	return nil
}

// UnsetSearchDir removes the search directory at the index.
func (c *Context) UnsetSearchDir(index int) error {
	if index < 0 || index >= len(c.searchdirs) {
		return c.record(Errorf(EInval, "search dir index %d out of range", index))
	}
	c.searchdirs = append(c.searchdirs[:index], c.searchdirs[index+1:]...)
	return nil
}

// UnsetSearchDirs removes all search directories.
func (c *Context) UnsetSearchDirs() { c.searchdirs = nil }

// SearchDirs returns the canonical search directories in insertion order.
func (c *Context) SearchDirs() []string {
	dirs := make([]string, len(c.searchdirs))
	copy(dirs, c.searchdirs)
	return dirs
}

// canonicalDir resolves symlinks and verifies the directory is readable.
func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	f, err := os.Open(canon)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		return "", err
	}
	return canon, nil
}

// SetImportCallback installs the module import callback.
func (c *Context) SetImportCallback(clb ImportCallback, userData interface{}) {
	c.importClb = clb
	c.importData = userData
}

// SetDataCallback installs the missing-module callback of the LYB decoder.
func (c *Context) SetDataCallback(clb DataCallback, userData interface{}) {
	c.dataClb = clb
	c.dataData = userData
}

// ModuleSetID returns the monotonically increasing stamp of the module
// composition. It grows on every add, remove, enable and disable.
func (c *Context) ModuleSetID() uint32 { return c.moduleSetID }

// InternalModuleCount returns the number of preloaded built-in modules.
func (c *Context) InternalModuleCount() int { return c.internalCount }

// GetModule returns the module with the name and revision. An empty
// revision selects the newest revision present.
func (c *Context) GetModule(name, revision string) *Module {
	return c.findModule(name, revision, false)
}

// GetModuleLatest returns the newest revision of the named module.
func (c *Context) GetModuleLatest(name string) *Module {
	return c.findModule(name, "", false)
}

// GetModuleImplemented returns the implemented revision of the named module
// even when a newer import-only revision is present.
func (c *Context) GetModuleImplemented(name string) *Module {
	return c.findModule(name, "", true)
}

func (c *Context) findModule(name, revision string, requireImplemented bool) *Module {
	var latest *Module
	for _, m := range c.modules {
		if m.Disabled || m.Name != name {
			continue
		}
		if revision != "" {
			if m.Revision == revision {
				return m
			}
			continue
		}
		if requireImplemented && m.Implemented {
			return m
		}
		if latest == nil || revisionLess(latest.Revision, m.Revision) {
			latest = m
		}
	}
	if revision != "" || requireImplemented {
		return nil
	}
	return latest
}

// GetModuleByNamespace returns the module bound to the namespace URI.
func (c *Context) GetModuleByNamespace(ns, revision string) *Module {
	var latest *Module
	for _, m := range c.modules {
		if m.Disabled || m.Namespace != ns {
			continue
		}
		if revision != "" {
			if m.Revision == revision {
				return m
			}
			continue
		}
		if latest == nil || revisionLess(latest.Revision, m.Revision) {
			latest = m
		}
	}
	return latest
}

// NextModule iterates over the enabled modules. The cursor starts at zero.
func (c *Context) NextModule(cursor *int) *Module {
	for *cursor < len(c.modules) {
		m := c.modules[*cursor]
		*cursor++
		if !m.Disabled {
			return m
		}
	}
	return nil
}

// NextDisabledModule iterates over the disabled modules.
func (c *Context) NextDisabledModule(cursor *int) *Module {
	for *cursor < len(c.modules) {
		m := c.modules[*cursor]
		*cursor++
		if m.Disabled {
			return m
		}
	}
	return nil
}

// Modules returns the enabled modules in insertion order.
func (c *Context) Modules() []*Module {
	mods := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		if !m.Disabled {
			mods = append(mods, m)
		}
	}
	return mods
}

// RootSchema returns the synthetic root schema node spanning all enabled
// implemented modules. Data trees are built under it.
func (c *Context) RootSchema() *SchemaNode { return c.root }

// AnnotationSchema returns the metadata annotation schema registered by the
// module, or nil.
func (c *Context) AnnotationSchema(moduleName, name string) *SchemaNode {
	return c.annotations[moduleName+":"+name]
}

// Plugins returns the type-plugin registry shared by the context.
func (c *Context) Plugins() *PluginRegistry { return c.plugins }

// Destroy drops every module of the context in reverse insertion order.
// The optional destructor runs on each schema node private slot.
func (c *Context) Destroy(priv func(*SchemaNode)) {
	if c.destroyed {
		return
	}
	if priv != nil {
		for i := len(c.modules) - 1; i >= 0; i-- {
			for _, top := range c.modules[i].Schemas {
				walkSchema(top, func(sn *SchemaNode) {
					if sn.Private != nil {
						priv(sn)
					}
				})
			}
		}
	}
	for i := len(c.modules) - 1; i >= 0; i-- {
		c.modules[i].Schemas = nil
		c.modules[i].ctx = nil
	}
	c.modules = nil
	c.byMod = nil
	c.root = nil
	c.xref = newXrefIndex()
	c.errs = nil
	c.destroyed = true
	releasePlugins(c.plugins)
	c.plugins = nil
}

// bumpSetID stamps a registry mutation.
func (c *Context) bumpSetID() { c.moduleSetID++ }

// rebuild reconstructs the schema tree and the cross-reference index for
// the current enabled set. Called after every registry mutation.
func (c *Context) rebuild() {
	c.buildRootSchema()
	c.xref = newXrefIndex()
	enabled := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		if !m.Disabled {
			enabled = append(enabled, m)
		}
	}
	c.evaluateFeatures(enabled)
	c.xref.build(enabled)
	c.collectAnnotations(enabled)
}

func walkSchema(sn *SchemaNode, f func(*SchemaNode)) {
	f(sn)
	for _, child := range sn.Children {
		walkSchema(child, f)
	}
}

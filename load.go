package yangcontext

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/openconfig/goyang/pkg/yang"
)

// LoadModule loads the module into the context and implements it.
// An empty revision selects the newest revision available.
func (c *Context) LoadModule(name, revision string) (*Module, error) {
	if c.destroyed {
		return nil, c.record(Errorf(EInval, "context already destroyed"))
	}
	if name == "" {
		return nil, c.record(Errorf(EInval, "module name must not be empty"))
	}
	m, err := c.loadModule(name, revision, true)
	if err != nil {
		return nil, err
	}
	c.rebuild()
	return m, nil
}

// loadModule runs the loader chain: registry cache, import callback and
// search directories, honoring the PreferSearchDirs flag.
func (c *Context) loadModule(name, revision string, implement bool) (*Module, error) {
	// cache scan
	if m := c.cachedModule(name, revision, implement); m != nil {
		if m.Disabled {
			if err := c.EnableModule(m); err != nil {
				return nil, err
			}
		}
		if implement && !m.Implemented {
			m.Implemented = true
			c.bumpSetID()
		}
		return m, nil
	}

	fetch := [2]func(name, revision string) (*Module, error){
		c.fetchCallback,
		c.fetchSearchDirs,
	}
	if c.Option(PreferSearchDirs) {
		fetch[0], fetch[1] = fetch[1], fetch[0]
	}
	var m *Module
	var err error
	for _, f := range fetch {
		m, err = f(name, revision)
		if err != nil {
			return nil, err
		}
		if m != nil {
			break
		}
	}
	if m == nil {
		return nil, c.record(Errorf(EInval, "module %q not found", moduleKey(name, revision)))
	}

	// revision reconciliation: a candidate older than a cached same-name
	// module is discarded in favor of the cached one.
	if cached := c.GetModuleLatest(name); revision == "" && cached != nil && cached != m &&
		revisionLess(m.Revision, cached.Revision) {
		c.unlinkModule(m)
		m = cached
	}
	if implement && !m.Implemented {
		m.Implemented = true
	}
	return m, nil
}

// cachedModule scans the registry for a module satisfying the request:
// an exact revision match, the latest-revision entry for a revisionless
// request, or an implemented entry when implementing anyway.
func (c *Context) cachedModule(name, revision string, implement bool) *Module {
	for _, m := range c.modules {
		if m.Name != name {
			continue
		}
		if revision != "" {
			if m.Revision == revision {
				return m
			}
			continue
		}
		if m.Latest {
			return m
		}
		if implement && m.Implemented {
			return m
		}
	}
	return nil
}

// fetchCallback asks the user import callback for the module source.
func (c *Context) fetchCallback(name, revision string) (*Module, error) {
	if c.importClb == nil {
		return nil, nil
	}
	md, err := c.importClb(name, revision, "", "", c.importData)
	if err != nil {
		return nil, c.record(WrapErrorf(EInval, err, "import callback failed for %q", name))
	}
	if md == nil || md.Data == nil {
		return nil, nil
	}
	defer func() {
		if md.Free != nil {
			md.Free()
		}
	}()
	if md.Format == FormatYIN {
		return nil, c.record(Errorf(EInval, "YIN input for %q is not supported by the schema parser", name))
	}
	return c.parseModule(string(md.Data), moduleKey(name, revision)+".yang", name, revision, "")
}

// fetchSearchDirs looks for name[@revision].yang below the search
// directories and the working directory.
func (c *Context) fetchSearchDirs(name, revision string) (*Module, error) {
	if c.Option(DisableSearchDirs) {
		return nil, nil
	}
	dirs := c.searchdirs
	if !c.Option(DisableSearchCwd) {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(append([]string{}, dirs...), cwd)
		}
	}
	path := searchLocalFile(dirs, name, revision)
	if path == "" {
		return nil, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, c.record(WrapErrorf(ESys, err, "unable to read %q", path))
	}
	return c.parseModule(string(data), filepath.Base(path), name, revision, path)
}

// searchLocalFile returns the best candidate file for the module. With no
// requested revision the newest revision claimed by a filename wins.
func searchLocalFile(dirs []string, name, revision string) string {
	type candidate struct {
		path     string
		revision string
	}
	var found []candidate
	for _, dir := range dirs {
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			ext := filepath.Ext(base)
			if ext != ".yang" {
				if ext == ".yin" && strings.HasPrefix(base, name) {
					glog.Warningf("skipping YIN file %q: format not supported", path)
				}
				return nil
			}
			fname, frev := splitModuleName(strings.TrimSuffix(base, ext))
			if fname != name {
				return nil
			}
			if revision != "" && frev != "" && frev != revision {
				return nil
			}
			found = append(found, candidate{path: path, revision: frev})
			return nil
		})
	}
	if len(found) == 0 {
		return ""
	}
	sort.SliceStable(found, func(i, j int) bool {
		return revisionLess(found[j].revision, found[i].revision)
	})
	if revision != "" {
		for _, f := range found {
			if f.revision == revision {
				return f.path
			}
		}
	}
	return found[0].path
}

// parseModule feeds one module source to the schema parser and registers
// everything the parse round added, returning the requested module.
func (c *Context) parseModule(data, sourceName, name, revision, path string) (*Module, error) {
	if err := c.ms.Parse(data, sourceName); err != nil {
		return nil, c.record(WrapErrorf(EInval, err, "parsing %q failed", sourceName))
	}
	if errs := c.ms.Process(); len(errs) > 0 {
		return nil, c.record(WrapErrorf(EInval, errs[0], "processing %q failed (%d errors)", sourceName, len(errs)))
	}
	c.registerParsedModules(name, path)
	m := c.GetModule(name, revision)
	if m == nil && revision == "" {
		m = c.GetModuleLatest(name)
	}
	if m == nil {
		return nil, c.record(Errorf(EInval, "source %q does not contain module %q", sourceName, name))
	}
	if m.Filepath != "" {
		fname, frev := splitModuleName(strings.TrimSuffix(filepath.Base(m.Filepath), ".yang"))
		if fname != m.Name || (frev != "" && frev != m.Revision) {
			glog.Warningf("file %q claims %s but contains %s", m.Filepath, moduleKey(fname, frev), m)
		}
	}
	return m, nil
}

// registerParsedModules wraps every parsed module that has no registry
// record yet. Modules pulled in as dependencies become import-only; the
// additions of one parse round register in name order.
func (c *Context) registerParsedModules(requested, path string) {
	seen := map[*yang.Module]bool{}
	var fresh []*yang.Module
	for _, key := range sortedModuleKeys(c.ms.Modules) {
		ym := c.ms.Modules[key]
		if seen[ym] {
			continue
		}
		seen[ym] = true
		if _, ok := c.byMod[ym]; ok {
			continue
		}
		fresh = append(fresh, ym)
	}
	if len(fresh) == 0 {
		return
	}
	for _, ym := range fresh {
		m := newModule(c, ym, c.Option(AllImplemented))
		if m.Name == requested {
			m.Filepath = path
		}
		c.byMod[ym] = m
		c.modules = append(c.modules, m)
	}
	for _, m := range c.modules {
		c.bindModule(m, c.byMod)
	}
	c.markLatest()
	c.bumpSetID()
}

// markLatest refreshes the latest-revision markers per module name.
func (c *Context) markLatest() {
	latest := map[string]*Module{}
	for _, m := range c.modules {
		cur := latest[m.Name]
		if cur == nil || revisionLess(cur.Revision, m.Revision) {
			latest[m.Name] = m
		}
	}
	for _, m := range c.modules {
		m.Latest = latest[m.Name] == m
	}
}

// unlinkModule drops a just-parsed module again (revision reconciliation).
func (c *Context) unlinkModule(m *Module) {
	for i := range c.modules {
		if c.modules[i] == m {
			c.modules = append(c.modules[:i], c.modules[i+1:]...)
			break
		}
	}
	delete(c.byMod, m.Mod)
	c.removeFromParser(m)
	c.markLatest()
}

// removeFromParser unbinds the parsed module from the parser registry so a
// later load can bring in another revision.
func (c *Context) removeFromParser(m *Module) {
	for key, ym := range c.ms.Modules {
		if ym == m.Mod {
			delete(c.ms.Modules, key)
		}
	}
	// re-point the plain-name alias at the newest surviving revision
	var newest *Module
	for _, o := range c.modules {
		if o.Name == m.Name && (newest == nil || revisionLess(newest.Revision, o.Revision)) {
			newest = o
		}
	}
	if newest != nil {
		c.ms.Modules[m.Name] = newest.Mod
	}
}

func sortedModuleKeys(mods map[string]*yang.Module) []string {
	keys := make([]string, 0, len(mods))
	for key := range mods {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func moduleKey(name, revision string) string {
	if revision == "" {
		return name
	}
	return name + "@" + revision
}

// loadInternalModules preloads the built-in modules of every context.
func (c *Context) loadInternalModules() error {
	builtins := internalModuleSources(!c.Option(NoYangLibrary))
	for _, b := range builtins {
		if err := c.ms.Parse(b.data, b.name+".yang"); err != nil {
			return c.record(WrapErrorf(EInt, err, "built-in module %q is broken", b.name))
		}
	}
	if errs := c.ms.Process(); len(errs) > 0 {
		return c.record(WrapErrorf(EInt, errs[0], "built-in module processing failed"))
	}
	for _, b := range builtins {
		ym := c.ms.Modules[b.name]
		if ym == nil {
			return c.record(Errorf(EInt, "built-in module %q did not register", b.name))
		}
		if _, ok := c.byMod[ym]; ok {
			continue
		}
		m := newModule(c, ym, b.implemented)
		m.internal = true
		c.byMod[ym] = m
		c.modules = append(c.modules, m)
	}
	for _, m := range c.modules {
		c.bindModule(m, c.byMod)
	}
	c.markLatest()
	c.internalCount = len(c.modules)
	return nil
}

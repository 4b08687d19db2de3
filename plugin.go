package yangcontext

import (
	"sync"

	"github.com/openconfig/goyang/pkg/yang"
)

// TypePlugin handles a user-defined typedef: it parses the canonical
// string into an internal value and renders it back.
type TypePlugin interface {
	// Name is the owned typedef as "module-name:typedef-name".
	Name() string
	Parse(canonical string) (interface{}, error)
	Canonical(value interface{}) (string, error)
}

// PluginRegistry is shared by every context. The registry is reference
// counted through acquire/release instead of hidden process globals; the
// last context release drops the registered plugins.
type PluginRegistry struct {
	mu      sync.Mutex
	use     int
	plugins map[string]TypePlugin
}

var defaultPlugins = &PluginRegistry{}

func acquirePlugins() *PluginRegistry {
	defaultPlugins.mu.Lock()
	defer defaultPlugins.mu.Unlock()
	if defaultPlugins.use == 0 {
		defaultPlugins.plugins = map[string]TypePlugin{}
	}
	defaultPlugins.use++
	return defaultPlugins
}

func releasePlugins(r *PluginRegistry) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.use > 0 {
		r.use--
	}
	if r.use == 0 {
		r.plugins = nil
	}
}

// Register installs a type plugin. A plugin already registered under the
// name is replaced.
func (r *PluginRegistry) Register(p TypePlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.plugins == nil {
		r.plugins = map[string]TypePlugin{}
	}
	r.plugins[p.Name()] = p
}

// Lookup returns the plugin owning the typedef name if present.
func (r *PluginRegistry) Lookup(name string) TypePlugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plugins[name]
}

// lookupTypePlugin finds the plugin for the typedef of the schema node.
// The plugin name carries the defining module of the typedef, resolved
// through the prefix at the type use site.
func (c *Context) lookupTypePlugin(schema *SchemaNode) TypePlugin {
	if c.plugins == nil || schema.Type == nil || schema.Type.Base == nil {
		return nil
	}
	owner := schema.Module
	if prefix, _ := SplitQName(schema.Type.Base.Name); prefix != "" {
		if root := yang.RootNode(schema.Type.Base); root != nil {
			if ym := yang.FindModuleByPrefix(root, prefix); ym != nil {
				if m := c.byMod[ym]; m != nil {
					owner = m
				}
			}
		}
	}
	if owner == nil {
		return nil
	}
	return c.plugins.Lookup(owner.Name + ":" + schema.Type.Name)
}

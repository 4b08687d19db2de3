package yangcontext

// disableClosure computes the transitive set of modules that cannot stay
// enabled once seed is gone: every enabled module importing a set member
// joins, and an import-only member whose last outside importer vanished
// joins as well.
func (c *Context) disableClosure(seed *Module) map[*Module]bool {
	set := map[*Module]bool{seed: true}
	for changed := true; changed; {
		changed = false
		for _, m := range c.modules {
			if m.Disabled || set[m] {
				continue
			}
			for dep := range set {
				if m.importsModule(dep) {
					set[m] = true
					changed = true
					break
				}
			}
		}
		// import-only modules kept alive only from inside the set
		for _, m := range c.modules {
			if m.Disabled || set[m] || m.Implemented || m.internal {
				continue
			}
			needed := false
			for _, o := range c.modules {
				if o == m || o.Disabled || set[o] {
					continue
				}
				if o.importsModule(m) {
					needed = true
					break
				}
			}
			if !needed {
				set[m] = true
				changed = true
			}
		}
	}
	return set
}

// DisableModule disables the module together with every module that
// depends on it. Disabling a built-in module fails; disabling an already
// disabled module is a no-op.
func (c *Context) DisableModule(m *Module) error {
	if m == nil || m.ctx != c {
		return c.record(Errorf(EInval, "module does not belong to this context"))
	}
	if m.internal {
		return c.record(Errorf(EInval, "built-in module %q cannot be disabled", m.Name))
	}
	if m.Disabled {
		return nil
	}
	set := c.disableClosure(m)
	// the back-edge teardown needs the set temporarily enabled so the
	// source walks still see it
	for dep := range set {
		dep.Disabled = false
	}
	c.xref.teardown(set)
	for dep := range set {
		dep.Disabled = true
		for _, sub := range dep.Includes {
			sub.Disabled = true
		}
		dep.Schemas = nil
	}
	c.bumpSetID()
	c.rebuild()
	return nil
}

// EnableModule enables the module and, recursively, its disabled imports.
// Disabled modules whose imports all become available join the set; a
// module with a still-disabled import outside the set stays parked.
func (c *Context) EnableModule(m *Module) error {
	if m == nil || m.ctx != c {
		return c.record(Errorf(EInval, "module does not belong to this context"))
	}
	if !m.Disabled {
		return nil
	}
	set := map[*Module]bool{}
	var seed func(*Module)
	seed = func(dep *Module) {
		if set[dep] {
			return
		}
		set[dep] = true
		for _, imp := range dep.Imports {
			if imp.Disabled {
				seed(imp)
			}
		}
	}
	seed(m)
	for changed := true; changed; {
		changed = false
		for _, o := range c.modules {
			if !o.Disabled || set[o] {
				continue
			}
			usable := true
			linked := false
			for _, imp := range o.Imports {
				if set[imp] {
					linked = true
				} else if imp.Disabled {
					usable = false
					break
				}
			}
			if usable && linked {
				set[o] = true
				changed = true
			}
		}
	}
	for dep := range set {
		dep.Disabled = false
		for _, sub := range dep.Includes {
			sub.Disabled = false
		}
	}
	c.bumpSetID()
	c.rebuild()
	return nil
}

// RemoveModule unlinks the module and its dependents from the registry.
// The built-in module prefix is immutable.
func (c *Context) RemoveModule(m *Module) error {
	if m == nil || m.ctx != c {
		return c.record(Errorf(EInval, "module does not belong to this context"))
	}
	if m.internal {
		return c.record(Errorf(EInval, "built-in module %q cannot be removed", m.Name))
	}
	if !m.Implemented {
		// an import-only module still imported by a living module stays
		for _, o := range c.modules {
			if o != m && !o.Disabled && o.importsModule(m) {
				return nil
			}
		}
	}
	set := c.disableClosure(m)
	for dep := range set {
		dep.Disabled = false
	}
	c.xref.teardown(set)
	kept := make([]*Module, 0, len(c.modules)-len(set))
	for _, o := range c.modules {
		if set[o] {
			continue
		}
		kept = append(kept, o)
	}
	c.modules = kept
	for dep := range set {
		delete(c.byMod, dep.Mod)
		c.removeFromParser(dep)
		dep.ctx = nil
		dep.Schemas = nil
	}
	c.markLatest()
	c.bumpSetID()
	c.rebuild()
	return nil
}

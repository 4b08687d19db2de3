package yangcontext

import (
	"fmt"
	"strconv"

	"github.com/openconfig/goyang/pkg/yang"
)

// Info returns an ietf-yang-library instance describing the current
// module composition. The shape follows whichever revision of
// ietf-yang-library is implemented: the yang-library tree of 2019-01-04
// or the legacy modules-state tree of 2016-06-21. The content-id and the
// module-set-id equal the registry module-set-id.
func (c *Context) Info() (DataNode, error) {
	ylib := c.GetModuleImplemented("ietf-yang-library")
	if ylib == nil {
		return nil, c.record(Errorf(EInval, "ietf-yang-library is not implemented in the context"))
	}
	switch ylib.Revision {
	case "2019-01-04":
		return c.yangLibrary()
	case "2016-06-21":
		return c.modulesState()
	}
	return nil, c.record(Errorf(EInval, "unsupported ietf-yang-library revision %q", ylib.Revision))
}

func (c *Context) yangLibrary() (DataNode, error) {
	schema := c.root.GetSchema("yang-library")
	if schema == nil {
		return nil, c.record(Errorf(EInt, "yang-library schema not found"))
	}
	top, err := NewDataNode(schema)
	if err != nil {
		return nil, err
	}
	const set = "module-set[name=complete]"
	for _, m := range c.modules {
		if m.Disabled {
			continue
		}
		listname := "module"
		prefix := fmt.Sprintf("%s/%s[name=%s]", set, listname, m.Name)
		if !m.Implemented {
			listname = "import-only-module"
			prefix = fmt.Sprintf("%s/%s[name=%s][revision=%s]", set, listname, m.Name, m.Revision)
		}
		if err := Set(top, prefix+"/namespace", m.Namespace); err != nil {
			return nil, Errorf(EInt, "yanglib: unable to add module %q: %v", m.Name, err)
		}
		if m.Implemented {
			if m.Revision != "" {
				if err := Set(top, prefix+"/revision", m.Revision); err != nil {
					return nil, Errorf(EInt, "yanglib: unable to add module %q: %v", m.Name, err)
				}
			}
			for _, f := range m.Features {
				if !f.Enabled {
					continue
				}
				if err := Set(top, fmt.Sprintf("%s/feature[.=%s]", prefix, f.Name), f.Name); err != nil {
					return nil, Errorf(EInt, "yanglib: unable to add feature %q: %v", f.Name, err)
				}
			}
			for _, target := range c.deviationTargets(m) {
				p := fmt.Sprintf("%s/%s[name=%s]/deviation[.=%s]", set, "module", target.Name, m.Name)
				if found, err := Find(top, p); err == nil && len(found) == 0 {
					if err := Set(top, p, m.Name); err != nil {
						return nil, Errorf(EInt, "yanglib: unable to add deviation of %q: %v", m.Name, err)
					}
				}
			}
		}
		for _, sub := range m.Includes {
			p := fmt.Sprintf("%s/submodule[name=%s]", prefix, sub.Name)
			if err := Set(top, p+"/revision", sub.Revision); err != nil {
				return nil, Errorf(EInt, "yanglib: unable to add submodule %q: %v", sub.Name, err)
			}
		}
	}
	if err := Set(top, "content-id", strconv.FormatUint(uint64(c.moduleSetID), 10)); err != nil {
		return nil, Errorf(EInt, "yanglib: content-id generation error: %v", err)
	}
	return top, nil
}

func (c *Context) modulesState() (DataNode, error) {
	schema := c.root.GetSchema("modules-state")
	if schema == nil {
		return nil, c.record(Errorf(EInt, "modules-state schema not found"))
	}
	top, err := NewDataNode(schema)
	if err != nil {
		return nil, err
	}
	for _, m := range c.modules {
		if m.Disabled {
			continue
		}
		conformance := "import"
		if m.Implemented {
			conformance = "implement"
		}
		prefix := fmt.Sprintf("module[name=%s][revision=%s]", m.Name, m.Revision)
		if err := Set(top, prefix+"/namespace", m.Namespace); err != nil {
			return nil, Errorf(EInt, "yanglib: unable to add module %q: %v", m.Name, err)
		}
		if err := Set(top, prefix+"/conformance-type", conformance); err != nil {
			return nil, Errorf(EInt, "yanglib: unable to add module %q: %v", m.Name, err)
		}
		for _, f := range m.Features {
			if !f.Enabled {
				continue
			}
			if err := Set(top, fmt.Sprintf("%s/feature[.=%s]", prefix, f.Name), f.Name); err != nil {
				return nil, Errorf(EInt, "yanglib: unable to add feature %q: %v", f.Name, err)
			}
		}
		for _, target := range c.deviationTargets(m) {
			p := fmt.Sprintf("module[name=%s][revision=%s]/deviation[name=%s][revision=%s]",
				target.Name, target.Revision, m.Name, m.Revision)
			if err := Set(top, p); err != nil {
				return nil, Errorf(EInt, "yanglib: unable to add deviation of %q: %v", m.Name, err)
			}
		}
		for _, sub := range m.Includes {
			p := fmt.Sprintf("%s/submodule[name=%s][revision=%s]", prefix, sub.Name, sub.Revision)
			if err := Set(top, p); err != nil {
				return nil, Errorf(EInt, "yanglib: unable to add submodule %q: %v", sub.Name, err)
			}
		}
	}
	if err := Set(top, "module-set-id", strconv.FormatUint(uint64(c.moduleSetID), 10)); err != nil {
		return nil, Errorf(EInt, "yanglib: module-set-id generation error: %v", err)
	}
	return top, nil
}

// deviationTargets lists the modules deviated by m.
func (c *Context) deviationTargets(m *Module) []*Module {
	var targets []*Module
	for _, d := range m.Mod.Deviation {
		pathnode, err := ParsePath(&d.Name)
		if err != nil || len(pathnode) == 0 {
			continue
		}
		prefix := pathnode[len(pathnode)-1].Prefix
		if prefix == "" {
			continue
		}
		ym := yang.FindModuleByPrefix(m.Mod, prefix)
		if ym == nil {
			continue
		}
		if target := c.byMod[ym]; target != nil && target != m {
			targets = append(targets, target)
		}
	}
	return targets
}

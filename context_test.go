package yangcontext

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestContext(t *testing.T, options ContextOptions, modules ...string) *Context {
	t.Helper()
	c, err := New([]string{"testdata/modules"}, options)
	if err != nil {
		t.Fatalf("error in creating a context: %v", err)
	}
	for _, name := range modules {
		if _, err := c.LoadModule(name, ""); err != nil {
			t.Fatalf("error in loading %q: %v", name, err)
		}
	}
	return c
}

func TestNewContext(t *testing.T) {
	c, err := New(nil, 0)
	if err != nil {
		t.Fatalf("error in creating a context: %v", err)
	}
	if c.InternalModuleCount() != 6 {
		t.Errorf("unexpected internal module count %d, want 6", c.InternalModuleCount())
	}
	for _, name := range []string{
		"ietf-yang-metadata", "yang", "ietf-inet-types",
		"ietf-yang-types", "ietf-datastores", "ietf-yang-library",
	} {
		if c.GetModuleLatest(name) == nil {
			t.Errorf("built-in module %q not preloaded", name)
		}
	}
}

func TestNewContextNoYangLibrary(t *testing.T) {
	c, err := New(nil, NoYangLibrary)
	if err != nil {
		t.Fatalf("error in creating a context: %v", err)
	}
	if c.InternalModuleCount() != 4 {
		t.Errorf("unexpected internal module count %d, want 4", c.InternalModuleCount())
	}
	if c.GetModuleLatest("ietf-yang-library") != nil {
		t.Error("ietf-yang-library must not be preloaded")
	}
}

func TestNewContextBadSearchDir(t *testing.T) {
	_, err := New([]string{"testdata/does-not-exist"}, 0)
	if err == nil {
		t.Fatal("creating a context with an unreadable search dir must fail")
	}
	if !errors.Is(err, ESys) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestSearchDirCanonicalization(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	c, err := New(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetSearchDir(sub); err != nil {
		t.Fatalf("error in setting a search dir: %v", err)
	}
	// the same directory through a dot-dot alias is silently ignored
	if err := c.SetSearchDir(filepath.Join(sub, "..", "a")); err != nil {
		t.Fatalf("error in setting the aliased search dir: %v", err)
	}
	dirs := c.SearchDirs()
	if len(dirs) != 1 {
		t.Fatalf("unexpected search dirs %v", dirs)
	}
	if !filepath.IsAbs(dirs[0]) {
		t.Errorf("search dir %q is not absolute", dirs[0])
	}
}

func TestLoadModule(t *testing.T) {
	c := newTestContext(t, 0)
	m, err := c.LoadModule("example-a", "")
	if err != nil {
		t.Fatalf("error in loading example-a: %v", err)
	}
	if !m.Implemented {
		t.Error("loaded module must be implemented")
	}
	if m.Revision != "2021-03-01" {
		t.Errorf("unexpected revision %q", m.Revision)
	}
	if len(m.Includes) != 1 || m.Includes[0].Name != "example-a-sub" {
		t.Errorf("submodule of example-a not bound: %v", m.Includes)
	}
	// loading the same module twice returns the same instance
	again, err := c.LoadModule("example-a", "")
	if err != nil {
		t.Fatalf("error in reloading example-a: %v", err)
	}
	if again != m {
		t.Error("reloading must return the cached module instance")
	}
}

func TestLoadModuleRevisionSelection(t *testing.T) {
	c := newTestContext(t, 0)
	old, err := c.LoadModule("example-rev", "2020-01-01")
	if err != nil {
		t.Fatalf("error in loading example-rev@2020-01-01: %v", err)
	}
	if old.Revision != "2020-01-01" {
		t.Errorf("unexpected revision %q", old.Revision)
	}
	newer, err := c.LoadModule("example-rev", "2021-01-01")
	if err != nil {
		t.Fatalf("error in loading example-rev@2021-01-01: %v", err)
	}
	if newer == old {
		t.Fatal("both revisions must be present separately")
	}
	if got := c.GetModuleLatest("example-rev"); got != newer {
		t.Errorf("latest lookup returned %v", got)
	}
	if got := c.GetModule("example-rev", "2020-01-01"); got != old {
		t.Errorf("exact revision lookup returned %v", got)
	}
}

func TestGetModuleByNamespace(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	if m := c.GetModuleByNamespace("urn:example:a", ""); m == nil || m.Name != "example-a" {
		t.Errorf("namespace lookup failed: %v", m)
	}
	if m := c.GetModuleByNamespace("urn:example:unknown", ""); m != nil {
		t.Errorf("unknown namespace returned %v", m)
	}
}

func TestModuleIterators(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	var enabled []string
	cursor := 0
	for m := c.NextModule(&cursor); m != nil; m = c.NextModule(&cursor) {
		enabled = append(enabled, m.Name)
	}
	want := []string{
		"ietf-yang-metadata", "yang", "ietf-inet-types", "ietf-yang-types",
		"ietf-datastores", "ietf-yang-library", "example-a", "example-b",
	}
	if diff := cmp.Diff(want, enabled); diff != "" {
		t.Errorf("unexpected enabled modules (-want +got):\n%s", diff)
	}
	if err := c.DisableModule(c.GetModuleLatest("example-b")); err != nil {
		t.Fatal(err)
	}
	cursor = 0
	var disabled []string
	for m := c.NextDisabledModule(&cursor); m != nil; m = c.NextDisabledModule(&cursor) {
		disabled = append(disabled, m.Name)
	}
	if diff := cmp.Diff([]string{"example-b"}, disabled); diff != "" {
		t.Errorf("unexpected disabled modules (-want +got):\n%s", diff)
	}
}

func TestModuleSetIDMonotonic(t *testing.T) {
	c := newTestContext(t, 0)
	last := c.ModuleSetID()
	step := func(what string, f func() error) {
		t.Helper()
		if err := f(); err != nil {
			t.Fatalf("%s failed: %v", what, err)
		}
		if c.ModuleSetID() <= last {
			t.Errorf("module-set-id did not grow on %s: %d -> %d", what, last, c.ModuleSetID())
		}
		last = c.ModuleSetID()
	}
	step("load", func() error { _, err := c.LoadModule("example-a", ""); return err })
	step("load b", func() error { _, err := c.LoadModule("example-b", ""); return err })
	m := c.GetModuleLatest("example-b")
	step("disable", func() error { return c.DisableModule(m) })
	step("enable", func() error { return c.EnableModule(m) })
	step("remove", func() error { return c.RemoveModule(m) })
}

func TestDisableEnableRestores(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	before := map[string]bool{}
	for _, m := range c.Modules() {
		before[m.String()] = true
	}
	id := c.ModuleSetID()
	a := c.GetModuleLatest("example-a")
	if err := c.DisableModule(a); err != nil {
		t.Fatal(err)
	}
	// the dependent example-b is pulled into the closure
	if b := c.GetModuleLatest("example-b"); b != nil {
		t.Error("example-b must be disabled with example-a")
	}
	if err := c.EnableModule(a); err != nil {
		t.Fatal(err)
	}
	after := map[string]bool{}
	for _, m := range c.Modules() {
		after[m.String()] = true
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("disable/enable is not observationally neutral (-before +after):\n%s", diff)
	}
	if c.ModuleSetID() != id+2 {
		t.Errorf("module-set-id moved from %d to %d, want +2", id, c.ModuleSetID())
	}
}

func TestDisableInternalModule(t *testing.T) {
	c := newTestContext(t, 0)
	err := c.DisableModule(c.GetModuleLatest("ietf-yang-types"))
	if err == nil {
		t.Fatal("disabling a built-in module must fail")
	}
	if !errors.Is(err, EInval) {
		t.Errorf("unexpected error code: %v", err)
	}
	// disabling an already disabled module is a no-op
	c2 := newTestContext(t, 0, "example-a")
	a := c2.GetModuleLatest("example-a")
	if err := c2.DisableModule(a); err != nil {
		t.Fatal(err)
	}
	if err := c2.DisableModule(a); err != nil {
		t.Errorf("re-disabling must succeed as a no-op: %v", err)
	}
}

func TestRemoveModule(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b", "example-c")
	b := c.GetModuleLatest("example-b")
	if err := c.RemoveModule(b); err != nil {
		t.Fatal(err)
	}
	// example-c imports example-b and goes with it
	if c.GetModuleLatest("example-b") != nil || c.GetModuleLatest("example-c") != nil {
		t.Error("removal closure did not unlink the dependents")
	}
	if c.GetModuleLatest("example-a") == nil {
		t.Error("example-a must survive")
	}
	// a stable relative order of the survivors
	var names []string
	cursor := 0
	for m := c.NextModule(&cursor); m != nil; m = c.NextModule(&cursor) {
		names = append(names, m.Name)
	}
	if names[len(names)-1] != "example-a" {
		t.Errorf("unexpected survivor order %v", names)
	}
}

func TestRemoveImportedOnlyModuleStays(t *testing.T) {
	c := newTestContext(t, 0, "example-b")
	// example-a was pulled in as an import of example-b
	a := c.GetModuleLatest("example-a")
	if a == nil {
		t.Fatal("example-a must be present as an import")
	}
	if a.Implemented {
		t.Skip("example-a unexpectedly implemented")
	}
	if err := c.RemoveModule(a); err != nil {
		t.Fatalf("removing a still-imported module must be a no-op: %v", err)
	}
	if c.GetModuleLatest("example-a") != a {
		t.Error("the still-imported module must stay")
	}
}

func TestRemoveInternalModule(t *testing.T) {
	c := newTestContext(t, 0)
	if err := c.RemoveModule(c.GetModuleLatest("yang")); err == nil {
		t.Fatal("removing a built-in module must fail")
	}
}

func TestImportCallback(t *testing.T) {
	c, err := New(nil, DisableSearchDirs|DisableSearchCwd)
	if err != nil {
		t.Fatal(err)
	}
	called := 0
	source, err := ioutil.ReadFile("testdata/modules/example-rev@2021-01-01.yang")
	if err != nil {
		t.Fatal(err)
	}
	c.SetImportCallback(func(name, rev, subname, subrev string, userData interface{}) (*ModuleData, error) {
		called++
		if name != "example-rev" {
			return nil, nil
		}
		return &ModuleData{Data: source, Format: FormatYANG}, nil
	}, nil)
	m, err := c.LoadModule("example-rev", "")
	if err != nil {
		t.Fatalf("error in loading through the callback: %v", err)
	}
	if called == 0 {
		t.Error("the import callback was not consulted")
	}
	if m.Revision != "2021-01-01" {
		t.Errorf("unexpected revision %q", m.Revision)
	}
}

func TestDestroy(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	var visited int
	walkSchema(c.RootSchema(), func(sn *SchemaNode) { sn.Private = &visited })
	c.Destroy(func(sn *SchemaNode) { visited++ })
	if visited == 0 {
		t.Error("the private destructor did not run")
	}
	if _, err := c.LoadModule("example-a", ""); err == nil {
		t.Error("loading into a destroyed context must fail")
	}
}

package yangcontext

import (
	"strconv"
	"testing"
)

func TestInfoYangLibrary(t *testing.T) {
	c := newTestContext(t, 0)
	if _, err := c.LoadModule("ietf-yang-types", "2013-07-15"); err != nil {
		t.Fatalf("error in loading ietf-yang-types: %v", err)
	}
	info, err := c.Info()
	if err != nil {
		t.Fatalf("error in generating the yang library: %v", err)
	}
	rev, err := Find(info, "module-set[name=complete]/module[name=ietf-yang-types]/revision")
	if err != nil || len(rev) != 1 {
		t.Fatalf("ietf-yang-types entry not found: %v", err)
	}
	if rev[0].ValueString() != "2013-07-15" {
		t.Errorf("unexpected revision %q", rev[0].ValueString())
	}
	cid, err := Find(info, "content-id")
	if err != nil || len(cid) != 1 {
		t.Fatalf("content-id not found: %v", err)
	}
	want := strconv.FormatUint(uint64(c.ModuleSetID()), 10)
	if cid[0].ValueString() != want {
		t.Errorf("content-id %q does not equal the module-set-id %q", cid[0].ValueString(), want)
	}
}

func TestInfoListsImportOnlyModules(t *testing.T) {
	c := newTestContext(t, 0, "example-b")
	info, err := c.Info()
	if err != nil {
		t.Fatal(err)
	}
	// example-a rides as an import of example-b
	a := c.GetModuleLatest("example-a")
	if a.Implemented {
		t.Fatal("example-a must be import-only here")
	}
	found, err := Find(info, "module-set[name=complete]/import-only-module[name=example-a][revision=2021-03-01]/namespace")
	if err != nil || len(found) != 1 {
		t.Fatalf("import-only entry for example-a not found: %v", err)
	}
	if found[0].ValueString() != "urn:example:a" {
		t.Errorf("unexpected namespace %q", found[0].ValueString())
	}
}

func TestInfoFeaturesAndSubmodules(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	info, err := c.Info()
	if err != nil {
		t.Fatal(err)
	}
	features, err := Find(info, "module-set[name=complete]/module[name=example-a]/feature")
	if err != nil || len(features) != 2 {
		t.Fatalf("unexpected features of example-a: %v", features)
	}
	sub, err := Find(info, "module-set[name=complete]/module[name=example-a]/submodule[name=example-a-sub]/revision")
	if err != nil || len(sub) != 1 {
		t.Fatalf("submodule entry not found: %v", err)
	}
	if sub[0].ValueString() != "2021-03-01" {
		t.Errorf("unexpected submodule revision %q", sub[0].ValueString())
	}
}

func TestInfoWithoutYangLibrary(t *testing.T) {
	c := newTestContext(t, NoYangLibrary)
	if _, err := c.Info(); err == nil {
		t.Fatal("info must fail without ietf-yang-library")
	}
}

func TestInfoContentIDFollowsMutations(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	info, err := c.Info()
	if err != nil {
		t.Fatal(err)
	}
	first, _ := Find(info, "content-id")
	if err := c.DisableModule(c.GetModuleLatest("example-a")); err != nil {
		t.Fatal(err)
	}
	info, err = c.Info()
	if err != nil {
		t.Fatal(err)
	}
	second, _ := Find(info, "content-id")
	if first[0].ValueString() == second[0].ValueString() {
		t.Error("the content-id must change with the module composition")
	}
}

package gnmi

import (
	"testing"

	"github.com/neoul/yangcontext"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
)

func testContext(t *testing.T) *yangcontext.Context {
	t.Helper()
	c, err := yangcontext.New([]string{"../testdata/modules"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadModule("example-a", ""); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGetModuleData(t *testing.T) {
	c := testContext(t)
	modeldata := GetModuleData(c)
	found := false
	for _, md := range modeldata {
		if md.Name == "example-a" && md.Version == "2021-03-01" {
			found = true
		}
	}
	if !found {
		t.Errorf("example-a missing from the model data: %v", modeldata)
	}
}

func TestToTypedValue(t *testing.T) {
	c := testContext(t)
	root, err := yangcontext.NewDataNode(c.RootSchema())
	if err != nil {
		t.Fatal(err)
	}
	if err := yangcontext.Set(root, "system/hostname", "switch0"); err != nil {
		t.Fatal(err)
	}
	if err := yangcontext.Set(root, "system/id", "7"); err != nil {
		t.Fatal(err)
	}
	leaf, err := yangcontext.Find(root, "system/hostname")
	if err != nil || len(leaf) != 1 {
		t.Fatal("hostname not found")
	}
	tv, err := ToTypedValue(leaf[0], gnmipb.Encoding_JSON_IETF)
	if err != nil {
		t.Fatalf("leaf conversion failed: %v", err)
	}
	if tv.GetStringVal() != "switch0" {
		t.Errorf("unexpected typed value %v", tv)
	}
	system, err := yangcontext.Find(root, "system")
	if err != nil || len(system) != 1 {
		t.Fatal("system not found")
	}
	tv, err = ToTypedValue(system[0], gnmipb.Encoding_JSON_IETF)
	if err != nil {
		t.Fatalf("branch conversion failed: %v", err)
	}
	if len(tv.GetJsonIetfVal()) == 0 {
		t.Error("branch conversion returned no JSON")
	}
}

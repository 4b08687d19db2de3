package yangcontext

import (
	"testing"
)

// forwardEdgeCount counts the forward cross-references of the enabled
// implemented modules. It must mirror the reverse index at all times.
func forwardEdgeCount(c *Context) (identities, features, leafrefs int) {
	for _, m := range c.Modules() {
		if !m.Implemented {
			continue
		}
		for _, id := range m.Identities {
			identities += len(id.Bases)
		}
		for _, f := range m.Features {
			for _, expr := range f.IfFeature {
				for _, name := range featureRefs(expr) {
					if m.resolveFeatureRef(name) != nil {
						features++
					}
				}
			}
		}
		for _, top := range m.Schemas {
			walkSchema(top, func(sn *SchemaNode) {
				if sn.LeafrefTarget != nil {
					leafrefs++
				}
			})
		}
	}
	return
}

func checkXrefInvariant(t *testing.T, c *Context, when string) {
	t.Helper()
	fi, ff, fl := forwardEdgeCount(c)
	ri, rf, rl := c.xref.edgeCount()
	if fi != ri || ff != rf || fl != rl {
		t.Errorf("%s: forward/backward edge mismatch: identities %d/%d features %d/%d leafrefs %d/%d",
			when, fi, ri, ff, rf, fl, rl)
	}
}

func TestIdentityDerivation(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	a := c.GetModuleLatest("example-a")
	b := c.GetModuleLatest("example-b")
	ethernet := a.Identity("ethernet")
	if ethernet == nil {
		t.Fatal("identity ethernet not found")
	}
	derived := c.DerivedIdentities(ethernet)
	names := map[string]bool{}
	for _, id := range derived {
		names[id.QName()] = true
	}
	if !names["example-a:fast-ethernet"] || !names["example-b:gigabit"] {
		t.Fatalf("unexpected derived set %v", names)
	}
	checkXrefInvariant(t, c, "after load")

	// disabling the defining module drops its derivation edge
	if err := c.DisableModule(b); err != nil {
		t.Fatal(err)
	}
	for _, id := range c.DerivedIdentities(ethernet) {
		if id.QName() == "example-b:gigabit" {
			t.Error("gigabit must not stay derived from ethernet while disabled")
		}
	}
	checkXrefInvariant(t, c, "after disable")

	if err := c.EnableModule(b); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, id := range c.DerivedIdentities(ethernet) {
		if id.QName() == "example-b:gigabit" {
			found = true
		}
	}
	if !found {
		t.Error("gigabit derivation must be restored on enable")
	}
	checkXrefInvariant(t, c, "after enable")
}

func TestIdentityIsDerivedFrom(t *testing.T) {
	c := newTestContext(t, 0, "example-b")
	base := c.FindIdentity("example-a:interface-type")
	leafId := c.FindIdentity("example-b:gigabit")
	if base == nil || leafId == nil {
		t.Fatal("identities not found")
	}
	if !IdentityIsDerivedFrom(leafId, base) {
		t.Error("gigabit must be transitively derived from interface-type")
	}
	if IdentityIsDerivedFrom(base, leafId) {
		t.Error("the derivation relation must not be symmetric")
	}
}

func TestFeatureDependents(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	a := c.GetModuleLatest("example-a")
	virtual := a.Feature("virtual")
	if virtual == nil {
		t.Fatal("feature virtual not found")
	}
	if !virtual.Enabled {
		t.Error("an unconditional feature must be enabled")
	}
	deps := c.FeatureDependents(virtual)
	names := map[string]bool{}
	for _, f := range deps {
		names[f.String()] = true
	}
	if !names["example-a:tunnel"] || !names["example-b:monitoring"] {
		t.Errorf("unexpected dependents %v", names)
	}
	tunnel := a.Feature("tunnel")
	if tunnel == nil || !tunnel.Enabled {
		t.Error("tunnel follows virtual and must be enabled")
	}
}

func TestLeafrefBacklinks(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	system := c.RootSchema().FindSchema("system")
	if system == nil {
		t.Fatal("system schema not found")
	}
	nameSchema := system.FindSchema("user/name")
	if nameSchema == nil {
		t.Fatal("user/name schema not found")
	}
	backs := c.LeafrefBacklinks(nameSchema)
	sources := map[string]bool{}
	for _, sn := range backs {
		sources[sn.Name] = true
	}
	// best-user points from example-a, watched-user from the augment of
	// example-b
	if !sources["best-user"] || !sources["watched-user"] {
		t.Errorf("unexpected leafref backlinks %v", sources)
	}
	checkXrefInvariant(t, c, "after load")
}

func TestXrefInvariantAcrossLifecycle(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b", "example-c")
	checkXrefInvariant(t, c, "after load")
	b := c.GetModuleLatest("example-b")
	if err := c.DisableModule(b); err != nil {
		t.Fatal(err)
	}
	checkXrefInvariant(t, c, "after disable")
	if err := c.EnableModule(b); err != nil {
		t.Fatal(err)
	}
	checkXrefInvariant(t, c, "after enable")
	if err := c.RemoveModule(c.GetModuleLatest("example-c")); err != nil {
		t.Fatal(err)
	}
	checkXrefInvariant(t, c, "after remove")
}

func TestEvalIfFeature(t *testing.T) {
	lookup := func(state map[string]bool) func(string) (bool, error) {
		return func(name string) (bool, error) { return state[name], nil }
	}
	tests := []struct {
		expr  string
		state map[string]bool
		want  bool
	}{
		{"foo", map[string]bool{"foo": true}, true},
		{"foo", map[string]bool{}, false},
		{"not foo", map[string]bool{}, true},
		{"foo and bar", map[string]bool{"foo": true}, false},
		{"foo or bar", map[string]bool{"bar": true}, true},
		{"foo and (bar or not p:baz)", map[string]bool{"foo": true}, true},
		{"foo and (bar or not p:baz)", map[string]bool{"foo": true, "p:baz": true}, false},
	}
	for _, tt := range tests {
		got, err := evalIfFeature(tt.expr, lookup(tt.state))
		if err != nil {
			t.Errorf("evalIfFeature(%q) failed: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("evalIfFeature(%q, %v) = %v, want %v", tt.expr, tt.state, got, tt.want)
		}
	}
}

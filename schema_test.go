package yangcontext

import (
	"testing"

	"github.com/openconfig/goyang/pkg/yang"
)

func TestFindSchema(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	root := c.RootSchema()
	tests := []struct {
		path string
		want string
	}{
		{"system", "system"},
		{"/system/hostname", "hostname"},
		{"system/user/name", "name"},
		{"example-a:system", "system"},
		{"system/user/../user/uid", "uid"},
	}
	for _, tt := range tests {
		got := root.FindSchema(tt.path)
		if got == nil || got.Name != tt.want {
			t.Errorf("FindSchema(%q) = %v, want %q", tt.path, got, tt.want)
		}
	}
	if got := root.FindSchema("system/no-such-node"); got != nil {
		t.Errorf("FindSchema of an unknown path returned %v", got)
	}
}

func TestSchemaKeysAndTypes(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	root := c.RootSchema()
	user := root.FindSchema("system/user")
	if user == nil || !user.IsListHasKey() {
		t.Fatalf("user must be a keyed list: %v", user)
	}
	if len(user.Keyname) != 1 || user.Keyname[0] != "name" {
		t.Errorf("unexpected key names %v", user.Keyname)
	}
	name := user.FindSchema("name")
	if name == nil || !name.IsKey {
		t.Error("user/name must be marked as a key")
	}
	opts := root.FindSchema("system/opts")
	if opts == nil || opts.Enum["two"] != 2 {
		t.Errorf("bits positions not collected: %v", opts.Enum)
	}
	typ := root.FindSchema("system/type")
	if typ == nil {
		t.Fatal("system/type not found")
	}
	if _, ok := typ.Identityref["fast-ethernet"]; !ok {
		t.Errorf("derived identities not collected: %v", typ.Identityref)
	}
}

func TestSchemaLeafrefTarget(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	root := c.RootSchema()
	best := root.FindSchema("system/best-user")
	want := root.FindSchema("system/user/name")
	if best == nil || want == nil {
		t.Fatal("schemas not found")
	}
	if best.LeafrefTarget != want {
		t.Errorf("leafref target = %v, want %v", best.LeafrefTarget, want)
	}
}

func TestSchemaModuleOwnership(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	root := c.RootSchema()
	location := root.FindSchema("system/location")
	if location == nil {
		t.Fatal("augmented node not found")
	}
	if location.Module == nil || location.Module.Name != "example-b" {
		t.Errorf("augmented node belongs to %v, want example-b", location.Module)
	}
	hostname := root.FindSchema("system/hostname")
	if hostname.Module == nil || hostname.Module.Name != "example-a" {
		t.Errorf("hostname belongs to %v, want example-a", hostname.Module)
	}
}

func TestValueStringConversion(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	root := c.RootSchema()
	tests := []struct {
		path  string
		value string
		bad   bool
	}{
		{"system/id", "42", false},
		{"system/id", "not-a-number", true},
		{"system/enabled", "true", false},
		{"system/enabled", "yes", true},
		{"system/speed", "auto", false},
		{"system/speed", "warp", true},
		{"system/opts", "one zero", false},
		{"system/opts", "three", true},
		{"system/type", "ethernet", false},
		{"system/type", "token-ring", true},
		{"system/user/uid", "65536", true},
	}
	for _, tt := range tests {
		schema := root.FindSchema(tt.path)
		if schema == nil {
			t.Fatalf("schema %q not found", tt.path)
		}
		_, err := ValueStringToValue(schema, schema.Type, tt.value)
		if tt.bad && err == nil {
			t.Errorf("ValueStringToValue(%q, %q) must fail", tt.path, tt.value)
		}
		if !tt.bad && err != nil {
			t.Errorf("ValueStringToValue(%q, %q) failed: %v", tt.path, tt.value, err)
		}
	}
}

func TestCanonicalBitsOrder(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	schema := c.RootSchema().FindSchema("system/opts")
	got, err := canonicalBits(schema, "two zero one")
	if err != nil {
		t.Fatal(err)
	}
	if got != "zero one two" {
		t.Errorf("unexpected canonical bits %q", got)
	}
	if _, err := canonicalBits(schema, "zero zero"); err == nil {
		t.Error("a doubled bit must fail")
	}
}

func TestAnnotationSchemas(t *testing.T) {
	c := newTestContext(t, 0)
	for _, name := range []string{"operation", "insert"} {
		sn := c.AnnotationSchema("yang", name)
		if sn == nil {
			t.Errorf("annotation %q of the yang module not registered", name)
			continue
		}
		if sn.Type == nil {
			t.Errorf("annotation %q has no type", name)
		}
	}
	if c.AnnotationSchema("yang", "no-such-annotation") != nil {
		t.Error("an unknown annotation must not resolve")
	}
}

func TestDecimal64Canonical(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	schema := c.RootSchema().FindSchema("system/temperature")
	v, err := ValueStringToValue(schema, schema.Type, "36.5")
	if err != nil {
		t.Fatal(err)
	}
	n, ok := v.(yang.Number)
	if !ok {
		t.Fatalf("unexpected value type %T", v)
	}
	if n.String() != "36.50" {
		t.Errorf("unexpected canonical form %q", n.String())
	}
}

package yangcontext

import (
	"strings"
	"testing"
)

// dateTimePlugin normalizes date-and-time values to lower case.
type dateTimePlugin struct {
	parsed int
}

func (p *dateTimePlugin) Name() string { return "ietf-yang-types:date-and-time" }

func (p *dateTimePlugin) Parse(canonical string) (interface{}, error) {
	p.parsed++
	return strings.ToLower(canonical), nil
}

func (p *dateTimePlugin) Canonical(value interface{}) (string, error) {
	s, _ := value.(string)
	return strings.ToLower(s), nil
}

func TestTypePluginRoundTrip(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	plugin := &dateTimePlugin{}
	c.Plugins().Register(plugin)

	root, err := NewDataNode(c.RootSchema())
	if err != nil {
		t.Fatal(err)
	}
	if err := Set(root, "system/started", "2021-11-02t12:56:00z"); err != nil {
		t.Fatal(err)
	}
	data, err := c.EncodeLYB(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	decoded, _, err := c.DecodeLYB(data, LYBStrict)
	if err != nil {
		t.Fatal(err)
	}
	if plugin.parsed == 0 {
		t.Error("the plugin must re-parse the canonical string on read")
	}
	started, err := Find(decoded, "system/started")
	if err != nil || len(started) != 1 {
		t.Fatal("started leaf not found")
	}
	if started[0].ValueString() != "2021-11-02t12:56:00z" {
		t.Errorf("unexpected value %q", started[0].ValueString())
	}
	if !Equal(root, decoded) {
		t.Error("user-typed leaf did not round-trip")
	}
}

func TestPluginRegistryUseCount(t *testing.T) {
	c1, err := New(nil, NoYangLibrary)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := New(nil, NoYangLibrary)
	if err != nil {
		t.Fatal(err)
	}
	c1.Plugins().Register(&dateTimePlugin{})
	if c2.Plugins().Lookup("ietf-yang-types:date-and-time") == nil {
		t.Error("the plugin registry must be shared between contexts")
	}
	c1.Destroy(nil)
	if c2.Plugins().Lookup("ietf-yang-types:date-and-time") == nil {
		t.Error("the registry must survive while a context still uses it")
	}
	c2.Destroy(nil)
}

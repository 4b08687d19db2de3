package yangcontext

import (
	"math/bits"
	"testing"
)

func TestHashCollisionMarker(t *testing.T) {
	c := newTestContext(t, 0, "example-a")
	system := c.RootSchema().FindSchema("system")
	if system == nil {
		t.Fatal("system schema not found")
	}
	for level := 0; level <= lybHashCollisionMax; level++ {
		h := system.lybHash(level)
		if got := bits.LeadingZeros8(h); got != level {
			t.Errorf("hash(%d) = 0x%02x has %d leading zeros, want %d", level, h, got, level)
		}
	}
}

func TestHashRoundTripForSiblings(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	system := c.RootSchema().FindSchema("system")
	if system == nil {
		t.Fatal("system schema not found")
	}
	for _, child := range system.Children {
		w := &lybWriter{}
		if err := w.startSubtree(); err != nil {
			t.Fatal(err)
		}
		if err := w.writeSchemaHash(child, system.Children); err != nil {
			t.Fatalf("hash write of %q failed: %v", child.Name, err)
		}
		if err := w.stopSubtree(); err != nil {
			t.Fatal(err)
		}
		r := &lybReader{data: w.bytes()}
		if err := r.startSubtree(); err != nil {
			t.Fatal(err)
		}
		got, err := r.readSchemaHash(system.Children, nil)
		if err != nil {
			t.Fatalf("hash read of %q failed: %v", child.Name, err)
		}
		if got != child {
			t.Errorf("hash of %q resolved to %v", child.Name, got)
		}
	}
}

func TestHashModuleFilter(t *testing.T) {
	c := newTestContext(t, 0, "example-a", "example-b")
	system := c.RootSchema().FindSchema("system")
	location := system.FindSchema("location") // augmented by example-b
	if location == nil {
		t.Fatal("augmented schema location not found")
	}
	w := &lybWriter{}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.writeSchemaHash(location, system.Children); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	r := &lybReader{data: w.bytes()}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	// the module of the node is filtered out, so the hash cannot match
	got, err := r.readSchemaHash(system.Children, func(m *Module) bool {
		return m == nil || m.Name != "example-b"
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("filtered hash lookup returned %v", got)
	}
}

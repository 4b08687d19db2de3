package yangcontext

import (
	"bytes"
	"testing"
)

func TestChunkRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("short"),
		bytes.Repeat([]byte{0xAB}, 255),
		bytes.Repeat([]byte{0xCD}, 256),
		bytes.Repeat([]byte{0x11}, 1000),
		{},
	}
	for _, payload := range payloads {
		w := &lybWriter{}
		if err := w.startSubtree(); err != nil {
			t.Fatal(err)
		}
		if err := w.write(payload); err != nil {
			t.Fatal(err)
		}
		if err := w.stopSubtree(); err != nil {
			t.Fatal(err)
		}
		r := &lybReader{data: w.bytes()}
		if err := r.startSubtree(); err != nil {
			t.Fatal(err)
		}
		got := make([]byte, len(payload))
		if err := r.read(got); err != nil {
			t.Fatalf("read of %d bytes failed: %v", len(payload), err)
		}
		if err := r.stopSubtree(); err != nil {
			t.Fatalf("stop after %d bytes failed: %v", len(payload), err)
		}
		if !bytes.Equal(payload, got) {
			t.Errorf("payload of %d bytes did not round-trip", len(payload))
		}
	}
}

func TestChunkNesting(t *testing.T) {
	w := &lybWriter{}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.write([]byte("outer-head")); err != nil {
		t.Fatal(err)
	}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	inner := bytes.Repeat([]byte("x"), 300)
	if err := w.write(inner); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.write([]byte("outer-tail")); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}

	r := &lybReader{data: w.bytes()}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	head := make([]byte, len("outer-head"))
	if err := r.read(head); err != nil {
		t.Fatal(err)
	}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	body := make([]byte, len(inner))
	if err := r.read(body); err != nil {
		t.Fatal(err)
	}
	if err := r.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	tail := make([]byte, len("outer-tail"))
	if err := r.read(tail); err != nil {
		t.Fatal(err)
	}
	if err := r.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	if string(head) != "outer-head" || string(tail) != "outer-tail" || !bytes.Equal(body, inner) {
		t.Error("nested chunk payloads did not round-trip")
	}
}

func TestChunkSkip(t *testing.T) {
	w := &lybWriter{}
	// two sibling subtrees; the second carries a nested one
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.write([]byte("skipped")); err != nil {
		t.Fatal(err)
	}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.write(bytes.Repeat([]byte("y"), 40)); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.write([]byte("kept")); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}

	r := &lybReader{data: w.bytes()}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := r.skipSubtree(); err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	kept := make([]byte, 4)
	if err := r.read(kept); err != nil {
		t.Fatal(err)
	}
	if err := r.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	if string(kept) != "kept" {
		t.Errorf("unexpected payload %q after skip", kept)
	}
}

func TestChunkTruncated(t *testing.T) {
	w := &lybWriter{}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	if err := w.write(bytes.Repeat([]byte("z"), 100)); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	data := w.bytes()
	r := &lybReader{data: data[:len(data)-10]}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 100)
	if err := r.read(buf); err == nil {
		t.Error("reading a truncated stream must fail")
	}
}

func TestChunkStringRoundTrip(t *testing.T) {
	w := &lybWriter{}
	if err := w.startSubtree(); err != nil {
		t.Fatal(err)
	}
	long := string(bytes.Repeat([]byte("hello "), 100))
	if err := w.writeString(long); err != nil {
		t.Fatal(err)
	}
	if err := w.stopSubtree(); err != nil {
		t.Fatal(err)
	}
	r := &lybReader{data: w.bytes()}
	if err := r.startSubtree(); err != nil {
		t.Fatal(err)
	}
	got, err := r.readString()
	if err != nil {
		t.Fatal(err)
	}
	if got != long {
		t.Error("chunked string did not round-trip")
	}
	if err := r.stopSubtree(); err != nil {
		t.Fatal(err)
	}
}

package yangcontext

import "encoding/binary"

// The LYB stream interleaves payload bytes with two-octet chunk headers
// [size, inner_chunk_count]. A size of lybSizeMax marks a full chunk
// continued by another header. Sizes count the payload bytes of every
// enclosing chunk; header bytes count toward none of them. The inner
// count records the chunk headers nested inside the chunk body so an
// unknown subtree can be skipped without parsing it.
const (
	lybSizeMax    = 0xFF
	lybMetaBytes  = 2
	lybInnerMax   = 0xFF
	lybMagic      = "lyb"
	lybHashBits   = 8
	lybStringMax  = 0xFFFF
	lybModMax     = 0xFFFF
	lybAttrMax    = 0xFF
	lybAnydataLYB = 0 // anydata body is a nested LYB blob
	lybAnydataStr = 1 // anydata body is a chunked string
)

type lybWFrame struct {
	headerPos int // offset of the pending chunk header
	written   int // payload bytes of the current chunk
	inner     int // chunk headers inside the current chunk
}

// lybWriter builds a chunked stream. Chunk headers are patched in place
// once their size is known.
type lybWriter struct {
	buf    []byte
	frames []lybWFrame
}

func (w *lybWriter) bytes() []byte { return w.buf }

// writeRaw emits bytes outside of the chunk accounting (the file header).
func (w *lybWriter) writeRaw(p []byte) {
	w.buf = append(w.buf, p...)
}

// startSubtree opens a chunk frame. The header lies inside the current
// chunk of every open frame.
func (w *lybWriter) startSubtree() error {
	for i := range w.frames {
		if w.frames[i].inner >= lybInnerMax {
			return Errorf(EInval, "too many chunks nested in one chunk")
		}
		w.frames[i].inner++
	}
	w.frames = append(w.frames, lybWFrame{headerPos: len(w.buf)})
	w.buf = append(w.buf, 0, 0)
	return nil
}

// stopSubtree closes the innermost frame, patching its final chunk header.
func (w *lybWriter) stopSubtree() error {
	if len(w.frames) == 0 {
		return Errorf(EInt, "no open subtree")
	}
	f := w.frames[len(w.frames)-1]
	w.buf[f.headerPos] = byte(f.written)
	w.buf[f.headerPos+1] = byte(f.inner)
	w.frames = w.frames[:len(w.frames)-1]
	return nil
}

// flush finishes the full chunk of frame i and opens its continuation.
func (w *lybWriter) flush(i int) error {
	f := &w.frames[i]
	w.buf[f.headerPos] = byte(lybSizeMax)
	w.buf[f.headerPos+1] = byte(f.inner)
	// the continuation header sits inside the current chunk of every
	// other frame that is not itself waiting to be flushed
	for j := range w.frames {
		if j == i || w.frames[j].written == lybSizeMax {
			continue
		}
		if w.frames[j].inner >= lybInnerMax {
			return Errorf(EInval, "too many chunks nested in one chunk")
		}
		w.frames[j].inner++
	}
	f.headerPos = len(w.buf)
	f.written = 0
	f.inner = 0
	w.buf = append(w.buf, 0, 0)
	return nil
}

// write adds payload bytes to every open chunk, flushing the chunks that
// become full, innermost first.
func (w *lybWriter) write(p []byte) error {
	if len(w.frames) == 0 {
		w.buf = append(w.buf, p...)
		return nil
	}
	for len(p) > 0 {
		space := lybSizeMax
		for i := range w.frames {
			if s := lybSizeMax - w.frames[i].written; s < space {
				space = s
			}
		}
		n := space
		if n > len(p) {
			n = len(p)
		}
		w.buf = append(w.buf, p[:n]...)
		for i := range w.frames {
			w.frames[i].written += n
		}
		p = p[n:]
		for i := len(w.frames) - 1; i >= 0; i-- {
			if w.frames[i].written == lybSizeMax {
				if err := w.flush(i); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *lybWriter) writeByte(b byte) error { return w.write([]byte{b}) }

func (w *lybWriter) writeUint16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return w.write(b[:])
}

func (w *lybWriter) writeUint64n(v uint64, n int) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return w.write(b[:n])
}

// writeString emits a length-prefixed chunked string.
func (w *lybWriter) writeString(s string) error {
	if len(s) > lybStringMax {
		return Errorf(EInval, "string of %d bytes does not fit the LYB string prefix", len(s))
	}
	if err := w.writeUint16(uint16(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

type lybRFrame struct {
	remaining int  // payload bytes left in the current chunk
	cont      bool // the current chunk was full; a header follows it
	inner     int
}

// lybReader consumes a chunked stream.
type lybReader struct {
	data   []byte
	off    int
	frames []lybRFrame
}

func (r *lybReader) rawHeader() (int, int, error) {
	if r.off+lybMetaBytes > len(r.data) {
		return 0, 0, Errorf(EInval, "truncated LYB data at offset %d", r.off)
	}
	size := int(r.data[r.off])
	inner := int(r.data[r.off+1])
	r.off += lybMetaBytes
	return size, inner, nil
}

// settle consumes the continuation headers of exhausted chunks. When
// several chunks exhaust on the same byte the innermost goes first.
func (r *lybReader) settle() error {
	for {
		found := -1
		for i := len(r.frames) - 1; i >= 0; i-- {
			if r.frames[i].remaining == 0 && r.frames[i].cont {
				found = i
				break
			}
		}
		if found < 0 {
			return nil
		}
		size, inner, err := r.rawHeader()
		if err != nil {
			return err
		}
		f := &r.frames[found]
		f.remaining = size
		f.cont = size == lybSizeMax
		f.inner = inner
	}
}

// read copies exactly len(p) payload bytes, decrementing the bytes
// remaining of every open chunk.
func (r *lybReader) read(p []byte) error {
	n := len(p)
	got := 0
	for n > 0 {
		if err := r.settle(); err != nil {
			return err
		}
		if len(r.frames) == 0 {
			if r.off+n > len(r.data) {
				return Errorf(EInval, "truncated LYB data at offset %d", r.off)
			}
			copy(p[got:], r.data[r.off:r.off+n])
			r.off += n
			return nil
		}
		take := n
		for i := range r.frames {
			if r.frames[i].remaining < take {
				take = r.frames[i].remaining
			}
		}
		if take == 0 {
			// settle ran already, so a zero here is a real underrun
			return Errorf(EInval, "LYB chunk underrun at offset %d", r.off)
		}
		if r.off+take > len(r.data) {
			return Errorf(EInval, "truncated LYB data at offset %d", r.off)
		}
		for i := range r.frames {
			r.frames[i].remaining -= take
		}
		copy(p[got:], r.data[r.off:r.off+take])
		r.off += take
		got += take
		n -= take
	}
	return nil
}

func (r *lybReader) readByte() (byte, error) {
	var b [1]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *lybReader) readUint16() (uint16, error) {
	var b [2]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *lybReader) readUint64n(n int) (uint64, error) {
	var b [8]byte
	if err := r.read(b[:n]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (r *lybReader) readString() (string, error) {
	length, err := r.readUint16()
	if err != nil {
		return "", err
	}
	b := make([]byte, int(length))
	if err := r.read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

// startSubtree consumes one chunk header and pushes a frame.
func (r *lybReader) startSubtree() error {
	if err := r.settle(); err != nil {
		return err
	}
	size, inner, err := r.rawHeader()
	if err != nil {
		return err
	}
	r.frames = append(r.frames, lybRFrame{
		remaining: size,
		cont:      size == lybSizeMax,
		inner:     inner,
	})
	return nil
}

// stopSubtree pops the innermost frame, which must be fully consumed.
func (r *lybReader) stopSubtree() error {
	if err := r.settle(); err != nil {
		return err
	}
	if len(r.frames) == 0 {
		return Errorf(EInt, "no open subtree")
	}
	f := r.frames[len(r.frames)-1]
	if f.remaining != 0 || f.cont {
		return Errorf(EInval, "subtree has %d unread bytes", f.remaining)
	}
	r.frames = r.frames[:len(r.frames)-1]
	return nil
}

// subtreeDone reports whether the innermost frame has been consumed.
func (r *lybReader) subtreeDone() (bool, error) {
	if err := r.settle(); err != nil {
		return false, err
	}
	if len(r.frames) == 0 {
		return true, nil
	}
	f := r.frames[len(r.frames)-1]
	return f.remaining == 0 && !f.cont, nil
}

// skipSubtree drops the innermost frame without interpreting its body:
// the nested chunk headers counted by the inner count plus the remaining
// payload, repeated over the continuation chunks.
func (r *lybReader) skipSubtree() error {
	if err := r.settle(); err != nil {
		return err
	}
	if len(r.frames) == 0 {
		return Errorf(EInt, "no open subtree")
	}
	top := len(r.frames) - 1
	for {
		f := &r.frames[top]
		skip := f.remaining + f.inner*lybMetaBytes
		if r.off+skip > len(r.data) {
			return Errorf(EInval, "truncated LYB data at offset %d", r.off)
		}
		for i := 0; i < top; i++ {
			if r.frames[i].remaining < f.remaining {
				return Errorf(EInval, "LYB chunk overlap at offset %d", r.off)
			}
			r.frames[i].remaining -= f.remaining
		}
		r.off += skip
		f.remaining = 0
		f.inner = 0
		if !f.cont {
			break
		}
		size, inner, err := r.rawHeader()
		if err != nil {
			return err
		}
		f.remaining = size
		f.cont = size == lybSizeMax
		f.inner = inner
	}
	r.frames = r.frames[:top]
	return nil
}

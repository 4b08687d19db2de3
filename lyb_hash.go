package yangcontext

import "hash/fnv"

// Schema nodes are identified on the wire by an 8-bit digest of the
// namespace URI and the local name, mixed with a collision id. The high
// bits of a hash byte encode the collision id in unary-zero form:
// collision 0 is 1xxxxxxx, collision 1 is 01xxxxxx and so on, so the
// first byte tells the reader how many follow-on hash bytes belong to
// the node.

const lybHashCollisionMax = 7

// lybHash returns the hash byte of the schema node for the collision id.
func (schema *SchemaNode) lybHash(collision int) byte {
	if collision == 0 && schema.hashinit {
		return schema.hash0
	}
	h := fnv.New32a()
	if schema.Module != nil {
		h.Write([]byte(schema.Module.Namespace))
	}
	h.Write([]byte{':'})
	h.Write([]byte(schema.Name))
	h.Write([]byte{byte(collision)})
	// fold all four bytes of the sum: the low byte of FNV-1a alone would
	// keep two names that share it equal at every collision id
	sum := h.Sum32()
	digest := byte(sum ^ sum>>8 ^ sum>>16 ^ sum>>24)
	// mask the digest below the unary-zero collision marker
	marker := byte(0x80) >> collision
	digest &= marker - 1
	digest |= marker
	if collision == 0 {
		schema.hash0 = digest
		schema.hashinit = true
	}
	return digest
}

// lybHashLevel determines how many collision levels are needed to tell
// the node apart from its siblings: level k is required while another
// sibling shares every hash byte up to k.
func lybHashLevel(schema *SchemaNode, siblings []*SchemaNode) (int, error) {
	level := 0
	for level <= lybHashCollisionMax {
		collided := false
		for _, sib := range siblings {
			if sib == schema {
				continue
			}
			same := true
			for j := 0; j <= level; j++ {
				if sib.lybHash(j) != schema.lybHash(j) {
					same = false
					break
				}
			}
			if same {
				collided = true
				break
			}
		}
		if !collided {
			return level, nil
		}
		level++
	}
	return 0, Errorf(EInt, "schema hash of %q collides beyond level %d", schema.Name, lybHashCollisionMax)
}

// writeSchemaHash emits the hash sequence of the node: the byte of the
// final collision level first (its leading zeros announce the count),
// then the levels 0..k-1 in order.
func (w *lybWriter) writeSchemaHash(schema *SchemaNode, siblings []*SchemaNode) error {
	level, err := lybHashLevel(schema, siblings)
	if err != nil {
		return err
	}
	if err := w.writeByte(schema.lybHash(level)); err != nil {
		return err
	}
	for j := 0; j < level; j++ {
		if err := w.writeByte(schema.lybHash(j)); err != nil {
			return err
		}
	}
	return nil
}

// readSchemaHash consumes a hash sequence and resolves it among the
// candidate schema nodes. Only candidates whose module satisfies the
// filter take part. A nil return with a nil error means no match
// (lenient callers skip the subtree).
func (r *lybReader) readSchemaHash(candidates []*SchemaNode, moduleOK func(*Module) bool) (*SchemaNode, error) {
	first, err := r.readByte()
	if err != nil {
		return nil, err
	}
	level := 0
	for mask := byte(0x80); mask != 0 && first&mask == 0; mask >>= 1 {
		level++
	}
	if level > lybHashCollisionMax {
		return nil, Errorf(EInval, "invalid schema hash byte 0x%02x", first)
	}
	lower := make([]byte, level)
	if err := r.read(lower); err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if moduleOK != nil && !moduleOK(c.Module) {
			continue
		}
		if c.lybHash(level) != first {
			continue
		}
		match := true
		for j := 0; j < level; j++ {
			if c.lybHash(j) != lower[j] {
				match = false
				break
			}
		}
		if match {
			return c, nil
		}
	}
	return nil, nil
}

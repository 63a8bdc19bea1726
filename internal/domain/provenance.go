package domain

// CanReset reports whether c has a curated baseline it can be reset to.
func (c *Company) CanReset() bool {
	return c.Origin == OriginCurated && c.IsModified && c.Original != nil
}

// FieldModified compares a candidate value of f against the original snapshot.
// Always false for user records and records without a snapshot.
func (c *Company) FieldModified(f Field, candidate Fields) bool {
	if c.Origin != OriginCurated || c.Original == nil {
		return false
	}
	return !f.Equal(candidate, *c.Original)
}

// ModifiedFields lists the fields that currently differ from the snapshot.
func (c *Company) ModifiedFields() []Field {
	if c.Origin != OriginCurated || c.Original == nil {
		return nil
	}
	return DiffFields(c.Fields, *c.Original)
}

// ApplyUpdate replaces the editable fields of c and updates its provenance.
//
// The first edit of a pristine curated record snapshots the pre-update values.
// IsModified is then recomputed against that snapshot, so an edit that restores
// every field clears it again. User records never carry a snapshot.
func (c *Company) ApplyUpdate(next Fields) {
	next = next.Clean()

	if c.Origin != OriginCurated {
		c.Fields = next
		c.IsModified = false
		c.Original = nil
		return
	}

	if !c.IsModified {
		snapshot := c.Fields.Clone()
		c.Original = &snapshot
	}

	c.Fields = next
	c.IsModified = len(DiffFields(c.Fields, *c.Original)) > 0
}

// ResetField restores one field from the snapshot. It returns false, leaving c
// untouched, when the record cannot be reset.
func (c *Company) ResetField(f Field) bool {
	if !c.CanReset() {
		return false
	}
	f.Copy(&c.Fields, *c.Original)
	c.IsModified = len(DiffFields(c.Fields, *c.Original)) > 0
	return true
}

// ResetAll restores every field and returns the record to its pristine curated state.
func (c *Company) ResetAll() bool {
	if !c.CanReset() {
		return false
	}
	c.Fields = c.Original.Clone()
	c.IsModified = false
	c.Original = nil
	return true
}

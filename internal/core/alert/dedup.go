package alert

// Diff returns the items of current whose identity appears nowhere in
// previous, in current's order.
func Diff(current, previous []Notification) []Notification {
	if len(current) == 0 {
		return nil
	}

	seen := make(map[Identity]struct{}, len(previous))
	for _, n := range previous {
		seen[n.Identity()] = struct{}{}
	}

	var fresh []Notification
	for _, n := range current {
		if _, ok := seen[n.Identity()]; !ok {
			fresh = append(fresh, n)
		}
	}
	return fresh
}

// Deduplicator remembers the previous snapshot and reports what is new in the
// next one. It is not safe for concurrent use; the dispatcher serializes cycles.
type Deduplicator struct {
	previous []Notification
}

// NewDeduplicator returns a Deduplicator with no remembered state.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Observe returns the items of snap not present in the remembered snapshot and
// then replaces the remembered snapshot with snap wholesale, including when
// nothing is new. An empty snap clears the remembered state.
func (d *Deduplicator) Observe(snap Snapshot) []Notification {
	fresh := Diff(snap.Items, d.previous)

	if snap.Empty() {
		d.previous = nil
		return nil
	}

	d.previous = append(d.previous[:0:0], snap.Items...)
	return fresh
}

// Previous returns a copy of the remembered snapshot items.
func (d *Deduplicator) Previous() []Notification {
	out := make([]Notification, len(d.previous))
	copy(out, d.previous)
	return out
}

// Reset forgets the remembered snapshot.
func (d *Deduplicator) Reset() {
	d.previous = nil
}

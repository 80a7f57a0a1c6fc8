package pipeline

// Dedup is the set of composite keys uploaded during one run. It starts
// empty, only grows, and is never persisted. It is not safe for concurrent
// use; a run is single-threaded.
type Dedup struct {
	keys map[string]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{keys: make(map[string]struct{})}
}

func (d *Dedup) Has(key string) bool {
	_, ok := d.keys[key]
	return ok
}

func (d *Dedup) Add(key string) {
	d.keys[key] = struct{}{}
}

func (d *Dedup) Len() int {
	return len(d.keys)
}

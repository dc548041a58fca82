package service

import "factory-monitor/internal/model"

// SourceRegistry holds the latest state of every monitored production line.
// It is a plain state container and is not safe for concurrent use; the
// Monitor serializes access to it.
type SourceRegistry struct {
	order []string
	lines map[string]model.ProductionLine
}

// NewSourceRegistry creates a registry that lists lines in the given order.
func NewSourceRegistry(order []string) *SourceRegistry {
	return &SourceRegistry{
		order: append([]string(nil), order...),
		lines: make(map[string]model.ProductionLine, len(order)),
	}
}

// Upsert replaces the stored state of a line. A line id that was not part of
// the configured order is appended after the known ones.
func (r *SourceRegistry) Upsert(line model.ProductionLine) {
	if _, ok := r.lines[line.ID]; !ok && !r.ordered(line.ID) {
		r.order = append(r.order, line.ID)
	}
	r.lines[line.ID] = line
}

// All returns a copy of every stored line in display order.
func (r *SourceRegistry) All() []model.ProductionLine {
	out := make([]model.ProductionLine, 0, len(r.lines))
	for _, id := range r.order {
		if l, ok := r.lines[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Get returns the stored state of a line.
func (r *SourceRegistry) Get(id string) (model.ProductionLine, bool) {
	l, ok := r.lines[id]
	return l, ok
}

// IDs returns the line ids in display order, including configured lines not yet stored.
func (r *SourceRegistry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of stored lines.
func (r *SourceRegistry) Len() int {
	return len(r.lines)
}

func (r *SourceRegistry) ordered(id string) bool {
	for _, o := range r.order {
		if o == id {
			return true
		}
	}
	return false
}

package datatable

// SelectionStore holds the set of selected row ids.
//
// The table picks an implementation once, at construction: InternalSelectionStore
// when it owns the selection, ExternalSelectionStore when the caller does.
type SelectionStore interface {
	IsSelected(id string) bool
	Selected() []string
	Toggle(id string)
	// SetAll replaces the selection with ids when checked, or clears it.
	SetAll(ids []string, checked bool)
}

// InternalSelectionStore keeps the selection inside the table instance.
type InternalSelectionStore struct {
	order []string
	set   map[string]struct{}
}

// NewInternalSelectionStore returns a store pre-populated with ids.
func NewInternalSelectionStore(ids ...string) *InternalSelectionStore {
	s := &InternalSelectionStore{set: make(map[string]struct{})}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *InternalSelectionStore) IsSelected(id string) bool {
	_, ok := s.set[id]
	return ok
}

func (s *InternalSelectionStore) Selected() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *InternalSelectionStore) Toggle(id string) {
	if id == "" {
		return
	}
	if s.IsSelected(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

func (s *InternalSelectionStore) SetAll(ids []string, checked bool) {
	s.order = nil
	s.set = make(map[string]struct{})
	if !checked {
		return
	}
	for _, id := range ids {
		s.add(id)
	}
}

func (s *InternalSelectionStore) add(id string) {
	if id == "" || s.IsSelected(id) {
		return
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *InternalSelectionStore) remove(id string) {
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// ExternalSelectionStore reads the caller's selection and reports intended
// changes through callbacks. It never mutates the caller's slice.
type ExternalSelectionStore struct {
	selected    []string
	onToggle    func(id string)
	onSelectAll func(ids []string, checked bool)
}

// NewExternalSelectionStore wraps a caller-owned selection. Either callback may be nil.
func NewExternalSelectionStore(selected []string, onToggle func(id string), onSelectAll func(ids []string, checked bool)) *ExternalSelectionStore {
	return &ExternalSelectionStore{selected: selected, onToggle: onToggle, onSelectAll: onSelectAll}
}

func (s *ExternalSelectionStore) IsSelected(id string) bool {
	for _, v := range s.selected {
		if v == id {
			return true
		}
	}
	return false
}

func (s *ExternalSelectionStore) Selected() []string {
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

func (s *ExternalSelectionStore) Toggle(id string) {
	if s.onToggle != nil && id != "" {
		s.onToggle(id)
	}
}

func (s *ExternalSelectionStore) SetAll(ids []string, checked bool) {
	if s.onSelectAll != nil {
		s.onSelectAll(ids, checked)
	}
}

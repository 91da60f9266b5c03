package grid

// Store holds the last-fetched canonical snapshot of every row, keyed by row
// id and kept in server order. It carries no dirty state: a Replace from a
// refresh never invalidates pending edits, so the user's unsaved intent
// survives a reload.
type Store struct {
	rows     []Row
	index    map[int64]int
	revision uint64
}

func NewStore() *Store {
	return &Store{index: make(map[int64]int)}
}

// Replace swaps in a full refresh, preserving the order the server returned.
// At most one row per id is kept; a duplicate id overwrites the earlier row
// in place.
func (s *Store) Replace(rows []Row) {
	s.rows = make([]Row, 0, len(rows))
	s.index = make(map[int64]int, len(rows))
	for _, r := range rows {
		if at, ok := s.index[r.ID]; ok {
			s.rows[at] = r
			continue
		}
		s.index[r.ID] = len(s.rows)
		s.rows = append(s.rows, r)
	}
	s.revision++
}

// GetAll returns the rows in canonical order. The slice is a copy; mutating
// it does not touch the store.
func (s *Store) GetAll() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len reports the number of rows currently held.
func (s *Store) Len() int {
	return len(s.rows)
}

// GetByID returns the canonical row for id, or *RowNotFoundError.
func (s *Store) GetByID(id int64) (Row, error) {
	at, ok := s.index[id]
	if !ok {
		return Row{}, &RowNotFoundError{ID: id}
	}
	return s.rows[at], nil
}

// ApplyFieldUpdate mutates exactly one editable field of exactly one row.
// Only call this after a confirmed server acknowledgement; the store must
// never drift ahead of what the backend has accepted.
func (s *Store) ApplyFieldUpdate(id int64, f Field, value string) error {
	at, ok := s.index[id]
	if !ok {
		return &RowNotFoundError{ID: id}
	}
	if !s.rows[at].setFieldValue(f, value) {
		return &UnknownFieldError{Field: f}
	}
	s.revision++
	return nil
}

// Revision is a counter bumped on every mutation. The renderer compares it
// against the revision it last drew to decide whether a redraw is needed.
func (s *Store) Revision() uint64 {
	return s.revision
}

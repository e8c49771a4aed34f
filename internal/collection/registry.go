package collection

import (
	"errors"
	"sync"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

var ErrStaleRecord = errors.New("collection: stale record handle")

// RecordID is a generation-checked handle into a Registry. The zero value is
// never issued.
type RecordID struct {
	slot uint32
	gen  uint32
}

func (id RecordID) Valid() bool {
	return id.gen != 0
}

type slot struct {
	mu   sync.RWMutex
	gen  uint32
	live bool
	req  request.Request
}

// Registry owns every request record by value. Each slot has its own
// reader/writer lock; mu only guards the table itself.
type Registry struct {
	mu    sync.Mutex
	slots []*slot
	free  []uint32
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Insert(req request.Request) RecordID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		idx uint32
		s   *slot
	)
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
		s = r.slots[idx]
	} else {
		idx = uint32(len(r.slots))
		s = &slot{}
		r.slots = append(r.slots, s)
	}

	s.mu.Lock()
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.req = req.Clone()
	gen := s.gen
	s.mu.Unlock()

	return RecordID{slot: idx, gen: gen}
}

func (r *Registry) Remove(id RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.slotLocked(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live || s.gen != id.gen {
		return ErrStaleRecord
	}
	s.live = false
	s.req = request.Request{}
	r.free = append(r.free, id.slot)
	return nil
}

// Read grants shared access for the duration of fn. Concurrent readers do not
// block each other.
func (r *Registry) Read(id RecordID, fn func(request.Request)) error {
	s, err := r.slot(id)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.live || s.gen != id.gen {
		return ErrStaleRecord
	}
	fn(s.req)
	return nil
}

// Write grants exclusive access for the duration of fn. fn must not perform I/O.
func (r *Registry) Write(id RecordID, fn func(*request.Request)) error {
	s, err := r.slot(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live || s.gen != id.gen {
		return ErrStaleRecord
	}
	fn(&s.req)
	return nil
}

func (r *Registry) Snapshot(id RecordID) (request.Request, error) {
	var out request.Request
	err := r.Read(id, func(req request.Request) {
		out = req.Clone()
	})
	return out, err
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots) - len(r.free)
}

func (r *Registry) slot(id RecordID) (*slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slotLocked(id)
}

func (r *Registry) slotLocked(id RecordID) (*slot, error) {
	if !id.Valid() || int(id.slot) >= len(r.slots) {
		return nil, ErrStaleRecord
	}
	return r.slots[id.slot], nil
}

package provision

import (
	"slices"

	"github.com/foodmarket/provision-backend/internal/app/model"
)

// VisitorQueue is the ordered working set of visitors being served, unique
// by customer id, with at most one active entry.
type VisitorQueue struct {
	entries  []model.Customer
	activeID string
}

// Enqueue appends c unless it is already queued; the bool reports whether it
// was added.
func (q *VisitorQueue) Enqueue(c model.Customer) bool {
	if q.Contains(c.ID) {
		return false
	}
	q.entries = append(q.entries, c)
	return true
}

func (q *VisitorQueue) Contains(id string) bool {
	return q.indexOf(id) >= 0
}

func (q *VisitorQueue) Get(id string) (model.Customer, bool) {
	i := q.indexOf(id)
	if i < 0 {
		return model.Customer{}, false
	}
	return q.entries[i], true
}

// Remove drops id from the queue, deactivating it if it was active.
func (q *VisitorQueue) Remove(id string) bool {
	i := q.indexOf(id)
	if i < 0 {
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	if q.activeID == id || len(q.entries) == 0 {
		q.activeID = ""
	}
	return true
}

func (q *VisitorQueue) Entries() []model.Customer {
	return slices.Clone(q.entries)
}

func (q *VisitorQueue) Len() int { return len(q.entries) }

func (q *VisitorQueue) ActiveID() string { return q.activeID }

// Active returns the active visitor, if any.
func (q *VisitorQueue) Active() (model.Customer, bool) {
	if q.activeID == "" {
		return model.Customer{}, false
	}
	return q.Get(q.activeID)
}

func (q *VisitorQueue) setActive(id string) {
	q.activeID = id
}

func (q *VisitorQueue) Deactivate() {
	q.activeID = ""
}

func (q *VisitorQueue) Clear() {
	q.entries = nil
	q.activeID = ""
}

func (q *VisitorQueue) indexOf(id string) int {
	return slices.IndexFunc(q.entries, func(c model.Customer) bool {
		return c.ID == id
	})
}

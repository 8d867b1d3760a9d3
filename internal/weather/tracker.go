package weather

import (
	"sync"

	"github.com/google/uuid"
)

// Ticket identifies one in-flight fetch.
type Ticket struct {
	ID       string
	Locality string
}

// Tracker remembers the most recent fetch so that late responses for an
// earlier locality can be dropped. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	active Ticket
}

// Begin issues a ticket for locality and makes it the active one.
func (t *Tracker) Begin(locality string) Ticket {
	tk := Ticket{ID: uuid.NewString(), Locality: locality}
	t.mu.Lock()
	t.active = tk
	t.mu.Unlock()
	return tk
}

// Accept reports whether tk is still the active ticket.
func (t *Tracker) Accept(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk.ID != "" && tk.ID == t.active.ID
}

// Reset clears the active ticket; every outstanding ticket is rejected afterwards.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.active = Ticket{}
	t.mu.Unlock()
}

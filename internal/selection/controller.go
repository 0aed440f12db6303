// Package selection implements the single-selection state machine shared by
// the courier and delivery views: at most one entity is inspected at a time,
// its detail data is fetched lazily after selection, and background polling
// keeps running underneath.
package selection

import (
	"fmt"
	"sync"

	"github.com/logitrack/dispatch/internal/geo"
)

// Phase is the state of the selection machine.
type Phase int

const (
	// Unselected means nothing is being inspected.
	Unselected Phase = iota
	// Enriching means an entity is selected and its detail fetch is in flight.
	Enriching
	// Enriched means the detail fetch finished, successfully or with the
	// unknown sentinel.
	Enriched
)

// Enrichment is the secondary data fetched after selection. Known is false
// when the fetch failed and the sentinel "unknown" value is in effect.
type Enrichment struct {
	Known       bool
	Address     string
	Position    geo.LatLng
	HasPosition bool
}

// View is an immutable snapshot of the controller state.
type View struct {
	Phase      Phase
	ID         int64
	Enrichment Enrichment
	Notice     string
}

// Selected reports whether an entity is currently being inspected.
func (v View) Selected() bool {
	return v.Phase != Unselected
}

// Controller tracks the selected entity and guards against out-of-order
// completion: every enrichment dispatch carries a sequence number, and a
// result is applied only when its sequence is still the latest issued. Cancel
// and re-Select both advance the sequence, so late arrivals for a dead
// selection are discarded instead of resurrecting it.
type Controller struct {
	mu         sync.Mutex
	phase      Phase
	id         int64
	seq        uint64
	enrichment Enrichment
	notice     string

	// OnClear, when set, is invoked with the entity id whenever a selection
	// is dropped. The views use it to invalidate the derived route.
	OnClear func(id int64)
}

// Select begins inspecting the given entity and returns the sequence number
// the enrichment dispatch must carry. Selecting a new entity supersedes any
// in-flight enrichment for the previous one.
func (c *Controller) Select(id int64) uint64 {
	c.mu.Lock()

	var cleared int64
	if c.phase != Unselected && c.id != id {
		cleared = c.id
	}

	c.phase = Enriching
	c.id = id
	c.seq++
	c.enrichment = Enrichment{}
	c.notice = ""
	seq := c.seq
	onClear := c.OnClear

	c.mu.Unlock()

	if cleared != 0 && onClear != nil {
		onClear(cleared)
	}
	return seq
}

// Resolve applies an enrichment result. The result is discarded when its
// sequence is no longer the latest issued. A nil err moves the machine to
// Enriched with the given data; a non-nil err also moves to Enriched but with
// the unknown sentinel, so a failed lookup never fails the selection itself.
// It reports whether the result was applied.
func (c *Controller) Resolve(seq uint64, data Enrichment, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq || c.phase == Unselected {
		return false
	}

	if err != nil {
		c.enrichment = Enrichment{Known: false}
	} else {
		data.Known = true
		c.enrichment = data
	}
	c.phase = Enriched
	return true
}

// Cancel drops the selection from any state. Safe to call when nothing is
// selected. An in-flight enrichment result arriving afterwards is discarded
// by the sequence check.
func (c *Controller) Cancel() {
	c.mu.Lock()

	cleared := int64(0)
	if c.phase != Unselected {
		cleared = c.id
	}
	c.phase = Unselected
	c.id = 0
	c.seq++
	c.enrichment = Enrichment{}
	c.notice = ""
	onClear := c.OnClear

	c.mu.Unlock()

	if cleared != 0 && onClear != nil {
		onClear(cleared)
	}
}

// Reconcile checks the selection against the latest poll snapshot. When the
// selected entity is no longer present it auto-cancels and leaves a
// user-visible notice explaining why the detail panel went away.
func (c *Controller) Reconcile(contains func(id int64) bool) {
	c.mu.Lock()

	if c.phase == Unselected || contains(c.id) {
		c.mu.Unlock()
		return
	}

	cleared := c.id
	notice := fmt.Sprintf("#%d is no longer reported by the server", cleared)
	c.phase = Unselected
	c.id = 0
	c.seq++
	c.enrichment = Enrichment{}
	c.notice = notice
	onClear := c.OnClear

	c.mu.Unlock()

	if onClear != nil {
		onClear(cleared)
	}
}

// ClearNotice drops the pending notice once the UI has shown it.
func (c *Controller) ClearNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = ""
}

// Current returns a snapshot of the controller state.
func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Phase:      c.phase,
		ID:         c.id,
		Enrichment: c.enrichment,
		Notice:     c.notice,
	}
}

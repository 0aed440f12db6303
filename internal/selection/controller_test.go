package selection

import (
	"errors"
	"testing"

	"github.com/logitrack/dispatch/internal/geo"
)

func TestController_SelectThenResolve(t *testing.T) {
	var c Controller

	seq := c.Select(7)
	if v := c.Current(); v.Phase != Enriching || v.ID != 7 {
		t.Fatalf("after Select: %+v, want Enriching id=7", v)
	}

	applied := c.Resolve(seq, Enrichment{
		Address:     "Main St 1",
		Position:    geo.LatLng{Lat: 53.44, Lng: 14.56},
		HasPosition: true,
	}, nil)
	if !applied {
		t.Fatal("Resolve with current seq should apply")
	}

	v := c.Current()
	if v.Phase != Enriched || !v.Enrichment.Known || v.Enrichment.Address != "Main St 1" {
		t.Fatalf("after Resolve: %+v, want Enriched with address", v)
	}
}

func TestController_FailedEnrichmentKeepsSelection(t *testing.T) {
	var c Controller

	seq := c.Select(7)
	if !c.Resolve(seq, Enrichment{}, errors.New("lookup failed")) {
		t.Fatal("failed enrichment should still resolve the selection")
	}

	v := c.Current()
	if v.Phase != Enriched || v.ID != 7 {
		t.Fatalf("after failed enrichment: %+v, want Enriched id=7", v)
	}
	if v.Enrichment.Known {
		t.Fatal("failed enrichment must set the unknown sentinel")
	}
}

func TestController_CancelDiscardsLateEnrichment(t *testing.T) {
	var c Controller

	seq := c.Select(7)
	c.Cancel()

	// The in-flight result arrives after cancellation.
	if c.Resolve(seq, Enrichment{Address: "Main St 1"}, nil) {
		t.Fatal("late enrichment for a cancelled selection must be discarded")
	}
	if v := c.Current(); v.Phase != Unselected || v.ID != 0 {
		t.Fatalf("after late arrival: %+v, want Unselected", v)
	}
}

func TestController_ReselectSupersedesOlderDispatch(t *testing.T) {
	var c Controller

	oldSeq := c.Select(7)
	newSeq := c.Select(9)

	// The older request completes after the newer one was issued.
	if c.Resolve(oldSeq, Enrichment{Address: "stale"}, nil) {
		t.Fatal("superseded enrichment must be discarded")
	}
	if !c.Resolve(newSeq, Enrichment{Address: "fresh"}, nil) {
		t.Fatal("latest enrichment should apply")
	}

	v := c.Current()
	if v.ID != 9 || v.Enrichment.Address != "fresh" {
		t.Fatalf("selection = %+v, want id=9 with fresh enrichment", v)
	}
}

func TestController_ReconcileAutoCancelsStaleSelection(t *testing.T) {
	var cleared []int64
	c := Controller{OnClear: func(id int64) { cleared = append(cleared, id) }}

	seq := c.Select(7)
	c.Resolve(seq, Enrichment{Address: "Main St 1"}, nil)

	// Courier 7 still present: nothing happens.
	c.Reconcile(func(id int64) bool { return id == 7 })
	if v := c.Current(); v.Phase != Enriched {
		t.Fatalf("reconcile dropped a live selection: %+v", v)
	}

	// Courier 7 vanished from the latest snapshot.
	c.Reconcile(func(id int64) bool { return false })
	v := c.Current()
	if v.Phase != Unselected {
		t.Fatalf("after reconcile: %+v, want Unselected", v)
	}
	if v.Notice == "" {
		t.Fatal("auto-cancel should leave a user-visible notice")
	}
	if len(cleared) != 1 || cleared[0] != 7 {
		t.Fatalf("OnClear calls = %v, want [7]", cleared)
	}

	c.ClearNotice()
	if v := c.Current(); v.Notice != "" {
		t.Fatal("ClearNotice should drop the notice")
	}
}

func TestController_CancelClearsRoute(t *testing.T) {
	var cleared []int64
	c := Controller{OnClear: func(id int64) { cleared = append(cleared, id) }}

	c.Select(7)
	c.Cancel()
	if len(cleared) != 1 || cleared[0] != 7 {
		t.Fatalf("OnClear calls = %v, want [7]", cleared)
	}

	// Cancel with nothing selected is a no-op.
	c.Cancel()
	if len(cleared) != 1 {
		t.Fatalf("OnClear calls = %v, want single entry", cleared)
	}
}

func TestController_SwitchingSelectionClearsPreviousRoute(t *testing.T) {
	var cleared []int64
	c := Controller{OnClear: func(id int64) { cleared = append(cleared, id) }}

	c.Select(7)
	c.Select(9)
	if len(cleared) != 1 || cleared[0] != 7 {
		t.Fatalf("OnClear calls = %v, want [7]", cleared)
	}
}

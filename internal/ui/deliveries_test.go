package ui

import (
	"testing"

	"github.com/logitrack/dispatch/internal/api"
)

func TestSubmitNewDelivery(t *testing.T) {
	t.Run("blank address sends nothing", func(t *testing.T) {
		m := New(Options{})
		m.addrAdding = true
		m.addrInput.SetValue("   ")

		next, cmd := m.submitNewDelivery()
		if cmd != nil {
			t.Error("blank address should not produce a request command")
		}
		if next.(Model).addrAdding {
			t.Error("submit should leave the input mode")
		}
	})

	t.Run("address produces the add command", func(t *testing.T) {
		m := New(Options{})
		m.addrAdding = true
		m.addrInput.SetValue("  Dluga 4  ")

		_, cmd := m.submitNewDelivery()
		if cmd == nil {
			t.Fatal("expected a request command for a non-blank address")
		}
	})
}

func TestVisibleDeliveriesPrefersOptimizedOrder(t *testing.T) {
	m := New(Options{})
	m.deliveries.Items = []api.Delivery{{ID: 1}, {ID: 2}}

	if got := m.visibleDeliveries(); len(got) != 2 || got[0].ID != 1 {
		t.Fatalf("store order = %+v, want [1 2]", got)
	}

	m.optimized = []api.Delivery{{ID: 2}, {ID: 1}}
	m.showOptimized = true
	if got := m.visibleDeliveries(); got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("optimized order = %+v, want [2 1]", got)
	}

	m.showOptimized = false
	if got := m.visibleDeliveries(); got[0].ID != 1 {
		t.Fatalf("toggling off should restore store order, got %+v", got)
	}
}

package bluetooth

import (
	"reflect"
	"testing"
)

func TestRSSIWindow(t *testing.T) {
	w := newRSSIWindow(3)
	if v := w.values(); v != nil {
		t.Fatalf("expected nil for empty window, got %v", v)
	}

	w.push(-50)
	w.push(-51)
	if v := w.values(); !reflect.DeepEqual(v, []float64{-50, -51}) {
		t.Errorf("partial window: %v", v)
	}

	w.push(-52)
	w.push(-53)
	w.push(-54)
	if v := w.values(); !reflect.DeepEqual(v, []float64{-52, -53, -54}) {
		t.Errorf("wrapped window: %v", v)
	}

	v := w.values()
	v[0] = 0
	if w.values()[0] != -52 {
		t.Error("values shares the backing buffer")
	}
}

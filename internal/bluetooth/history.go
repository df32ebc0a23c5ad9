package bluetooth

// rssiWindow keeps the last n raw RSSI readings of one beacon.
type rssiWindow struct {
	buf  []float64
	next int
	full bool
}

func newRSSIWindow(n int) *rssiWindow {
	return &rssiWindow{buf: make([]float64, n)}
}

func (w *rssiWindow) push(v float64) {
	w.buf[w.next] = v
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		w.full = true
	}
}

// values returns a copy, oldest first.
func (w *rssiWindow) values() []float64 {
	if !w.full {
		if w.next == 0 {
			return nil
		}
		return append([]float64(nil), w.buf[:w.next]...)
	}
	out := make([]float64, 0, len(w.buf))
	out = append(out, w.buf[w.next:]...)
	return append(out, w.buf[:w.next]...)
}

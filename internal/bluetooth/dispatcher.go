package bluetooth

import (
	"context"
	"sync"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/config"
)

// dispatcher delivers stack events to the registered handler from a single
// goroutine, in the order they were posted. Posting never blocks, so the
// handler may issue commands that post further events.
type dispatcher struct {
	mu      sync.Mutex
	handler beacon.Handler
	queue   []beacon.Event
	wake    chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		wake: make(chan struct{}, 1),
	}
}

// register installs h and starts the delivery loop. Only the first call
// starts the loop; later calls replace the handler.
func (d *dispatcher) register(h beacon.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handler = h
	if d.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.loop(ctx)
}

func (d *dispatcher) loop(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case <-d.wake:
			d.drain()
		}
	}
}

// drain delivers the events queued when it was called.
func (d *dispatcher) drain() {
	d.mu.Lock()
	n := len(d.queue)
	d.mu.Unlock()

	for ; n > 0; n-- {
		d.mu.Lock()
		ev := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		h := d.handler
		d.mu.Unlock()

		if h != nil {
			h(ev)
		}
	}
}

// post queues ev for delivery. Scan results are dropped while the backlog
// is at config.EventQueueLen; completion events are always queued.
func (d *dispatcher) post(ev beacon.Event) {
	d.mu.Lock()
	if _, ok := ev.(beacon.ScanResult); ok && len(d.queue) >= config.EventQueueLen {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// close delivers what is already queued and stops the delivery loop. It
// must not be called from the handler.
func (d *dispatcher) close() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

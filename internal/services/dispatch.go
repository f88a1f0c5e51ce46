package services

import (
	"log"
	"sync"
)

type task struct {
	name string
	run  func() error
}

// Dispatcher runs notification sends on a bounded worker pool so a slow or
// failing delivery channel never blocks the request path. Task outcomes are
// observable only through logs, never through a caller's return value.
type Dispatcher struct {
	tasks   chan task
	workers int
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewDispatcher creates a dispatcher with the given worker count and queue size.
func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		tasks:   make(chan task, queueSize),
		workers: workers,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for t := range d.tasks {
				if err := t.run(); err != nil {
					log.Printf("❌ Background task %s failed: %v", t.name, err)
				}
			}
		}()
	}
	log.Printf("Dispatcher started with %d workers", d.workers)
}

// Submit queues a task without blocking. When the queue is full the task is
// dropped and logged; delivery is best-effort by contract.
func (d *Dispatcher) Submit(name string, run func() error) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		log.Printf("Dispatcher stopped, dropping task %s", name)
		return
	}
	d.mu.Unlock()

	select {
	case d.tasks <- task{name: name, run: run}:
	default:
		log.Printf("Dispatcher queue full, dropping task %s", name)
	}
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.tasks)
	d.wg.Wait()
}

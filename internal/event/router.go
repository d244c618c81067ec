package event

// Handler receives routed events within a context T.
type Handler[T any] interface {
	// HandleEvent is called synchronously during dispatch.
	HandleEvent(ctx T, ev Event)
	// EventTypes lists the types the handler subscribes to.
	EventTypes() []Type
}

// Func adapts a plain function into a Handler.
type Func[T any] struct {
	Types []Type
	Fn    func(ctx T, ev Event)
}

// HandleEvent implements Handler.
func (f Func[T]) HandleEvent(ctx T, ev Event) { f.Fn(ctx, ev) }

// EventTypes implements Handler.
func (f Func[T]) EventTypes() []Type { return f.Types }

// Router dispatches queued events to handlers in registration order.
type Router[T any] struct {
	handlers map[Type][]Handler[T]
	queue    *Queue
}

// NewRouter creates a router attached to queue.
func NewRouter[T any](queue *Queue) *Router[T] {
	return &Router[T]{
		handlers: make(map[Type][]Handler[T]),
		queue:    queue,
	}
}

// Queue returns the attached queue.
func (r *Router[T]) Queue() *Queue { return r.queue }

// Register adds a handler for its declared types.
func (r *Router[T]) Register(h Handler[T]) {
	for _, t := range h.EventTypes() {
		r.handlers[t] = append(r.handlers[t], h)
	}
}

// DispatchAll consumes pending events and routes them, FIFO. It returns the
// number of events consumed.
func (r *Router[T]) DispatchAll(ctx T) int {
	events := r.queue.Consume()
	for _, ev := range events {
		for _, h := range r.handlers[ev.Type] {
			h.HandleEvent(ctx, ev)
		}
	}
	return len(events)
}

// HandlerCount returns the number of handlers registered for t.
func (r *Router[T]) HandlerCount(t Type) int {
	return len(r.handlers[t])
}

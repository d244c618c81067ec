package event

import (
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Push(Event{Type: StatsUpdated, Tick: uint64(i)})
	}
	if q.Len() != 5 {
		t.Fatalf("len = %d", q.Len())
	}
	got := q.Consume()
	if len(got) != 5 {
		t.Fatalf("consumed %d", len(got))
	}
	for i, ev := range got {
		if ev.Tick != uint64(i) {
			t.Fatalf("event %d has tick %d", i, ev.Tick)
		}
	}
	if q.Consume() != nil {
		t.Fatal("queue must be empty after consume")
	}
}

func TestQueueOverwritesOldest(t *testing.T) {
	q := NewQueue()
	total := QueueSize + 10
	for i := 0; i < total; i++ {
		q.Push(Event{Tick: uint64(i)})
	}
	got := q.Consume()
	if len(got) != QueueSize {
		t.Fatalf("consumed %d, want %d", len(got), QueueSize)
	}
	if got[0].Tick != 10 || got[len(got)-1].Tick != uint64(total-1) {
		t.Fatalf("window = [%d, %d]", got[0].Tick, got[len(got)-1].Tick)
	}
	if q.Dropped() != 10 {
		t.Fatalf("dropped = %d", q.Dropped())
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 32; i++ {
				q.Push(Event{Type: ParticleCreated})
			}
		}()
	}
	wg.Wait()
	if got := len(q.Consume()); got != 128 {
		t.Fatalf("consumed %d, want 128", got)
	}
}

type recorder struct {
	types []Type
	seen  []Type
}

func (r *recorder) HandleEvent(ctx *int, ev Event) {
	*ctx++
	r.seen = append(r.seen, ev.Type)
}

func (r *recorder) EventTypes() []Type { return r.types }

func TestRouterDispatch(t *testing.T) {
	q := NewQueue()
	router := NewRouter[*int](q)
	anomalies := &recorder{types: []Type{AnomalyRaised}}
	router.Register(anomalies)
	var fnCalls int
	router.Register(Func[*int]{
		Types: []Type{AnomalyRaised, InflationEnded},
		Fn:    func(ctx *int, ev Event) { fnCalls++ },
	})

	q.Push(Event{Type: AnomalyRaised})
	q.Push(Event{Type: StatsUpdated})
	q.Push(Event{Type: InflationEnded})

	calls := 0
	if n := router.DispatchAll(&calls); n != 3 {
		t.Fatalf("dispatched %d", n)
	}
	if len(anomalies.seen) != 1 || fnCalls != 2 || calls != 1 {
		t.Fatalf("seen=%v fn=%d ctx=%d", anomalies.seen, fnCalls, calls)
	}
	if router.HandlerCount(AnomalyRaised) != 2 {
		t.Fatal("two handlers registered for anomalies")
	}
	if AnomalyRaised.String() != "anomaly-raised" || Type(99).String() != "unknown" {
		t.Fatal("type names")
	}
}

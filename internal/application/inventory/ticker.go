package inventory

import (
	"fmt"
	"sync"
	"time"
)

// TickSource origen de disparos del monitor.
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

// IntervalTicker dispara cada período fijo.
type IntervalTicker struct {
	t *time.Ticker
}

// NewIntervalTicker crea un ticker de período d (> 0).
func NewIntervalTicker(d time.Duration) *IntervalTicker {
	return &IntervalTicker{t: time.NewTicker(d)}
}

func (i *IntervalTicker) C() <-chan time.Time { return i.t.C }
func (i *IntervalTicker) Stop()               { i.t.Stop() }

// DailyTicker dispara una vez al día a la hora indicada, en la zona loc.
type DailyTicker struct {
	hour, minute int
	loc          *time.Location
	c            chan time.Time
	stop         chan struct{}
	once         sync.Once
}

// NewDailyTicker arranca un ticker diario a hour:minute.
func NewDailyTicker(hour, minute int, loc *time.Location) *DailyTicker {
	if loc == nil {
		loc = time.UTC
	}
	d := &DailyTicker{
		hour:   hour,
		minute: minute,
		loc:    loc,
		c:      make(chan time.Time, 1),
		stop:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *DailyTicker) C() <-chan time.Time { return d.c }

func (d *DailyTicker) Stop() {
	d.once.Do(func() { close(d.stop) })
}

func (d *DailyTicker) loop() {
	for {
		next := NextDailyRun(time.Now(), d.hour, d.minute, d.loc)
		timer := time.NewTimer(time.Until(next))
		select {
		case t := <-timer.C:
			select {
			case d.c <- t:
			default:
			}
		case <-d.stop:
			timer.Stop()
			return
		}
	}
}

// NextDailyRun próximo instante estrictamente posterior a now con hora hour:minute en loc.
func NextDailyRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	n := now.In(loc)
	next := time.Date(n.Year(), n.Month(), n.Day(), hour, minute, 0, 0, loc)
	if !next.After(n) {
		next = time.Date(n.Year(), n.Month(), n.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// ParseClock interpreta "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("hora inválida %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ManualTrigger disparo externo (endpoint HTTP). Disparos pendientes se fusionan en uno.
type ManualTrigger struct {
	c chan time.Time
}

// NewManualTrigger crea un disparador manual.
func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{c: make(chan time.Time, 1)}
}

// Fire encola un barrido. false si ya había uno pendiente.
func (m *ManualTrigger) Fire() bool {
	select {
	case m.c <- time.Now():
		return true
	default:
		return false
	}
}

func (m *ManualTrigger) C() <-chan time.Time { return m.c }
func (m *ManualTrigger) Stop()               {}

// mergedTicks une varios orígenes en un solo canal.
type mergedTicks struct {
	sources []TickSource
	c       chan time.Time
	stop    chan struct{}
	once    sync.Once
}

// MergeTicks combina orígenes; Stop detiene todos.
func MergeTicks(sources ...TickSource) TickSource {
	m := &mergedTicks{sources: sources, c: make(chan time.Time, 1), stop: make(chan struct{})}
	for _, s := range sources {
		go m.forward(s)
	}
	return m
}

func (m *mergedTicks) forward(s TickSource) {
	for {
		select {
		case t := <-s.C():
			select {
			case m.c <- t:
			default:
			}
		case <-m.stop:
			return
		}
	}
}

func (m *mergedTicks) C() <-chan time.Time { return m.c }

func (m *mergedTicks) Stop() {
	m.once.Do(func() {
		close(m.stop)
		for _, s := range m.sources {
			s.Stop()
		}
	})
}

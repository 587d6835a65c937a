package trace

import "errors"

// Tee copies every event to each of its sinks.
type Tee struct {
	sinks []Tracer
	level Level
}

// NewTee returns a tracer emitting to sinks at level.
func NewTee(level Level, sinks ...Tracer) *Tee {
	return &Tee{sinks: sinks, level: level}
}

// Emit hands each sink its own copy; sinks may stamp the event.
func (t *Tee) Emit(ev *Event) {
	for _, s := range t.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (t *Tee) Flush() error {
	errs := make([]error, 0, len(t.sinks))
	for _, s := range t.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (t *Tee) Close() error {
	errs := make([]error, 0, len(t.sinks))
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (t *Tee) Level() Level  { return t.level }
func (t *Tee) Enabled() bool { return t.level > LevelOff }

// Ring returns the first ring sink, if any.
func (t *Tee) Ring() (*RingTracer, bool) {
	for _, s := range t.sinks {
		if r, ok := s.(*RingTracer); ok {
			return r, true
		}
	}
	return nil, false
}

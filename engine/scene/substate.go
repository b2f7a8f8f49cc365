package scene

import "github.com/Carmen-Shannon/millennium-run/engine/message"

// StateFuncs are the handlers of one sub-state. Nil handlers are skipped.
type StateFuncs[T any] struct {
	HandleEvents func(s *T, c *Context, ev message.LogicEvent) error
	Update       func(s *T, c *Context, elapsed float64) error
	Draw         func(s *T, c *Context, f *Frame) error
}

// Table dispatches a scene's methods by its current sub-state. Index i holds the
// handlers of sub-state S(i); a scene changes state by writing its state field.
type Table[S ~int, T any] []StateFuncs[T]

func (t Table[S, T]) at(state S) StateFuncs[T] {
	if int(state) < 0 || int(state) >= len(t) {
		return StateFuncs[T]{}
	}
	return t[state]
}

// HandleEvents runs the event handler of state.
func (t Table[S, T]) HandleEvents(state S, s *T, c *Context, ev message.LogicEvent) error {
	if fn := t.at(state).HandleEvents; fn != nil {
		return fn(s, c, ev)
	}
	return nil
}

// Update runs the update handler of state.
func (t Table[S, T]) Update(state S, s *T, c *Context, elapsed float64) error {
	if fn := t.at(state).Update; fn != nil {
		return fn(s, c, elapsed)
	}
	return nil
}

// Draw runs the draw handler of state, appending to f.
func (t Table[S, T]) Draw(state S, s *T, c *Context, f *Frame) error {
	if fn := t.at(state).Draw; fn != nil {
		return fn(s, c, f)
	}
	return nil
}

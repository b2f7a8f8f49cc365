package scenes

import (
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/settings"
)

// Entry is the first scene. It draws one blank frame and routes to first-time setup
// when no language has been chosen, or to the intro otherwise.
type Entry struct {
	base
}

var _ scene.Scene = &Entry{}

// NewEntry creates the entry scene.
func NewEntry() *Entry { return &Entry{} }

func (s *Entry) Name() string { return "entry" }

func (s *Entry) Enter(*scene.Context) error { return nil }

func (s *Entry) Exit(*scene.Context) error { return nil }

func (s *Entry) HandleEvents(*scene.Context, message.LogicEvent) error { return nil }

func (s *Entry) Update(c *scene.Context, _ float64) error {
	if s.next.Transition != scene.Keep {
		return nil
	}
	if settingsOf(c).Language == settings.Unknown {
		s.next = scene.ChangeTo(NewSetup())
	} else {
		s.next = scene.ChangeTo(NewIntro())
	}
	return nil
}

func (s *Entry) RenderSubmit(c *scene.Context) error {
	screenOf(c).Begin(colorBlack)
	return screenOf(c).Submit(c)
}

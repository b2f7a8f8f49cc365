package scenes

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/millennium-run/common"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/engine/audio"
	"github.com/Carmen-Shannon/millennium-run/engine/logic"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/game/records"
	"github.com/Carmen-Shannon/millennium-run/game/save"
	"github.com/Carmen-Shannon/millennium-run/game/settings"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
	"github.com/Carmen-Shannon/millennium-run/game/tile"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

type harness struct {
	t      *testing.T
	fabric *message.Fabric
	worker logic.Worker
	reg    *scene.Registry
}

func newHarness(t *testing.T, initial scene.Scene, reg *scene.Registry) *harness {
	t.Helper()
	f := message.NewFabric()
	return &harness{t: t, fabric: f, reg: reg, worker: logic.NewWorker(f, initial, logic.WithRegistry(reg))}
}

// frame runs one fixed step and one render submission.
func (h *harness) frame() {
	h.worker.Handle(message.NextMainEventsEvent(logic.Step))
	h.worker.Handle(message.MainEventsClearedEvent())
}

// wait runs frames covering seconds of game time.
func (h *harness) wait(seconds float64) {
	for range int(seconds/logic.Step) + 2 {
		h.frame()
	}
}

func (h *harness) key(code uint32) {
	h.worker.Handle(message.KeyPressedEvent(code))
	h.worker.Handle(message.KeyReleasedEvent(code))
}

func (h *harness) stack(want ...string) {
	h.t.Helper()
	if got := h.worker.Stack(); !reflect.DeepEqual(got, want) {
		h.t.Fatalf("stack = %v, want %v", got, want)
	}
}

func registryWith(st settings.Settings) (*scene.Registry, *settings.Settings) {
	reg := scene.NewRegistry()
	p := &st
	_ = scene.Put(reg, p)
	return reg, p
}

func TestEntryRoutesByLanguage(t *testing.T) {
	tests := []struct {
		lang settings.Language
		want string
	}{
		{settings.Unknown, "setup"},
		{settings.English, "intro"},
		{settings.Korean, "intro"},
	}
	for _, tt := range tests {
		t.Run(tt.lang.String(), func(t *testing.T) {
			st := settings.Default()
			st.Language = tt.lang
			reg, _ := registryWith(st)
			h := newHarness(t, NewEntry(), reg)
			h.frame()
			h.stack(tt.want)
		})
	}
}

func TestSetupChoosesLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "en_US.UTF-8")
	reg, st := registryWith(settings.Default())
	h := newHarness(t, NewSetup(), reg)
	h.frame()

	h.key(common.KeyDown)
	h.key(common.KeyEnter)
	if st.Language != settings.Korean {
		t.Fatalf("language = %v, want Korean", st.Language)
	}
	cmds := h.fabric.Commands.Drain()
	if len(cmds) != 1 || cmds[0].Kind != message.CommandApplyWindow || cmds[0].Window.Title != "밀레니엄 런" {
		t.Errorf("commands = %+v, want one window change with the Korean title", cmds)
	}

	h.wait(FadeDuration)
	h.stack("intro")
}

func TestSetupCursorFollowsLocale(t *testing.T) {
	t.Setenv("LC_ALL", "ko_KR.UTF-8")
	if s := NewSetup(); setupChoices[s.menu.cursor] != settings.Korean {
		t.Errorf("cursor on %v, want Korean", setupChoices[s.menu.cursor])
	}
}

func TestIntroSkipsToTitle(t *testing.T) {
	reg, _ := registryWith(settings.Default())
	h := newHarness(t, NewIntro(), reg)
	h.frame()
	h.key(common.KeyEnter)
	h.wait(FadeDuration)
	h.stack("title")
}

func TestIntroRunsThrough(t *testing.T) {
	reg, _ := registryWith(settings.Default())
	h := newHarness(t, NewIntro(), reg)
	total := 0.0
	for _, d := range introDurations {
		total += d
	}
	// each state change can cost one extra step
	h.wait(total + 0.2)
	h.stack("title")
}

func TestTitlePushesAndPopsSettings(t *testing.T) {
	st := settings.Default()
	st.Language = settings.English
	reg, p := registryWith(st)
	h := newHarness(t, NewTitle(), reg)
	h.wait(FadeDuration)

	h.key(common.KeyDown)
	h.key(common.KeyEnter)
	h.frame()
	h.stack("title", "settings")

	// row 0 is the language
	h.key(common.KeyRight)
	if p.Language != settings.Korean {
		t.Errorf("language = %v, want Korean", p.Language)
	}
	for range rowBackground {
		h.key(common.KeyDown)
	}
	h.key(common.KeyLeft)
	if p.BackgroundVolume != 70 {
		t.Errorf("background volume = %d, want 70", p.BackgroundVolume)
	}

	h.key(common.KeyEsc)
	h.frame()
	h.stack("title")
}

func TestTitleExitEmptiesStack(t *testing.T) {
	reg, _ := registryWith(settings.Default())
	h := newHarness(t, NewTitle(), reg)
	h.wait(FadeDuration)
	h.key(common.KeyUp) // wraps to EXIT
	h.key(common.KeyEnter)
	h.wait(FadeDuration)
	if h.fabric.Running.IsRunning() {
		t.Error("popping the last scene should stop the game")
	}
}

func TestAdjustBounds(t *testing.T) {
	st := settings.Default()
	st.EffectVolume = 100
	adjust(&st, rowEffect, 1)
	if st.EffectVolume != 100 {
		t.Errorf("effect volume = %d, want capped at 100", st.EffectVolume)
	}
	st.Resolution = settings.W640H360
	adjust(&st, rowResolution, -1)
	if st.Resolution != settings.W1920H1080 {
		t.Errorf("resolution = %v, want wrap to the largest", st.Resolution)
	}
	adjust(&st, rowScreenMode, 1)
	if st.ScreenMode != settings.FullScreen {
		t.Errorf("screen mode = %v", st.ScreenMode)
	}
	if adjust(&st, rowBack, 1) {
		t.Error("the back row has nothing to adjust")
	}
}

func quickStage() stage.Table {
	return stage.Table{Stages: []stage.Stage{{
		ActorName:     "Aris",
		Actor:         stage.Aris,
		Rows:          10,
		Cols:          10,
		TimeLimit:     1,
		Stars:         [3]int{40, 70, 95},
		HalfSpawnArea: 1,
		BossSpeed:     1,
		BulletSpeed:   1,
		FireInterval:  1000,
	}}}
}

func TestRoundToResultRecordsRun(t *testing.T) {
	reg, _ := registryWith(settings.Default())
	_ = scene.Put(reg, quickStage())
	sv := save.Default()
	_ = scene.Put(reg, &sv)
	store, err := records.Open(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	defer store.Close()
	_ = scene.Put(reg, store)

	game := NewInGame(stage.Aris, 7)
	h := newHarness(t, game, reg)
	h.frame()
	if game.Round() == nil {
		t.Fatal("Enter did not build a round")
	}
	h.wait(FadeDuration + spawnDuration + readyDuration + 1 + resultDuration + 0.2)
	h.stack("result")

	// the player never moved: only the 3x3 spawn square of 64 tiles is owned
	if sv.Aris != 14 || sv.Beginner {
		t.Errorf("save = %+v, want Aris 14 and Beginner cleared", sv)
	}
	runs, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Percent != 14 || runs[0].Stars != 0 || runs[0].Cleared {
		t.Errorf("runs = %+v, want one uncleared run at 14%%", runs)
	}
}

func TestPauseStopsTheClock(t *testing.T) {
	reg, _ := registryWith(settings.Default())
	_ = scene.Put(reg, quickStage())
	game := NewInGame(stage.Aris, 7)
	h := newHarness(t, game, reg)
	h.wait(FadeDuration + spawnDuration + readyDuration + 0.1)
	if game.state != inGameRun {
		t.Fatalf("state = %d, want run", game.state)
	}
	h.key(common.KeyEsc)
	before := game.Round().Elapsed()
	h.wait(0.5)
	if game.Round().Elapsed() != before {
		t.Error("time advanced while paused")
	}
	h.key(common.KeyDown)
	h.key(common.KeyEnter)
	h.frame()
	h.stack("title")
}

func TestResultStarsAppearInTurn(t *testing.T) {
	s := NewResult(stage.Momoi, tile.Result{Reason: tile.TimeUp, Percent: 75, Stars: 2})
	if s.shownStars() != 0 {
		t.Error("stars shown during the fade")
	}
	s.clock.t = FadeDuration + 0.01
	if got := s.shownStars(); got != 1 {
		t.Errorf("shown = %d, want 1", got)
	}
	s.clock.t = FadeDuration + 3*starDelay
	if got := s.shownStars(); got != 2 {
		t.Errorf("shown = %d, want capped at 2", got)
	}
}

func TestScenesLeaveRegistryUntouched(t *testing.T) {
	scenes := []scene.Scene{
		NewEntry(), NewSetup(), NewIntro(), NewTitle(), NewSettingsMenu(),
		NewInGame(stage.Aris, 1), NewResult(stage.Aris, tile.Result{}),
	}
	for _, s := range scenes {
		t.Run(s.Name(), func(t *testing.T) {
			reg, _ := registryWith(settings.Default())
			_ = scene.Put(reg, quickStage())
			before := reg.Types()
			c := &scene.Context{Ctx: context.Background(), Shared: reg, Fabric: message.NewFabric(), Log: zap.NewNop()}
			if err := s.Enter(c); err != nil {
				t.Fatalf("Enter: %v", err)
			}
			if err := s.Exit(c); err != nil {
				t.Fatalf("Exit: %v", err)
			}
			if got := reg.Types(); !reflect.DeepEqual(got, before) {
				t.Errorf("registry = %v, want %v", got, before)
			}
		})
	}
}

// musicRegistry returns a registry holding a bundle with a short background track and
// a sink without a device.
func musicRegistry(t *testing.T) (*scene.Registry, *audio.Sink) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, assets.ManifestName), []byte(MusicPath+" Dynamic\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, filepath.FromSlash(MusicPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	left := 2205
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if left <= 0 {
			return 0, false
		}
		n := min(len(samples), left)
		for i := range n {
			samples[i] = [2]float64{0.25, 0.25}
		}
		left -= n
		return n, true
	})
	if err := wav.Encode(f, tone, beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	b, err := assets.NewBundle(assets.WithRoots(root), assets.WithKeysDir(t.TempDir()), assets.WithWatch(false))
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	sink := audio.NewSink(audio.WithoutDevice())
	t.Cleanup(sink.Close)

	reg, _ := registryWith(settings.Default())
	_ = scene.Put(reg, b)
	_ = scene.Put(reg, sink)
	return reg, sink
}

func TestTitleLoopsBackgroundMusic(t *testing.T) {
	reg, sink := musicRegistry(t)
	h := newHarness(t, NewTitle(), reg)
	h.frame()
	if !sink.BackgroundPlaying() {
		t.Fatal("entering the title should start the background track")
	}

	h.wait(FadeDuration)
	h.key(common.KeyDown)
	h.key(common.KeyEnter)
	h.frame()
	h.stack("title", "settings")
	if !sink.BackgroundPlaying() {
		t.Error("the track should keep playing under the settings menu")
	}

	h.key(common.KeyEsc)
	h.frame()
	h.key(common.KeyDown) // EXIT, below SETTINGS
	h.key(common.KeyEnter)
	h.wait(FadeDuration)
	if sink.BackgroundPlaying() {
		t.Error("leaving the title should stop the background track")
	}
}

func TestInGameRestartsMusic(t *testing.T) {
	reg, sink := musicRegistry(t)
	_ = scene.Put(reg, quickStage())
	c := &scene.Context{Ctx: context.Background(), Shared: reg, Fabric: message.NewFabric(), Log: zap.NewNop()}

	s := NewInGame(stage.Aris, 1)
	if err := s.Enter(c); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if !sink.BackgroundPlaying() {
		t.Error("the round should loop the background track")
	}
	if err := s.Exit(c); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if sink.BackgroundPlaying() {
		t.Error("the track should stop when the round ends")
	}
}

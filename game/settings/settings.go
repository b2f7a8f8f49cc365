// Package settings holds the user's preferences: language, window mode and size,
// volumes and key bindings. They are stored as TOML in an Optional asset.
package settings

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/millennium-run/common"
	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/window"
	"golang.org/x/text/language"
)

// Path is the settings asset's manifest path.
const Path = "user/settings.toml"

// MaxVolume is the top of the volume scale.
const MaxVolume = 100

// Language is the interface language. Unknown means the player has not chosen yet.
type Language int

const (
	Unknown Language = iota
	Korean
	English
)

var supported = []language.Tag{language.English, language.Korean}

var matcher = language.NewMatcher(supported)

// Tag returns the BCP 47 tag of l.
func (l Language) Tag() language.Tag {
	switch l {
	case Korean:
		return language.Korean
	case English:
		return language.English
	}
	return language.Und
}

func (l Language) String() string { return l.Tag().String() }

// ParseLanguage maps a BCP 47 tag or a POSIX locale such as "ko_KR.UTF-8" to the
// closest supported language. Anything that does not match gives Unknown.
func ParseLanguage(s string) Language {
	s, _, _ = strings.Cut(s, ".")
	if s == "" || s == "C" || s == "POSIX" {
		return Unknown
	}
	tag, err := language.Parse(s)
	if err != nil || tag == language.Und {
		return Unknown
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Unknown
	}
	switch supported[index] {
	case language.Korean:
		return Korean
	case language.English:
		return English
	}
	return Unknown
}

func (l Language) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Language) UnmarshalText(text []byte) error {
	*l = ParseLanguage(string(text))
	return nil
}

// ScreenMode is windowed or borderless full screen.
type ScreenMode int

const (
	Windowed ScreenMode = iota
	FullScreen
)

func (m ScreenMode) String() string {
	if m == FullScreen {
		return "fullscreen"
	}
	return "windowed"
}

func (m ScreenMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ScreenMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "windowed":
		*m = Windowed
	case "fullscreen":
		*m = FullScreen
	default:
		return fmt.Errorf("unknown screen mode %q", text)
	}
	return nil
}

// Resolution is one of the supported window sizes, smallest first.
type Resolution int

const (
	W640H360 Resolution = iota
	W960H540
	W1280H720
	W1440H810
	W1600H900
	W1920H1080

	numResolutions = 6
)

var resolutionSizes = [numResolutions]window.Size{
	{Width: 640, Height: 360},
	{Width: 960, Height: 540},
	{Width: 1280, Height: 720},
	{Width: 1440, Height: 810},
	{Width: 1600, Height: 900},
	{Width: 1920, Height: 1080},
}

// Resolutions lists every resolution, smallest first.
func Resolutions() []Resolution {
	out := make([]Resolution, numResolutions)
	for i := range out {
		out[i] = Resolution(i)
	}
	return out
}

// Size returns the pixel size of r. Out-of-range values give the default size.
func (r Resolution) Size() window.Size {
	if r < 0 || r >= numResolutions {
		return resolutionSizes[W1280H720]
	}
	return resolutionSizes[r]
}

func (r Resolution) String() string { return r.Size().String() }

// Chain returns every supported size, used by the window to downgrade when the
// chosen resolution does not fit the monitor.
func Chain() []window.Size {
	return append([]window.Size(nil), resolutionSizes[:]...)
}

func (r Resolution) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Resolution) UnmarshalText(text []byte) error {
	for i, s := range resolutionSizes {
		if s.String() == string(text) {
			*r = Resolution(i)
			return nil
		}
	}
	return fmt.Errorf("unsupported resolution %q", text)
}

// Key is a key code stored by name.
type Key uint32

func (k Key) MarshalText() ([]byte, error) {
	name := common.KeyName(uint32(k))
	if name == "" {
		return nil, fmt.Errorf("key %d has no name", uint32(k))
	}
	return []byte(name), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	code, ok := common.KeyByName(string(text))
	if !ok {
		return fmt.Errorf("unknown key %q", text)
	}
	*k = Key(code)
	return nil
}

// Controls are the key bindings used by every scene.
type Controls struct {
	Up      Key `toml:"up"`
	Down    Key `toml:"down"`
	Left    Key `toml:"left"`
	Right   Key `toml:"right"`
	Confirm Key `toml:"confirm"`
	Cancel  Key `toml:"cancel"`
}

// Settings is the decoded settings file.
type Settings struct {
	Language         Language   `toml:"language"`
	ScreenMode       ScreenMode `toml:"screen_mode"`
	Resolution       Resolution `toml:"resolution"`
	BackgroundVolume int        `toml:"background_volume"`
	EffectVolume     int        `toml:"effect_volume"`
	Controls         Controls   `toml:"controls"`
}

// Default returns the settings of a first launch.
func Default() Settings {
	return Settings{
		Language:         Unknown,
		ScreenMode:       Windowed,
		Resolution:       W1280H720,
		BackgroundVolume: 80,
		EffectVolume:     80,
		Controls: Controls{
			Up:      common.KeyUp,
			Down:    common.KeyDown,
			Left:    common.KeyLeft,
			Right:   common.KeyRight,
			Confirm: common.KeyEnter,
			Cancel:  common.KeyEsc,
		},
	}
}

// Title returns the window title for the chosen language.
func (s Settings) Title() string {
	switch s.Language {
	case Korean:
		return "밀레니엄 런"
	case English:
		return "Millennium Run"
	}
	return "Select your language."
}

// WindowRequest describes the window these settings ask for.
func (s Settings) WindowRequest() message.WindowRequest {
	size := s.Resolution.Size()
	return message.WindowRequest{
		Title:      s.Title(),
		Width:      size.Width,
		Height:     size.Height,
		FullScreen: s.ScreenMode == FullScreen,
	}
}

// Direction reports which movement direction key maps to, as a row and column delta.
func (s Settings) Direction(key uint32) (dr, dc int, ok bool) {
	switch Key(key) {
	case s.Controls.Up:
		return -1, 0, true
	case s.Controls.Down:
		return 1, 0, true
	case s.Controls.Left:
		return 0, -1, true
	case s.Controls.Right:
		return 0, 1, true
	}
	return 0, 0, false
}

func (s Settings) validate() error {
	if s.BackgroundVolume < 0 || s.BackgroundVolume > MaxVolume {
		return fmt.Errorf("background_volume %d outside 0..%d", s.BackgroundVolume, MaxVolume)
	}
	if s.EffectVolume < 0 || s.EffectVolume > MaxVolume {
		return fmt.Errorf("effect_volume %d outside 0..%d", s.EffectVolume, MaxVolume)
	}
	return nil
}

// Codec reads and writes the TOML form. Missing keys keep their default values.
type Codec struct{}

func (Codec) Encode(s Settings) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("settings: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (Codec) Decode(data []byte) (Settings, error) {
	s := Default()
	if _, err := toml.Decode(string(data), &s); err != nil {
		return Settings{}, apperr.Wrap(apperr.ParsingError, "settings.decode", Path, err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, apperr.Wrap(apperr.ParsingError, "settings.decode", Path, err)
	}
	return s, nil
}

// Load reads the settings asset. A missing file gives Default.
func Load(h *assets.Handle) (Settings, error) {
	if !h.Exists() {
		return Default(), nil
	}
	return assets.Read[Settings](h, Codec{})
}

// Store writes s to the settings asset, creating it on first use.
func Store(h *assets.Handle, s Settings) error {
	return assets.Write[Settings](h, Codec{}, s)
}

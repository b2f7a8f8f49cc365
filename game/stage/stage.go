// Package stage holds the per-actor stage table: grid size, time limit, star
// thresholds and boss tuning, decoded from YAML.
package stage

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Actor is a playable character. Each actor has one stage.
type Actor int

const (
	Aris Actor = iota
	Momoi
	Midori
	Yuzu

	NumActors = 4
)

var actorNames = [NumActors]string{"Aris", "Momoi", "Midori", "Yuzu"}

func (a Actor) String() string {
	if a < 0 || a >= NumActors {
		return fmt.Sprintf("Actor(%d)", int(a))
	}
	return actorNames[a]
}

// ParseActor maps a name to an Actor, ignoring case.
func ParseActor(s string) (Actor, bool) {
	for i, n := range actorNames {
		if strings.EqualFold(n, s) {
			return Actor(i), true
		}
	}
	return 0, false
}

// Actors lists every actor in order.
func Actors() []Actor {
	return []Actor{Aris, Momoi, Midori, Yuzu}
}

// Pattern names a boss bullet pattern.
type Pattern string

const (
	PatternRing   Pattern = "ring"
	PatternFan    Pattern = "fan"
	PatternSpiral Pattern = "spiral"
	PatternCross  Pattern = "cross"
)

// Stage is one actor's stage.
type Stage struct {
	ActorName     string          `yaml:"actor"`
	Rows          int             `yaml:"rows"`
	Cols          int             `yaml:"cols"`
	TimeLimit     float64         `yaml:"time_limit"` // seconds
	Stars         [3]int          `yaml:"stars"`      // percent thresholds for one, two and three stars
	HalfSpawnArea int             `yaml:"half_spawn_area"`
	BossSpeed     float64         `yaml:"boss_speed"`   // tiles per second
	BulletSpeed   float64         `yaml:"bullet_speed"` // tiles per second
	FireInterval  float64         `yaml:"fire_interval"`
	Patterns      map[Pattern]int `yaml:"patterns"` // relative weights

	Actor Actor `yaml:"-"`
}

// StarsFor returns how many star thresholds percent reaches.
func (s Stage) StarsFor(percent int) int {
	n := 0
	for _, t := range s.Stars {
		if percent >= t {
			n++
		}
	}
	return n
}

// Path is the stage table's manifest path.
const Path = "data/stages.yaml"

// Table is the decoded stage file.
type Table struct {
	Stages []Stage `yaml:"stages"`
}

// For returns the stage of actor.
func (t Table) For(actor Actor) (Stage, bool) {
	for _, s := range t.Stages {
		if s.Actor == actor {
			return s, true
		}
	}
	return Stage{}, false
}

//go:embed default_stages.yaml
var defaultYAML []byte

// Default returns the compiled-in table.
func Default() Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("stage: embedded table is invalid: %v", err))
	}
	return t
}

// Parse decodes and validates a stage table.
//
// Parameters:
//   - data: YAML content
//
// Returns:
//   - Table: one stage per actor
//   - error: a parse error or the first invalid field
func Parse(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("stage: parse: %w", err)
	}
	seen := make(map[Actor]bool)
	for i := range t.Stages {
		s := &t.Stages[i]
		actor, ok := ParseActor(s.ActorName)
		if !ok {
			return Table{}, fmt.Errorf("stage %d: unknown actor %q", i, s.ActorName)
		}
		if seen[actor] {
			return Table{}, fmt.Errorf("stage %d: duplicate actor %s", i, actor)
		}
		seen[actor] = true
		s.Actor = actor
		if err := s.validate(); err != nil {
			return Table{}, fmt.Errorf("stage %s: %w", actor, err)
		}
	}
	for _, a := range Actors() {
		if !seen[a] {
			return Table{}, fmt.Errorf("stage: no stage for %s", a)
		}
	}
	return t, nil
}

func (s Stage) validate() error {
	if s.Rows < 5 || s.Cols < 5 {
		return fmt.Errorf("grid %dx%d is smaller than 5x5", s.Rows, s.Cols)
	}
	if s.HalfSpawnArea < 0 {
		return fmt.Errorf("half_spawn_area must not be negative")
	}
	if s.HalfSpawnArea > 0 && (s.Rows <= 8*s.HalfSpawnArea || s.Cols <= 8*s.HalfSpawnArea) {
		return fmt.Errorf("grid %dx%d too small for half_spawn_area %d", s.Rows, s.Cols, s.HalfSpawnArea)
	}
	if s.TimeLimit <= 0 {
		return fmt.Errorf("time_limit must be positive")
	}
	prev := 0
	for _, t := range s.Stars {
		if t <= prev || t > 100 {
			return fmt.Errorf("stars %v must rise within 1..100", s.Stars)
		}
		prev = t
	}
	if s.BossSpeed <= 0 || s.BulletSpeed <= 0 || s.FireInterval <= 0 {
		return fmt.Errorf("boss_speed, bullet_speed and fire_interval must be positive")
	}
	total := 0
	for p, w := range s.Patterns {
		switch p {
		case PatternRing, PatternFan, PatternSpiral, PatternCross:
		default:
			return fmt.Errorf("unknown pattern %q", p)
		}
		if w < 0 {
			return fmt.Errorf("pattern %s has negative weight", p)
		}
		total += w
	}
	if total == 0 {
		return fmt.Errorf("no bullet pattern has weight")
	}
	return nil
}

// Decoder decodes stage table assets. It satisfies assets.Decoder[Table].
type Decoder struct{}

func (Decoder) Decode(data []byte) (Table, error) { return Parse(data) }

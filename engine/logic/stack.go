package logic

import "github.com/Carmen-Shannon/millennium-run/engine/scene"

// Stack is the ordered scene stack; the last element is the active scene.
type Stack struct {
	scenes []scene.Scene
}

// Push places s on top.
func (s *Stack) Push(sc scene.Scene) { s.scenes = append(s.scenes, sc) }

// Pop removes and returns the top scene.
//
// Returns:
//   - scene.Scene: the active scene, or nil
//   - bool: false if the stack is empty
func (s *Stack) Pop() (scene.Scene, bool) {
	n := len(s.scenes)
	if n == 0 {
		return nil, false
	}
	top := s.scenes[n-1]
	s.scenes[n-1] = nil
	s.scenes = s.scenes[:n-1]
	return top, true
}

// Top returns the active scene without removing it.
func (s *Stack) Top() (scene.Scene, bool) {
	if len(s.scenes) == 0 {
		return nil, false
	}
	return s.scenes[len(s.scenes)-1], true
}

// Len returns the number of scenes.
func (s *Stack) Len() int { return len(s.scenes) }

// Names lists scene names bottom to top.
func (s *Stack) Names() []string {
	out := make([]string, len(s.scenes))
	for i, sc := range s.scenes {
		out[i] = sc.Name()
	}
	return out
}

package common

import "testing"

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := Smoothstep(tt.in); got != tt.want {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoalesceAndClamp(t *testing.T) {
	if got := Coalesce("", "", "assets"); got != "assets" {
		t.Errorf("Coalesce = %q", got)
	}
	if got := Clamp(120, 0, 100); got != 100 {
		t.Errorf("Clamp = %d", got)
	}
	if got := Lerp(24, 0, 0.25); got != 18 {
		t.Errorf("Lerp = %v", got)
	}
}

func TestSliceToBytesLength(t *testing.T) {
	type instance struct{ X, Y, W, H float32 }
	if got := len(SliceToBytes([]instance{{}, {}})); got != 32 {
		t.Errorf("len = %d, want 32", got)
	}
	if SliceToBytes([]int32(nil)) != nil {
		t.Error("empty slice should give nil")
	}
}

func TestKeyNames(t *testing.T) {
	if KeyName(KeyUp) != "Up" {
		t.Errorf("KeyName(KeyUp) = %q", KeyName(KeyUp))
	}
	if code, ok := KeyByName("Enter"); !ok || code != KeyEnter {
		t.Errorf("KeyByName(Enter) = %d, %v", code, ok)
	}
}

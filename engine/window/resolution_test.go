package window

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

var chain = []Size{
	{640, 360}, {960, 540}, {1280, 720}, {1440, 810}, {1600, 900}, {1920, 1080},
}

func TestFitResolution(t *testing.T) {
	tests := []struct {
		name      string
		requested Size
		monitor   Size
		want      Size
	}{
		{"fits as is", Size{1280, 720}, Size{1920, 1080}, Size{1280, 720}},
		{"exact monitor", Size{1920, 1080}, Size{1920, 1080}, Size{1920, 1080}},
		{"downgrade one step", Size{1920, 1080}, Size{1680, 1050}, Size{1600, 900}},
		{"downgrade several", Size{1600, 900}, Size{1024, 768}, Size{960, 540}},
		{"height limited", Size{1440, 810}, Size{2560, 720}, Size{1280, 720}},
		{"off-chain request", Size{1300, 800}, Size{3840, 2160}, Size{1280, 720}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FitResolution(tt.requested, chain, tt.monitor)
			if err != nil {
				t.Fatalf("FitResolution failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFitResolutionNothingFits(t *testing.T) {
	_, err := FitResolution(Size{1280, 720}, chain, Size{320, 240})
	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *ResolutionError", err)
	}
	if rerr.Monitor != (Size{320, 240}) {
		t.Errorf("Monitor = %v", rerr.Monitor)
	}
	if !errors.Is(err, apperr.Unsupported) {
		t.Error("ResolutionError should match apperr.Unsupported")
	}

	if _, err := FitResolution(Size{800, 600}, nil, Size{640, 480}); err == nil {
		t.Error("an empty chain falls back to the request, which does not fit")
	}
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/millennium-run/engine"
	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

func TestPanicMessage(t *testing.T) {
	corrupt := apperr.PanicMessage{Title: "Asset file corruption detection", Detail: "shaders/quad.wgsl"}
	tests := []struct {
		name string
		err  error
		want apperr.PanicMessage
	}{
		{
			name: "fatal error keeps its message",
			err:  fmt.Errorf("run: %w", &engine.FatalError{Message: corrupt}),
			want: corrupt,
		},
		{
			name: "other errors get a generic title",
			err:  errors.New("open window: no display"),
			want: apperr.PanicMessage{Title: "Millennium Run could not start", Detail: "open window: no display"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := panicMessage(tt.err); got != tt.want {
				t.Errorf("panicMessage = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFatalShowsDialog(t *testing.T) {
	msg := apperr.PanicMessage{Title: "Scene error", Detail: "ingame: no stage for Aris"}
	tests := []struct {
		name      string
		dialogErr error
		wantOut   bool
	}{
		{name: "dialog shown", dialogErr: nil, wantOut: false},
		{name: "no display falls back to stderr", dialogErr: errors.New("zenity: unsupported"), wantOut: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTitle, gotDetail string
			show := func(title, detail string) error {
				gotTitle, gotDetail = title, detail
				return tt.dialogErr
			}
			var out bytes.Buffer
			fatal(msg, show, &out)

			if gotTitle != msg.Title || gotDetail != msg.Detail {
				t.Errorf("dialog got (%q, %q), want (%q, %q)", gotTitle, gotDetail, msg.Title, msg.Detail)
			}
			if !tt.wantOut {
				if out.Len() != 0 {
					t.Errorf("stderr = %q, want nothing", out.String())
				}
				return
			}
			for _, want := range []string{msg.Title, msg.Detail, "zenity: unsupported"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("stderr = %q, missing %q", out.String(), want)
				}
			}
		})
	}
}

package apperr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"
)

func TestErrorIsKind(t *testing.T) {
	err := fmt.Errorf("bundle: %w", New(InvalidKey, "bundle.new", "shaders/quad.wgsl"))

	if !errors.Is(err, InvalidKey) {
		t.Errorf("expected errors.Is(err, InvalidKey) to be true")
	}
	if errors.Is(err, NotFound) {
		t.Errorf("expected errors.Is(err, NotFound) to be false")
	}
	if got := KindOf(err); got != InvalidKey {
		t.Errorf("KindOf = %v, want %v", got, InvalidKey)
	}
}

func TestFromIO(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not exist", fs.ErrNotExist, NotFound},
		{"permission", fs.ErrPermission, PermissionDenied},
		{"exist", fs.ErrExist, AlreadyExists},
		{"short read", io.ErrUnexpectedEOF, UnexpectedEOF},
		{"other", errors.New("disk on fire"), IOOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromIO("read", "a.bin", &fs.PathError{Op: "open", Path: "a.bin", Err: tt.err})
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}

	if FromIO("read", "a.bin", nil) != nil {
		t.Errorf("FromIO(nil) should be nil")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(ParsingError, "settings.decode", "user/settings.toml", errors.New("bad line"))
	want := "settings.decode user/settings.toml: parsing error: bad line"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if KindOf(errors.New("plain")) != Unknown {
		t.Errorf("plain errors should map to Unknown")
	}
}

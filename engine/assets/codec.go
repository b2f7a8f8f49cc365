package assets

import (
	"errors"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// Decoder turns asset bytes into a typed value.
type Decoder[T any] interface {
	Decode(data []byte) (T, error)
}

// Encoder turns a typed value into asset bytes.
type Encoder[T any] interface {
	Encode(v T) ([]byte, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc[T any] func(data []byte) (T, error)

func (f DecoderFunc[T]) Decode(data []byte) (T, error) { return f(data) }

// EncoderFunc adapts a function to Encoder.
type EncoderFunc[T any] func(v T) ([]byte, error)

func (f EncoderFunc[T]) Encode(v T) ([]byte, error) { return f(v) }

// Bytes returns the raw content.
var Bytes = DecoderFunc[[]byte](func(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
})

// Text returns the content as a string.
var Text = DecoderFunc[string](func(data []byte) (string, error) {
	return string(data), nil
})

// Read loads the handle's bytes and decodes them. Decoder failures that do not already
// carry an apperr kind are reported as ParsingError.
//
// Parameters:
//   - h: the asset handle
//   - dec: the decoder for T
//
// Returns:
//   - T: the decoded value
//   - error: NotFound, PermissionDenied, DisabledHandle or the decoder's error
func Read[T any](h *Handle, dec Decoder[T]) (T, error) {
	var zero T
	data, err := h.ReadBytes()
	if err != nil {
		return zero, err
	}
	v, err := dec.Decode(data)
	if err != nil {
		return zero, asParsing("asset.decode", h.Path(), err)
	}
	return v, nil
}

// Write encodes v and atomically replaces the handle's content.
//
// Parameters:
//   - h: the asset handle (Dynamic or Optional)
//   - enc: the encoder for T
//   - v: the value to store
//
// Returns:
//   - error: Unsupported for Static handles, or the encoder/I/O error
func Write[T any](h *Handle, enc Encoder[T], v T) error {
	if !h.Kind().Writable() {
		return apperr.New(apperr.Unsupported, "asset.write", h.Path())
	}
	data, err := enc.Encode(v)
	if err != nil {
		return asParsing("asset.encode", h.Path(), err)
	}
	return h.WriteBytes(data)
}

func asParsing(op, path string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.ParsingError, op, path, err)
}

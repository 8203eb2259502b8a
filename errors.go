package glance

import (
	"errors"
	"fmt"
)

// ErrDecode is wrapped by Render when the input bytes cannot be interpreted
// as a raster image. The pipeline never substitutes a placeholder image.
var ErrDecode = errors.New("glance: undecodable image data")

// InvalidGeometryError reports a caller-correctable geometry parameter,
// naming the offending field.
type InvalidGeometryError struct {
	Field string
	Value float64
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("glance: invalid geometry: %s=%g", e.Field, e.Value)
}

// UnsupportedChannelError reports a RawImage with a channel count other
// than 3 or 4.
type UnsupportedChannelError struct {
	Channels int
}

func (e *UnsupportedChannelError) Error() string {
	return fmt.Sprintf("glance: unsupported channel count %d (want 3 or 4)", e.Channels)
}

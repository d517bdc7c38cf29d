package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// extra formats for uploads beyond what imaging registers
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrEmptySource = errors.New("empty image source")

// Source is one photo handed to the compositor.
type Source struct {
	Name    string
	Data    []byte
	Caption string
}

// Decode turns raw bytes into a drawable image, honouring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// DecodeAll decodes every source concurrently and waits for all of them.
// The result is index-aligned with sources; a source that fails to decode
// is logged and left nil.
func DecodeAll(ctx context.Context, logger *slog.Logger, sources []Source) []image.Image {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]image.Image, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			img, err := Decode(src.Data)
			if err != nil {
				logger.WarnContext(ctx, "failed to decode image", "index", i, "name", src.Name, "err", err)
				return nil
			}
			out[i] = img
			return nil
		})
	}
	_ = g.Wait()
	return out
}

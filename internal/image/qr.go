package imagepkg

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	minQRSize = 64
	maxQRSize = 1024
)

var ErrEmptyQRText = errors.New("qr text is empty")

func newQR(text string, size int) (*qrcode.QRCode, int, error) {
	if text == "" {
		return nil, 0, ErrEmptyQRText
	}
	size = min(max(size, minQRSize), maxQRSize)
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, 0, fmt.Errorf("qr encode: %w", err)
	}
	// caption ink on white keeps the badge in the collage palette
	q.ForegroundColor = captionColor
	q.BackgroundColor = color.White
	return q, size, nil
}

// GenerateQRPNG returns PNG bytes of a QR code for text, size pixels square.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	q, size, err := newQR(text, size)
	if err != nil {
		return nil, err
	}
	return q.PNG(size)
}

// GenerateQRImage returns the QR code as an image for the collage badge.
func GenerateQRImage(text string, size int) (image.Image, error) {
	q, size, err := newQR(text, size)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}

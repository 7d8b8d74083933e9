package domain

import (
	"bytes"
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// Bitmap is a rendered raster held as PNG-encoded bytes.
type Bitmap struct {
	Width  int
	Height int
	Data   []byte
}

// Bytes returns the encoded size, which is what both cache tiers account for.
func (b Bitmap) Bytes() int64 {
	return int64(len(b.Data))
}

// IsEmpty reports whether the bitmap carries no pixels.
func (b Bitmap) IsEmpty() bool {
	return len(b.Data) == 0
}

// Image decodes the bitmap.
func (b Bitmap) Image() (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(b.Data))
	if err != nil {
		return nil, errors.Join(ErrBitmapDecodeFailed, err)
	}
	return img, nil
}

// BitmapFromImage encodes img as PNG.
func BitmapFromImage(img image.Image) (Bitmap, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Bitmap{}, errors.Join(ErrBitmapEncodeFailed, err)
	}
	bounds := img.Bounds()
	return Bitmap{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Data:   buf.Bytes(),
	}, nil
}

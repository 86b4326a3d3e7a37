// Package preprocess turns uploaded image bytes into the normalized tensor
// the classifier consumes.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Brownie44l1/waste-api/internal/model"
)

// ErrDecode reports input that is not a decodable image.
var ErrDecode = errors.New("cannot decode image")

// MaxPixels caps the declared width*height accepted before full decoding.
const MaxPixels = 50_000_000

// Decode reads an image in any registered format and applies the EXIF
// orientation tag when one is present. Images declaring more than MaxPixels
// are rejected from their header alone.
func Decode(r io.Reader) (image.Image, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxPixels {
		return nil, fmt.Errorf("%w: image too large: %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return img, nil
}

// Preprocess resizes img to ImageSize x ImageSize and writes its RGB values,
// scaled to [0,1], into a (1, H, W, 3) tensor. Alpha is discarded.
func Preprocess(img image.Image) model.Tensor {
	resized := resize.Resize(model.ImageSize, model.ImageSize, img, resize.Bilinear)

	t := model.NewTensor()
	bounds := resized.Bounds()
	for y := 0; y < model.ImageSize; y++ {
		for x := 0; x < model.ImageSize; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*model.ImageSize + x) * model.Channels
			t.Data[i] = float32(c.R) / 255.0
			t.Data[i+1] = float32(c.G) / 255.0
			t.Data[i+2] = float32(c.B) / 255.0
		}
	}
	return t
}

// FromBytes decodes and preprocesses an encoded image.
func FromBytes(data []byte) (model.Tensor, error) {
	if len(data) == 0 {
		return model.Tensor{}, fmt.Errorf("%w: no image data", ErrDecode)
	}
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return model.Tensor{}, err
	}
	return Preprocess(img), nil
}

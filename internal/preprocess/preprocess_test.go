package preprocess

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/Brownie44l1/waste-api/internal/model"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}
	return buf.Bytes()
}

// gradient fills an RGBA image with a position-dependent pattern so resizing
// has something non-uniform to interpolate.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: uint8(y * 255 / max(h-1, 1)), B: 128, A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func checkTensor(t *testing.T, tensor model.Tensor) {
	t.Helper()
	want := [4]int{1, model.ImageSize, model.ImageSize, model.Channels}
	if tensor.Shape != want {
		t.Fatalf("shape = %v, want %v", tensor.Shape, want)
	}
	if len(tensor.Data) != model.ImageSize*model.ImageSize*model.Channels {
		t.Fatalf("data length = %d, want %d", len(tensor.Data), model.ImageSize*model.ImageSize*model.Channels)
	}
	for i, v := range tensor.Data {
		if v < 0 || v > 1 {
			t.Fatalf("Data[%d] = %f, outside [0,1]", i, v)
		}
	}
}

func TestFromBytesShapeAndRange(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 31, 17))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i % 256)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"png small", encodePNG(t, gradient(8, 8))},
		{"png wide", encodePNG(t, gradient(640, 120))},
		{"png tall", encodePNG(t, gradient(50, 500))},
		{"png exact size", encodePNG(t, gradient(224, 224))},
		{"png single pixel", encodePNG(t, gradient(1, 1))},
		{"png grayscale", encodePNG(t, gray)},
		{"jpeg", encodeJPEG(t, gradient(300, 200))},
		{"gif paletted", encodeGIF(t, gradient(64, 48))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor, err := FromBytes(tt.data)
			if err != nil {
				t.Fatalf("FromBytes: %v", err)
			}
			checkTensor(t, tensor)
		})
	}
}

func TestPreprocessSolidColor(t *testing.T) {
	tensor := Preprocess(solid(97, 53, color.NRGBA{R: 255, G: 0, B: 51, A: 255}))
	checkTensor(t, tensor)

	for i := 0; i < len(tensor.Data); i += model.Channels {
		r, g, b := tensor.Data[i], tensor.Data[i+1], tensor.Data[i+2]
		if !closeEnough(r, 1) || !closeEnough(g, 0) || !closeEnough(b, 0.2) {
			t.Fatalf("pixel %d = (%f, %f, %f), want (1, 0, 0.2)", i/model.Channels, r, g, b)
		}
	}
}

func TestPreprocessDropsAlpha(t *testing.T) {
	// Half-transparent white must still read as white, not premultiplied grey.
	tensor := Preprocess(solid(10, 10, color.NRGBA{R: 255, G: 255, B: 255, A: 128}))
	for i, v := range tensor.Data {
		if !closeEnough(v, 1) {
			t.Fatalf("Data[%d] = %f, want 1", i, v)
		}
	}
}

func TestPreprocessLayoutIsNHWC(t *testing.T) {
	// Left half red, right half blue.
	img := image.NewNRGBA(image.Rect(0, 0, model.ImageSize, model.ImageSize))
	for y := 0; y < model.ImageSize; y++ {
		for x := 0; x < model.ImageSize; x++ {
			if x < model.ImageSize/2 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}

	tensor := Preprocess(img)

	first := tensor.Data[0:3]
	if !closeEnough(first[0], 1) || !closeEnough(first[2], 0) {
		t.Errorf("top-left pixel = %v, want red", first)
	}
	lastIdx := (model.ImageSize - 1) * model.Channels
	last := tensor.Data[lastIdx : lastIdx+3]
	if !closeEnough(last[0], 0) || !closeEnough(last[2], 1) {
		t.Errorf("top-right pixel = %v, want blue", last)
	}
}

func TestFromBytesRejectsNonImages(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not an image"),
		"json":      []byte(`{"image": "abc"}`),
		"truncated": encodePNG(t, gradient(20, 20))[:30],
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := FromBytes(data)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0xFF, 0xD8, 0x00, 0x01}))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

// withDeclaredSize rewrites the IHDR chunk of an encoded PNG so its header
// claims w x h pixels while the payload stays tiny.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("unexpected PNG layout: %q", out[12:16])
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecodeRejectsOversizedDimensions(t *testing.T) {
	bomb := withDeclaredSize(t, encodePNG(t, gradient(8, 8)), 30000, 30000)

	_, err := FromBytes(bomb)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Fatalf("error = %q, want a size rejection", err)
	}
}

func TestDecodeReplaysHeader(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, gradient(31, 17))))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 31 || b.Dy() != 17 {
		t.Fatalf("bounds = %v, want 31x17", b)
	}
}

func closeEnough(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-2
}

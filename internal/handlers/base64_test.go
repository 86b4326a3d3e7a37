package handlers

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeImageData(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe, 0x00}

	inputs := map[string]string{
		"std":            base64.StdEncoding.EncodeToString(raw),
		"raw std":        base64.RawStdEncoding.EncodeToString(raw),
		"url":            base64.URLEncoding.EncodeToString(raw),
		"raw url":        base64.RawURLEncoding.EncodeToString(raw),
		"data url":       "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
		"upper data url": "DATA:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw),
		"whitespace":     "  " + base64.StdEncoding.EncodeToString(raw) + "\n",
	}

	for name, in := range inputs {
		got, err := decodeImageData(in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("%s: decoded %v, want %v", name, got, raw)
		}
	}
}

func TestDecodeImageDataErrors(t *testing.T) {
	for _, in := range []string{"data:image/png;base64", "!!!!", "abc$def"} {
		if _, err := decodeImageData(in); err == nil {
			t.Errorf("decodeImageData(%q): expected error", in)
		}
	}
}

package handlers

import (
	"encoding/base64"
	"strings"
)

// decodeImageData decodes a base64 payload, optionally wrapped in a
// data:<mime>;base64, URL. Standard, unpadded and URL-safe alphabets are
// all accepted.
func decodeImageData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, badRequest("Invalid data URL: missing ','")
		}
		s = s[i+1:]
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, badRequest("Invalid base64 image data")
}

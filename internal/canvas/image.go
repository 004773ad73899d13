package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const pngPrefix = "data:image/png;base64,"

// EncodeDataURI encodes img as a base64 PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return pngPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI decodes a PNG data URI produced by EncodeDataURI.
func DecodeDataURI(uri string) (image.Image, error) {
	raw, err := PNG(uri)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// PNG returns the raw PNG bytes of a data URI.
func PNG(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, pngPrefix)
	if !ok {
		return nil, fmt.Errorf("decode image: not a png data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return raw, nil
}

// Thumbnail scales src to fit inside w x h, keeping the aspect ratio.
func Thumbnail(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}

	scale := min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	tw := max(1, int(float64(sb.Dx())*scale))
	th := max(1, int(float64(sb.Dy())*scale))

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, xdraw.Over, nil)
	return dst
}

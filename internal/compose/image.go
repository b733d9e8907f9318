package compose

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/fashionpolice/fashion-police/internal/apperror"
)

const (
	// MaxImageSide bounds both dimensions of an uploaded image.
	MaxImageSide = 1080
	// UploadQuality is the JPEG quality uploads are re-encoded at.
	UploadQuality = 10
)

// PrepareImage decodes raw (JPEG, PNG, GIF or WebP), scales it down to fit
// MaxImageSide and re-encodes it as a low quality JPEG.
//
// DECODER REGISTRATION:
// image.Decode only knows the formats whose packages were imported, each
// registering itself in init. The blank imports above are what make PNG,
// GIF and WebP uploads decode at all.
func PrepareImage(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, apperror.ValidationFailed("image", "Select an image")
	}
	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, apperror.ValidationFailed("image", "Unsupported image format")
		}
		return nil, apperror.ValidationFailed("image", "Invalid image file")
	}
	return encodeJPEG(resizeToFit(decoded, MaxImageSide, MaxImageSide), UploadQuality)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package ioutils

import (
	"bytes"
	"context"
	"image"
	"io"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService provides image processing operations for downloaded covers.
//
// ImageService is used to:
//   - Resize covers to fit maximum dimensions
//   - Convert covers to JPEG so the content matches the .jpg file name
type ImageService struct {
	// Quality is the JPEG encoding quality (1-100).
	Quality int
}

// NewImageService creates a new ImageService encoding at quality 90.
func NewImageService() *ImageService {
	return &ImageService{Quality: 90}
}

// Format returns the registered format name of an image ("jpeg", "png",
// "gif", "webp"). Only the header is read from r.
func (s *ImageService) Format(r io.Reader) (string, error) {
	_, format, err := image.DecodeConfig(r)
	return format, err
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved. Images already within bounds keep their
// size but are still re-encoded. Returns JPEG-encoded bytes.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x667
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
		width = max(width, 1)
		height = max(height, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return s.encode(dst)
}

// ConvertToJPEG converts an image to JPEG format.
//
// Data that is already JPEG is returned unchanged.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		return data, nil
	}

	return s.encode(img)
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	quality := s.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

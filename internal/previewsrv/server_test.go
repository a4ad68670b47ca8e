package previewsrv

import (
	"bytes"
	"image/jpeg"
	"testing"
)

func TestEncodeBGRJPEGProducesDecodableImage(t *testing.T) {
	width, height := 4, 3
	bgr := make([]byte, width*height*3)
	for px := 0; px < width*height; px++ {
		bgr[px*3+0] = 10 // B
		bgr[px*3+1] = 20 // G
		bgr[px*3+2] = 30 // R
	}

	data, err := encodeBGRJPEG(width, height, bgr, 80)
	if err != nil {
		t.Fatalf("encodeBGRJPEG: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode produced JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		t.Fatalf("decoded dims = (%d,%d), want (%d,%d)", bounds.Dx(), bounds.Dy(), width, height)
	}
}

func TestEncodeBGRJPEGAcceptsQualityOutOfRange(t *testing.T) {
	width, height := 2, 2
	bgr := make([]byte, width*height*3)
	if _, err := encodeBGRJPEG(width, height, bgr, 0); err != nil {
		t.Fatalf("quality 0 should still encode (jpeg package clamps): %v", err)
	}
}

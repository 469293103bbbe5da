// Package compress converte bytes de imagem arbitrários em JPEG limitado por tamanho.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	startQuality = 95
	floorQuality = 10
	qualityStep  = 5
)

// ErrDecode indica que os bytes de entrada não formam uma imagem legível.
var ErrDecode = errors.New("compress: imagem ilegível")

// ToJPEG reencoda raw como JPEG reduzindo a qualidade de 95 até 10 em passos
// de 5, parando no primeiro buffer com tamanho <= maxBytes. Se nem a
// qualidade mínima satisfizer o teto, o último buffer é devolvido assim
// mesmo: o piso de qualidade é parada dura, não garantia de tamanho.
func ToJPEG(raw []byte, maxBytes int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// JPEG não tem transparência: imagens com alpha ou paleta são
	// achatadas para RGB antes do loop de qualidade.
	img = flatten(img)

	var buf bytes.Buffer
	quality := startQuality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("compress: encode jpeg: %w", err)
		}
		if buf.Len() <= maxBytes || quality <= floorQuality {
			break
		}
		quality -= qualityStep
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.RGBA, *image.NRGBA:
		// Formatos que o encoder JPEG consome direto; alpha, quando
		// existe, é simplesmente descartado (mesmo efeito do convert
		// para RGB).
		return img
	}

	bounds := img.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, img, bounds.Min, draw.Src)
	return rgb
}

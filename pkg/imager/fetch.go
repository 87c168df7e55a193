package imager

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/kataras/figma-context/pkg/figma"
)

// fetchImage downloads u into destPath, cropping and measuring the image when
// the request asks for it.
func fetchImage(ctx context.Context, client *http.Client, u, destPath string, r Request) (Image, error) {
	if filepath.Ext(destPath) == "" {
		destPath += "." + detectExtensionFromURL(u)
	}

	data, err := downloadFile(ctx, client, u)
	if err != nil {
		return Image{}, err
	}

	img := Image{
		NodeID:   r.NodeID,
		ImageRef: r.ImageRef,
		FileName: filepath.Base(destPath),
		Path:     destPath,
	}

	isSVG := strings.EqualFold(filepath.Ext(destPath), ".svg")
	if !isSVG && (r.NeedsCropping || r.RequiresImageDimensions) {
		var w, h int
		if r.NeedsCropping && len(r.CropTransform) > 0 {
			data, w, h, err = cropImage(data, r.CropTransform)
			if err != nil {
				return Image{}, fmt.Errorf("failed to crop: %w", err)
			}
			img.Cropped = true
		} else {
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				return Image{}, fmt.Errorf("failed to read dimensions: %w", err)
			}
			w, h = cfg.Width, cfg.Height
		}
		img.Width, img.Height = w, h
		if r.RequiresImageDimensions {
			img.CSSVariables = fmt.Sprintf("--original-width: %dpx; --original-height: %dpx;", w, h)
		}
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return Image{}, fmt.Errorf("failed to write file: %w", err)
	}

	return img, nil
}

// downloadFile fetches the body of a URL.
func downloadFile(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// cropImage applies a Figma crop transform to an encoded raster image. The
// transform's scale terms give the visible fraction and its translation the offset,
// both relative to the image size. The result is always PNG, matching the file
// names requests are given.
func cropImage(data []byte, t figma.Transform) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}

	rect := cropRect(src.Bounds(), t)
	if rect.Empty() {
		return nil, 0, 0, fmt.Errorf("crop region is empty")
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, 0, err
	}

	return buf.Bytes(), rect.Dx(), rect.Dy(), nil
}

func cropRect(bounds image.Rectangle, t figma.Transform) image.Rectangle {
	if len(t) < 2 || len(t[0]) < 3 || len(t[1]) < 3 {
		return bounds
	}
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	scaleX, scaleY := t[0][0], t[1][1]
	tx, ty := t[0][2], t[1][2]

	x0 := bounds.Min.X + int(math.Round(tx*w))
	y0 := bounds.Min.Y + int(math.Round(ty*h))
	cw := int(math.Round(scaleX * w))
	ch := int(math.Round(scaleY * h))

	return image.Rect(x0, y0, x0+cw, y0+ch).Intersect(bounds)
}

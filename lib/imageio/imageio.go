// Package imageio reads target pictures and writes painted rasters.
package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/depp/blockpaint/lib/canvas"
)

// A Format is an image file format, chosen by file extension.
type Format uint32

const (
	// UnknownFormat is an unrecognized extension.
	UnknownFormat Format = iota
	// PNG is Portable Network Graphics.
	PNG
	// BMP is Windows bitmap.
	BMP
	// TIFF is Tagged Image File Format.
	TIFF
	// WebP is WebP, which can only be read.
	WebP
	// Text is the plain text pixel format, which can only be read.
	Text
)

var extensions = map[string]Format{
	".png":  PNG,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".webp": WebP,
	".txt":  Text,
}

// FormatOf returns the format for a file name.
func FormatOf(filename string) Format {
	return extensions[strings.ToLower(filepath.Ext(filename))]
}

// ReadImage reads an image file and converts it to a raster. The top row of
// the image becomes the top row of the canvas.
func ReadImage(filename string) (*canvas.Raster, error) {
	switch FormatOf(filename) {
	case PNG, BMP, TIFF, WebP:
	default:
		return nil, fmt.Errorf("file does not have an image extension: %q", filename)
	}
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	r, err := DecodeImage(fp)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", filename, err)
	}
	return r, nil
}

// DecodeImage decodes a PNG, BMP, TIFF, or WebP image into a raster.
func DecodeImage(r io.Reader) (*canvas.Raster, error) {
	im, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return canvas.FromImage(im), nil
}

// DecodeText reads a raster in the text pixel format: the height and width,
// followed by four channel values for each pixel, top row first.
func DecodeText(r io.Reader) (*canvas.Raster, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(what string, limit int) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("unexpected end of file reading %s", what)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", what, err)
		}
		if v < 0 || limit < v {
			return 0, fmt.Errorf("%s out of range: %d", what, v)
		}
		return v, nil
	}
	const maxSize = 1 << 14
	h, err := next("height", maxSize)
	if err != nil {
		return nil, err
	}
	w, err := next("width", maxSize)
	if err != nil {
		return nil, err
	}
	ras := canvas.NewRaster(w, h)
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			var c canvas.Color
			for i := range c {
				v, err := next("channel", 255)
				if err != nil {
					return nil, fmt.Errorf("pixel (%d, %d): %w", x, y, err)
				}
				c[i] = uint8(v)
			}
			ras.Set(x, y, c)
		}
	}
	return ras, nil
}

// ReadTarget reads a target picture, either an image or a text pixel file.
func ReadTarget(filename string) (*canvas.Raster, error) {
	if FormatOf(filename) != Text {
		return ReadImage(filename)
	}
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	r, err := DecodeText(fp)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", filename, err)
	}
	return r, nil
}

// Encode writes a raster as an image in the given format.
func Encode(w io.Writer, r *canvas.Raster, f Format) error {
	im := r.ToImage()
	switch f {
	case PNG:
		return png.Encode(w, im)
	case BMP:
		return bmp.Encode(w, im)
	case TIFF:
		return tiff.Encode(w, im, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("cannot write format %d", f)
	}
}

// WriteImage writes a raster to an image file. The format is chosen by
// extension.
func WriteImage(filename string, r *canvas.Raster) error {
	f := FormatOf(filename)
	switch f {
	case PNG, BMP, TIFF:
	default:
		return fmt.Errorf("cannot write image with extension %q", filepath.Ext(filename))
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fp)
	if err := Encode(bw, r, f); err != nil {
		fp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

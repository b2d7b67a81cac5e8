/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package imaging

import (
	"image"
	"image/color"
)

// FromImage flattens any image.Image into a 4-byte-per-pixel BGRA buffer.
// Alpha is premultiplied away against white so the filter pipeline sees the
// same tones a printer would.
func FromImage(img image.Image) ([]byte, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := make([]byte, 4*w*h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			// Composite onto white; 16-bit channels scaled down to 8-bit.
			buf[i+0] = compositeWhite(b, a)
			buf[i+1] = compositeWhite(g, a)
			buf[i+2] = compositeWhite(r, a)
			buf[i+3] = 255
			i += 4
		}
	}
	return buf, w, h
}

// ToImage converts a BGRA buffer back into an NRGBA image.
func ToImage(buf []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: buf[i+2],
				G: buf[i+1],
				B: buf[i+0],
				A: buf[i+3],
			})
			i += 4
		}
	}
	return img
}

// ProcessImage is the convenience wrapper used by rendering and export:
// flatten, run the pipeline, and rebuild an image.
func ProcessImage(img image.Image, opts Options) (*image.NRGBA, error) {
	buf, w, h := FromImage(img)
	out, err := Process(buf, w, h, opts)
	if err != nil {
		return nil, err
	}
	return ToImage(out, w, h), nil
}

// compositeWhite blends a premultiplied 16-bit channel over a white
// background and reduces it to 8 bits.
func compositeWhite(c, a uint32) byte {
	// c is already premultiplied by a; white contributes (0xffff - a).
	v := (c + (0xffff - a)) >> 8
	if v > 255 {
		v = 255
	}
	return byte(v)
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package imaging implements the monochrome filter pipeline used for label
// rendering: brightness/contrast adjustment, four threshold/dither
// algorithms, and optional inversion, all over 4-byte BGRA pixel buffers.
package imaging

import (
	"fmt"
	"math"

	"golabeldesigner/internal/domain"
)

// Options selects the processing steps applied by Process.
type Options struct {
	Algorithm  string // Threshold | FloydSteinberg | Ordered | Atkinson
	Threshold  uint8
	Invert     bool
	Brightness float64 // [-100, 100]
	Contrast   float64 // [-100, 100]
}

// bayer4 is the 4x4 ordered-dithering matrix, indexed [y%4][x%4].
var bayer4 = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// Process runs the monochrome pipeline over a BGRA buffer and returns a new
// same-size buffer. The pass order is fixed: brightness/contrast, then the
// selected reduction algorithm, then inversion. Every output pixel is fully
// opaque. The input buffer is never modified.
//
// A buffer whose length is not 4*width*height is a precondition violation
// and is rejected.
func Process(src []byte, width, height int, opts Options) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(src) != 4*width*height {
		return nil, fmt.Errorf("pixel buffer length %d does not match %dx%d BGRA", len(src), width, height)
	}

	buf := make([]byte, len(src))
	copy(buf, src)

	if math.Abs(opts.Brightness) > 0.01 || math.Abs(opts.Contrast) > 0.01 {
		applyBrightnessContrast(buf, opts.Brightness, opts.Contrast)
	}

	switch opts.Algorithm {
	case domain.AlgoFloydSteinberg:
		ditherFloydSteinberg(buf, width, height, opts.Threshold)
	case domain.AlgoOrdered:
		ditherOrdered(buf, width, height, opts.Threshold)
	case domain.AlgoAtkinson:
		ditherAtkinson(buf, width, height, opts.Threshold)
	default:
		// Threshold is the fallback for unknown algorithm names as well;
		// unknown selections degrade to the simplest reduction.
		applyThreshold(buf, opts.Threshold)
	}

	if opts.Invert {
		for i := 0; i < len(buf); i += 4 {
			buf[i+0] = 255 - buf[i+0]
			buf[i+1] = 255 - buf[i+1]
			buf[i+2] = 255 - buf[i+2]
		}
	}
	return buf, nil
}

// applyBrightnessContrast adjusts the B, G, R channels in place. Alpha is
// untouched. contrastFactor follows the quadratic curve of the reference
// pipeline; brightness maps [-100,100] onto [-255,255].
func applyBrightnessContrast(buf []byte, brightness, contrast float64) {
	factor := (contrast + 100.0) / 100.0
	factor *= factor
	offset := brightness * 2.55
	for i := 0; i < len(buf); i += 4 {
		for c := 0; c < 3; c++ {
			v := (float64(buf[i+c])-128.0)*factor + 128.0 + offset
			buf[i+c] = clampByte(v)
		}
	}
}

// applyThreshold reduces each pixel to black or white by comparing the
// truncated luma against the threshold. Truncation (not rounding) is part
// of the format contract: a pixel with luma 127.9 stays below 128.
func applyThreshold(buf []byte, threshold uint8) {
	for i := 0; i < len(buf); i += 4 {
		gray := luma(buf[i+2], buf[i+1], buf[i+0])
		var out byte
		if gray >= int(threshold) {
			out = 255
		}
		buf[i+0], buf[i+1], buf[i+2] = out, out, out
		buf[i+3] = 255
	}
}

// ditherOrdered applies 4x4 Bayer-matrix thresholding.
func ditherOrdered(buf []byte, width, height int, threshold uint8) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			gray := luma(buf[i+2], buf[i+1], buf[i+0])
			adjusted := int(threshold) + (bayer4[y%4][x%4]-8)*8
			var out byte
			if gray >= adjusted {
				out = 255
			}
			buf[i+0], buf[i+1], buf[i+2] = out, out, out
			buf[i+3] = 255
		}
	}
}

// ditherFloydSteinberg performs classic error diffusion: quantization error
// is spread right (7/16), bottom-left (3/16), bottom (5/16) and
// bottom-right (1/16), with integer division and no wraparound.
func ditherFloydSteinberg(buf []byte, width, height int, threshold uint8) {
	plane := grayPlane(buf, width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			old := plane[idx]
			newVal := 0
			if old >= int(threshold) {
				newVal = 255
			}
			plane[idx] = newVal
			err := old - newVal
			diffuse(plane, width, height, x+1, y, err*7/16)
			diffuse(plane, width, height, x-1, y+1, err*3/16)
			diffuse(plane, width, height, x, y+1, err*5/16)
			diffuse(plane, width, height, x+1, y+1, err*1/16)
		}
	}
	writePlane(buf, plane)
}

// ditherAtkinson diffuses only 6/8 of the error, one eighth each to six
// neighbors: two to the right, three on the next row, one two rows down.
func ditherAtkinson(buf []byte, width, height int, threshold uint8) {
	plane := grayPlane(buf, width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			old := plane[idx]
			newVal := 0
			if old >= int(threshold) {
				newVal = 255
			}
			plane[idx] = newVal
			part := (old - newVal) / 8
			diffuse(plane, width, height, x+1, y, part)
			diffuse(plane, width, height, x+2, y, part)
			diffuse(plane, width, height, x-1, y+1, part)
			diffuse(plane, width, height, x, y+1, part)
			diffuse(plane, width, height, x+1, y+1, part)
			diffuse(plane, width, height, x, y+2, part)
		}
	}
	writePlane(buf, plane)
}

// grayPlane converts the BGRA buffer to a truncated integer grayscale plane.
func grayPlane(buf []byte, width, height int) []int {
	plane := make([]int, width*height)
	for i := range plane {
		o := i * 4
		plane[i] = luma(buf[o+2], buf[o+1], buf[o+0])
	}
	return plane
}

// writePlane writes the quantized plane back as opaque monochrome pixels.
func writePlane(buf []byte, plane []int) {
	for i, v := range plane {
		o := i * 4
		out := clampByte(float64(v))
		buf[o+0], buf[o+1], buf[o+2] = out, out, out
		buf[o+3] = 255
	}
}

// diffuse adds an error share to a neighbor, clamped to [0,255]. Neighbors
// outside the image are skipped.
func diffuse(plane []int, width, height, x, y, amount int) {
	if x < 0 || x >= width || y < 0 || y >= height {
		return
	}
	v := plane[y*width+x] + amount
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	plane[y*width+x] = v
}

// luma computes the truncated BT.601 grayscale value of an RGB triple.
// The float sum is truncated toward zero to match reference output
// bit-for-bit.
func luma(r, g, b byte) int {
	return int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

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
	"testing"

	"golabeldesigner/internal/domain"
)

// grayBGRA builds a BGRA buffer from per-pixel gray values, row-major.
func grayBGRA(grays []byte) []byte {
	buf := make([]byte, 4*len(grays))
	for i, g := range grays {
		buf[i*4+0] = g
		buf[i*4+1] = g
		buf[i*4+2] = g
		buf[i*4+3] = 255
	}
	return buf
}

func grayAt(buf []byte, i int) byte { return buf[i*4] }

func TestProcessRejectsBadBuffer(t *testing.T) {
	if _, err := Process(make([]byte, 15), 2, 2, Options{Algorithm: domain.AlgoThreshold}); err == nil {
		t.Fatal("expected error for short buffer")
	}
	if _, err := Process(nil, 0, 2, Options{}); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	src := grayBGRA([]byte{50, 200, 128, 129})
	orig := make([]byte, len(src))
	copy(orig, src)
	if _, err := Process(src, 2, 2, Options{Algorithm: domain.AlgoThreshold, Threshold: 128}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range src {
		if src[i] != orig[i] {
			t.Fatalf("input buffer modified at byte %d", i)
		}
	}
}

func TestThresholdBoundary(t *testing.T) {
	// Grays 50, 200, 128, 129 against threshold 128: only the first pixel
	// stays black, 128 itself is already white.
	src := grayBGRA([]byte{50, 200, 128, 129})
	out, err := Process(src, 2, 2, Options{Algorithm: domain.AlgoThreshold, Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []byte{0, 255, 255, 255}
	for i, w := range want {
		if grayAt(out, i) != w {
			t.Fatalf("pixel %d = %d, want %d", i, grayAt(out, i), w)
		}
	}
	for i := 0; i < 4; i++ {
		if out[i*4+3] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", i, out[i*4+3])
		}
	}
}

func TestThresholdUsesTruncatedLuma(t *testing.T) {
	// R=128, G=127, B=128 gives luma 127.413 which truncates to 127 and
	// must land below a threshold of 128.
	src := []byte{128, 127, 128, 255}
	out, err := Process(src, 1, 1, Options{Algorithm: domain.AlgoThreshold, Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if grayAt(out, 0) != 0 {
		t.Fatalf("got %d, want 0 (truncated luma below threshold)", grayAt(out, 0))
	}
}

func TestUnknownAlgorithmFallsBackToThreshold(t *testing.T) {
	src := grayBGRA([]byte{50, 200})
	out, err := Process(src, 2, 1, Options{Algorithm: "Stucki", Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if grayAt(out, 0) != 0 || grayAt(out, 1) != 255 {
		t.Fatalf("fallback output = [%d %d], want [0 255]", grayAt(out, 0), grayAt(out, 1))
	}
}

func TestInvertRunsLast(t *testing.T) {
	src := grayBGRA([]byte{50, 200})
	out, err := Process(src, 2, 1, Options{Algorithm: domain.AlgoThreshold, Threshold: 128, Invert: true})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if grayAt(out, 0) != 255 || grayAt(out, 1) != 0 {
		t.Fatalf("inverted output = [%d %d], want [255 0]", grayAt(out, 0), grayAt(out, 1))
	}
}

func TestBrightnessContrastCurve(t *testing.T) {
	tests := []struct {
		name       string
		in         byte
		brightness float64
		contrast   float64
		want       byte
	}{
		{"brightness raises midtone", 100, 20, 0, 151},   // 100 + 20*2.55 = 151
		{"brightness clamps high", 250, 50, 0, 255},
		{"negative brightness clamps low", 10, -50, 0, 0},
		{"contrast spreads from center", 200, 0, 50, 255}, // (200-128)*2.25+128 = 290
		{"negative contrast compresses", 200, 0, -50, 146}, // (200-128)*0.25+128 = 146
		{"midpoint fixed under contrast", 128, 0, 80, 128},
	}
	for _, tc := range tests {
		buf := grayBGRA([]byte{tc.in})
		applyBrightnessContrast(buf, tc.brightness, tc.contrast)
		if buf[0] != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, buf[0], tc.want)
		}
	}
}

func TestBrightnessContrastSkippedWhenNearZero(t *testing.T) {
	src := grayBGRA([]byte{130})
	out, err := Process(src, 1, 1, Options{Algorithm: domain.AlgoThreshold, Threshold: 200, Brightness: 0.005, Contrast: -0.005})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// 130 < 200 stays black; a misapplied adjustment would not change that,
	// so check the skip via the raw helper instead.
	if grayAt(out, 0) != 0 {
		t.Fatalf("got %d, want 0", grayAt(out, 0))
	}
	buf := grayBGRA([]byte{130})
	before := buf[0]
	if got, _ := Process(buf, 1, 1, Options{Algorithm: domain.AlgoThreshold, Threshold: 0, Brightness: 0.005}); grayAt(got, 0) != 255 {
		t.Fatalf("threshold 0 must yield white")
	}
	if buf[0] != before {
		t.Fatal("near-zero adjustment must leave source untouched")
	}
}

func TestOrderedDitherPattern(t *testing.T) {
	// Uniform gray 128 at threshold 128: a cell is white exactly when its
	// Bayer value is at most 8.
	grays := make([]byte, 16)
	for i := range grays {
		grays[i] = 128
	}
	out, err := Process(grayBGRA(grays), 4, 4, Options{Algorithm: domain.AlgoOrdered, Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := byte(0)
			if bayer4[y][x] <= 8 {
				want = 255
			}
			if got := grayAt(out, y*4+x); got != want {
				t.Fatalf("cell (%d,%d) = %d, want %d (bayer %d)", x, y, got, want, bayer4[y][x])
			}
		}
	}
}

func TestFloydSteinbergPreservesAverageTone(t *testing.T) {
	// Error diffusion over a uniform midtone should produce a white pixel
	// fraction close to the input tone. This is what distinguishes it from
	// plain thresholding, which maps gray 120 to all black.
	const w, h = 64, 64
	grays := make([]byte, w*h)
	for i := range grays {
		grays[i] = 120
	}
	out, err := Process(grayBGRA(grays), w, h, Options{Algorithm: domain.AlgoFloydSteinberg, Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	white := 0
	for i := 0; i < w*h; i++ {
		switch grayAt(out, i) {
		case 255:
			white++
		case 0:
		default:
			t.Fatalf("pixel %d = %d, want 0 or 255", i, grayAt(out, i))
		}
	}
	frac := float64(white) / float64(w*h)
	want := 120.0 / 255.0
	if frac < want-0.05 || frac > want+0.05 {
		t.Fatalf("white fraction %.3f, want within 0.05 of %.3f", frac, want)
	}
}

func TestFloydSteinbergDiffusesRight(t *testing.T) {
	// A single row [100, 100]: the first pixel quantizes to black leaving
	// error 100, of which 7/16 (=43) moves right. 143 >= 128 flips the
	// second pixel white even though its own tone is below threshold.
	out, err := Process(grayBGRA([]byte{100, 100}), 2, 1, Options{Algorithm: domain.AlgoFloydSteinberg, Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if grayAt(out, 0) != 0 || grayAt(out, 1) != 255 {
		t.Fatalf("output = [%d %d], want [0 255]", grayAt(out, 0), grayAt(out, 1))
	}
}

func TestAtkinsonDropsPartOfError(t *testing.T) {
	// Same row as the Floyd-Steinberg case: Atkinson only passes 100/8=12
	// to the right neighbor, so 112 stays black.
	out, err := Process(grayBGRA([]byte{100, 100}), 2, 1, Options{Algorithm: domain.AlgoAtkinson, Threshold: 128})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if grayAt(out, 0) != 0 || grayAt(out, 1) != 0 {
		t.Fatalf("output = [%d %d], want [0 0]", grayAt(out, 0), grayAt(out, 1))
	}
}

func TestSolidExtremesStayPure(t *testing.T) {
	for _, algo := range []string{domain.AlgoThreshold, domain.AlgoFloydSteinberg, domain.AlgoOrdered, domain.AlgoAtkinson} {
		white := grayBGRA([]byte{255, 255, 255, 255})
		out, err := Process(white, 2, 2, Options{Algorithm: algo, Threshold: 128})
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		for i := 0; i < 4; i++ {
			if grayAt(out, i) != 255 {
				t.Fatalf("%s: white input produced %d", algo, grayAt(out, i))
			}
		}
		black := grayBGRA([]byte{0, 0, 0, 0})
		out, err = Process(black, 2, 2, Options{Algorithm: algo, Threshold: 128})
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		for i := 0; i < 4; i++ {
			if grayAt(out, i) != 0 {
				t.Fatalf("%s: black input produced %d", algo, grayAt(out, i))
			}
		}
	}
}

func TestFromImageCompositesAlphaOverWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0}) // fully transparent
	buf, w, h := FromImage(img)
	if w != 1 || h != 1 {
		t.Fatalf("size %dx%d, want 1x1", w, h)
	}
	if buf[0] != 255 || buf[1] != 255 || buf[2] != 255 {
		t.Fatalf("transparent pixel flattened to (%d,%d,%d), want white", buf[2], buf[1], buf[0])
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 150, B: 100, A: 255})
	buf, w, h := FromImage(img)
	back := ToImage(buf, w, h)
	for x := 0; x < 2; x++ {
		if got, want := back.NRGBAAt(x, 0), img.NRGBAAt(x, 0); got != want {
			t.Fatalf("pixel %d round trip %v, want %v", x, got, want)
		}
	}
}

func TestProcessImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 220, G: 220, B: 220, A: 255})
	out, err := ProcessImage(img, Options{Algorithm: domain.AlgoThreshold, Threshold: 128})
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if c := out.NRGBAAt(0, 0); c.R != 0 || c.A != 255 {
		t.Fatalf("dark pixel = %v, want black opaque", c)
	}
	if c := out.NRGBAAt(1, 0); c.R != 255 {
		t.Fatalf("light pixel = %v, want white", c)
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides and snapping helpers for interactive element dragging.
// Deterministic and UI-agnostic so they can be unit tested and reused.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance (canvas units) at which snapping
	// occurs. Typical UI values are 6-8 pixels.
	Threshold float64
	SnapToEdges   bool
	SnapToCenters bool
}

// Anchor is a static reference rect (another element's bounds or the canvas
// border). Weight biases selection when distances tie (higher = preferred).
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during a snap alignment.
// Orientation is "vertical" or "horizontal"; Kind is "edge" or "center".
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// ComputeSmartGuides computes snapping adjustments for a moving rectangle
// against a set of anchors. It returns the snapped rectangle and any guide
// lines to render. Snapping happens independently in X and Y.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var guides []GuideLine

	bestDX, bestDXDist, bestDXGuide := 0.0, math.Inf(1), GuideLine{}
	bestDY, bestDYDist, bestDYGuide := 0.0, math.Inf(1), GuideLine{}

	mL, mR := moving.X, moving.X+moving.W
	mT, mB := moving.Y, moving.Y+moving.H
	mCX, mCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		aL, aR := a.Rect.X, a.Rect.X+a.Rect.W
		aT, aB := a.Rect.Y, a.Rect.Y+a.Rect.H
		aCX, aCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			for _, cand := range []struct{ d, at float64 }{
				{mL - aL, aL}, {mR - aR, aR}, {mL - aR, aR}, {mR - aL, aL},
			} {
				considerSnap(&bestDX, &bestDXDist, &bestDXGuide, cand.d, opts.Threshold, a.Weight,
					verticalGuide(cand.at, moving, a.Rect, "edge"))
			}
			for _, cand := range []struct{ d, at float64 }{
				{mT - aT, aT}, {mB - aB, aB}, {mT - aB, aB}, {mB - aT, aT},
			} {
				considerSnap(&bestDY, &bestDYDist, &bestDYGuide, cand.d, opts.Threshold, a.Weight,
					horizontalGuide(cand.at, moving, a.Rect, "edge"))
			}
		}
		if opts.SnapToCenters {
			considerSnap(&bestDX, &bestDXDist, &bestDXGuide, mCX-aCX, opts.Threshold, a.Weight,
				verticalGuide(aCX, moving, a.Rect, "center"))
			considerSnap(&bestDY, &bestDYDist, &bestDYGuide, mCY-aCY, opts.Threshold, a.Weight,
				horizontalGuide(aCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	if bestDXDist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bestDX, 3)
		guides = append(guides, bestDXGuide)
	}
	if bestDYDist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-bestDY, 3)
		guides = append(guides, bestDYGuide)
	}
	return snapped, guides
}

// considerSnap updates the best candidate when d is within threshold and
// closer (weighted) than the current best.
func considerSnap(best *float64, bestDist *float64, bestGuide *GuideLine, d, threshold, weight float64, g GuideLine) {
	if weight <= 0 {
		weight = 1
	}
	dist := math.Abs(d) / weight
	if math.Abs(d) <= threshold && dist < *bestDist {
		*best = d
		*bestDist = dist
		*bestGuide = g
	}
}

func verticalGuide(x float64, moving, anchor Rect, kind string) GuideLine {
	top := math.Min(moving.Y, anchor.Y)
	bottom := math.Max(moving.Y+moving.H, anchor.Y+anchor.H)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    FloatRound(x, 3),
		From:        Pt{X: FloatRound(x, 3), Y: top},
		To:          Pt{X: FloatRound(x, 3), Y: bottom},
	}
}

func horizontalGuide(y float64, moving, anchor Rect, kind string) GuideLine {
	left := math.Min(moving.X, anchor.X)
	right := math.Max(moving.X+moving.W, anchor.X+anchor.W)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    FloatRound(y, 3),
		From:        Pt{X: left, Y: FloatRound(y, 3)},
		To:          Pt{X: right, Y: FloatRound(y, 3)},
	}
}

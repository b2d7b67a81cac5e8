/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package control

// Canvas coordinates are device-independent pixels at 96 DPI. The property
// panel shows millimeters for position and size; font sizes are typographic
// points and are never run through this conversion.
const pixelsPerMM = 96.0 / 25.4

// MMToPixels converts a millimeter value from a property field to canvas
// pixels.
func MMToPixels(mm float64) float64 { return mm * pixelsPerMM }

// PixelsToMM converts a canvas-pixel value for display in a property field.
func PixelsToMM(px float64) float64 { return px / pixelsPerMM }

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/log"
)

// Factory builds the live visual for one loaded element. Returning nil
// skips the element without error. A nil Factory accepts every element
// with no visual, which is what headless callers (tests, export) use.
type Factory func(el *domain.CanvasElement) any

// PostProcess runs after an element passed the factory, letting the caller
// register controls or apply styling to the fresh visual.
type PostProcess func(visual any, el *domain.CanvasElement)

// Deserialized pairs a loaded element with the visual its factory built.
type Deserialized struct {
	Element *domain.CanvasElement
	Visual  any
}

// Serialize flattens the live element set into a persistable document.
// Elements appear in the given z-order; geometry is sanitized so the file
// never carries NaN, infinite or negative sizes. For Line and Arrow the
// element's X/Y/X2/Y2 are the cached absolute endpoints, maintained by the
// controls on every change, so they are read verbatim here.
func Serialize(canvasWidth, canvasHeight float64, elements []*domain.CanvasElement) domain.LabelDocument {
	doc := domain.LabelDocument{
		CanvasWidth:  domain.SanitizeNumber(canvasWidth),
		CanvasHeight: domain.SanitizeNumber(canvasHeight),
		Elements:     make([]domain.CanvasElement, 0, len(elements)),
	}
	for _, el := range elements {
		snap := el.Clone()
		snap.Sanitize()
		doc.Elements = append(doc.Elements, snap)
	}
	return doc
}

// Deserialize rebuilds the live element set from a document. Unknown
// element types are skipped, not errors; every accepted element gets its
// load defaults applied before the factory sees it. Elements the factory
// declines (nil visual) are dropped as well.
func Deserialize(doc domain.LabelDocument, factory Factory, post PostProcess) []Deserialized {
	out := make([]Deserialized, 0, len(doc.Elements))
	for i := range doc.Elements {
		snap := doc.Elements[i].Clone()
		if !snap.ElementType.Known() {
			log.L().Warn("skipping unknown element type", "type", snap.ElementType)
			continue
		}
		snap.Sanitize()
		snap.ApplyLoadDefaults()
		el := &snap
		var visual any
		if factory != nil {
			visual = factory(el)
			if visual == nil {
				continue
			}
		}
		if post != nil {
			post(visual, el)
		}
		out = append(out, Deserialized{Element: el, Visual: visual})
	}
	return out
}

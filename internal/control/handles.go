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

// Handle identifies one of the eight drag affordances around a selected
// element. Endpoint elements expose only two handles; StartPoint and
// EndPoint alias the corner handles so the adorner layer can treat all
// element kinds uniformly.
type Handle int

const (
	TopLeft Handle = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

// Endpoint aliases for Line and Arrow.
const (
	StartPoint = TopLeft
	EndPoint   = BottomRight
)

var handleNames = map[Handle]string{
	TopLeft:      "TopLeft",
	TopCenter:    "TopCenter",
	TopRight:     "TopRight",
	MiddleLeft:   "MiddleLeft",
	MiddleRight:  "MiddleRight",
	BottomLeft:   "BottomLeft",
	BottomCenter: "BottomCenter",
	BottomRight:  "BottomRight",
}

func (h Handle) String() string {
	if n, ok := handleNames[h]; ok {
		return n
	}
	return "Unknown"
}

// touchesLeft reports whether the handle sits on the left edge.
func (h Handle) touchesLeft() bool {
	return h == TopLeft || h == MiddleLeft || h == BottomLeft
}

func (h Handle) touchesRight() bool {
	return h == TopRight || h == MiddleRight || h == BottomRight
}

func (h Handle) touchesTop() bool {
	return h == TopLeft || h == TopCenter || h == TopRight
}

func (h Handle) touchesBottom() bool {
	return h == BottomLeft || h == BottomCenter || h == BottomRight
}

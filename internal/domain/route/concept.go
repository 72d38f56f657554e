package route

import (
	"sort"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
)

// Concept names a pass concept: one route keyword per receiver.
type Concept string

const (
	CurlFlat  Concept = "curl-flat"
	Smash     Concept = "smash"
	Mesh      Concept = "mesh"
	FourVerts Concept = "four-verts"
	Flood     Concept = "flood"
	StickC    Concept = "stick"
	Dagger    Concept = "dagger"
	Levels    Concept = "levels"
	YCross    Concept = "y-cross"
	Spacing   Concept = "spacing"
	SlantFlat Concept = "slant-flat"
)

// DefaultConcept is used whenever a concept name is not recognised.
const DefaultConcept = CurlFlat

// Assignment maps receivers to their route keywords.
type Assignment map[model.ReceiverID]Keyword

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

var concepts = map[Concept]Assignment{
	CurlFlat:  {model.RecX: Curl, model.RecSlot: Flat, model.RecZ: Go, model.RecTE: Seam, model.RecRB: Check},
	Smash:     {model.RecX: Hitch, model.RecSlot: Corner, model.RecZ: Hitch, model.RecTE: ShortCorner, model.RecRB: Check},
	Mesh:      {model.RecX: Drag, model.RecZ: Shallow, model.RecSlot: Corner, model.RecTE: Dig, model.RecRB: Wheel},
	FourVerts: {model.RecX: Go, model.RecZ: Go, model.RecSlot: Seam, model.RecTE: Seam, model.RecRB: Check},
	Flood:     {model.RecX: Post, model.RecZ: Go, model.RecSlot: Dig, model.RecTE: Out, model.RecRB: Flat},
	StickC:    {model.RecX: Go, model.RecZ: Go, model.RecSlot: Stick, model.RecTE: Stick, model.RecRB: Flat},
	Dagger:    {model.RecX: Dig, model.RecSlot: Seam, model.RecZ: Go, model.RecTE: Drag, model.RecRB: Check},
	Levels:    {model.RecX: Dig, model.RecSlot: Shallow, model.RecZ: Go, model.RecTE: Stick, model.RecRB: Check},
	YCross:    {model.RecX: Go, model.RecZ: Comeback, model.RecSlot: Flat, model.RecTE: Over, model.RecRB: Check},
	Spacing:   {model.RecX: Hitch, model.RecZ: Hitch, model.RecSlot: SpeedOut, model.RecTE: Stick, model.RecRB: Flat},
	SlantFlat: {model.RecX: Slant, model.RecZ: Fade, model.RecSlot: Arrow, model.RecTE: SkinnyPost, model.RecRB: Wheel},
}

// Concepts returns every known concept name in sorted order.
func Concepts() []Concept {
	out := make([]Concept, 0, len(concepts))
	for c := range concepts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseConcept resolves a concept name. Unknown names resolve to the default
// concept with ok=false.
func ParseConcept(s string) (Concept, bool) {
	c := Concept(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := concepts[c]; ok {
		return c, true
	}
	return DefaultConcept, false
}

// Routes returns a copy of the concept's route assignment.
func Routes(c Concept) Assignment {
	a, ok := concepts[c]
	if !ok {
		a = concepts[DefaultConcept]
	}
	return a.Clone()
}

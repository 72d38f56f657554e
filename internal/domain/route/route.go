// Package route turns route keywords into multi-segment paths and samples
// them at constant linear speed.
package route

import (
	"strings"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
)

// Keyword names a route in the closed route vocabulary.
type Keyword string

const (
	Go           Keyword = "GO"
	Fade         Keyword = "FADE"
	Seam         Keyword = "SEAM"
	Hitch        Keyword = "HITCH"
	SpeedOut     Keyword = "SPEED_OUT"
	Out          Keyword = "OUT"
	DeepOut      Keyword = "DEEP_OUT"
	Curl         Keyword = "CURL"
	Comeback     Keyword = "COMEBACK"
	DeepComeback Keyword = "DEEP_COMEBACK"
	Dig          Keyword = "DIG"
	Post         Keyword = "POST"
	SkinnyPost   Keyword = "SKINNY_POST"
	Corner       Keyword = "CORNER"
	ShortCorner  Keyword = "SHORT_CORNER"
	Drag         Keyword = "DRAG"
	Shallow      Keyword = "SHALLOW"
	Over         Keyword = "OVER"
	Flat         Keyword = "FLAT"
	Arrow        Keyword = "ARROW"
	Wheel        Keyword = "WHEEL"
	Check        Keyword = "CHECK"
	Stick        Keyword = "STICK"
	Slant        Keyword = "SLANT"
	// Block keeps the receiver in to protect; it is not a pass route.
	Block Keyword = "BLOCK"
)

// Keywords lists every route keyword, BLOCK excluded.
var Keywords = []Keyword{
	Go, Fade, Seam, Hitch, SpeedOut, Out, DeepOut, Curl, Comeback, DeepComeback,
	Dig, Post, SkinnyPost, Corner, ShortCorner, Drag, Shallow, Over, Flat, Arrow,
	Wheel, Check, Stick, Slant,
}

var aliases = map[string]Keyword{
	"VERT":       Go,
	"VERTICAL":   Go,
	"STREAK":     Go,
	"QUICK_OUT":  SpeedOut,
	"QUICKOUT":   SpeedOut,
	"FLAG":       ShortCorner,
	"CROSS":      Over,
	"CROSSER":    Over,
	"MESH":       Drag,
	"CHECKDOWN":  Check,
	"IN":         Dig,
	"SQUARE_IN":  Dig,
	"SHOOT":      Flat,
	"PIVOT":      Stick,
	"BENDER":     Seam,
	"DEEP_CURL":  Curl,
	"DEEP_CROSS": Over,
}

// Parse resolves a route keyword case-insensitively. Unknown input resolves
// to CHECK with ok=false so the play always has something to run.
func Parse(s string) (Keyword, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(strings.ReplaceAll(key, "-", "_"), " ", "_")
	if kw, ok := aliases[key]; ok {
		return kw, true
	}
	kw := Keyword(key)
	if kw == Block {
		return Block, true
	}
	for _, k := range Keywords {
		if k == kw {
			return k, true
		}
	}
	return Check, false
}

// Depths is the depth table, in yards past the line of scrimmage.
type Depths struct {
	Quick float64 `json:"quick" koanf:"quick"`
	Short float64 `json:"short" koanf:"short"`
	Mid   float64 `json:"mid" koanf:"mid"`
	Inter float64 `json:"inter" koanf:"inter"`
	Deep  float64 `json:"deep" koanf:"deep"`
}

// DefaultDepths is the stock depth table.
var DefaultDepths = Depths{Quick: 1, Short: 5, Mid: 6, Inter: 12, Deep: 16}

// verticalEnd is how far vertical routes run before the path ends.
const verticalEnd = 40.0

// Generator builds route paths from a depth table.
type Generator struct {
	depths Depths
}

// Option configures a Generator.
type Option func(*Generator)

// WithDepths overrides the depth table; non-positive entries keep defaults.
func WithDepths(d Depths) Option {
	return func(g *Generator) {
		if d.Quick > 0 {
			g.depths.Quick = d.Quick
		}
		if d.Short > 0 {
			g.depths.Short = d.Short
		}
		if d.Mid > 0 {
			g.depths.Mid = d.Mid
		}
		if d.Inter > 0 {
			g.depths.Inter = d.Inter
		}
		if d.Deep > 0 {
			g.depths.Deep = d.Deep
		}
	}
}

// NewGenerator creates a generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{depths: DefaultDepths}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Depths returns the generator's depth table.
func (g *Generator) Depths() Depths { return g.depths }

var defaultGenerator = NewGenerator()

// Generate builds a route with the stock depth table.
func Generate(kw Keyword, start field.Point, scheme model.CoverageScheme, isLeft bool) []field.Point {
	return defaultGenerator.Generate(kw, start, scheme, isLeft)
}

// Generate returns the path for kw run from start. isLeft reports whether the
// receiver aligns left of the formation center, which fixes the outside sign.
// The first point is always start, untouched; later points are kept inside
// the sidelines. Unknown keywords run CHECK.
func (g *Generator) Generate(kw Keyword, start field.Point, scheme model.CoverageScheme, isLeft bool) []field.Point {
	out := 1.0
	if isLeft {
		out = -1
	}
	in := -out
	d := g.depths
	los := field.LOS
	x := start.X
	at := func(dx, depth float64) field.Point { return field.Pt(x+dx, los+depth) }

	var rest []field.Point
	switch kw {
	case Go:
		rest = []field.Point{at(0, verticalEnd)}
	case Fade:
		rest = []field.Point{at(out*2, d.Short+3), at(out*4, verticalEnd)}
	case Seam:
		if scheme.TwoHigh() {
			// Split the safeties: stem vertical, then bend across to the far hash.
			far := field.HashRight
			if !isLeft {
				far = field.HashLeft
			}
			rest = []field.Point{at(0, d.Inter), field.Pt(far, los+d.Inter+18)}
		} else {
			rest = []field.Point{at(0, d.Inter), at(out*1.5, verticalEnd)}
		}
	case Hitch:
		rest = []field.Point{at(0, d.Short+1), at(in*0.5, d.Short)}
	case SpeedOut:
		rest = []field.Point{at(0, d.Short), at(out*1, d.Short+0.3), at(out*10, d.Short+0.3)}
	case Out:
		rest = []field.Point{at(0, d.Mid), at(out*10, d.Mid)}
	case DeepOut:
		rest = []field.Point{at(0, d.Inter), at(out*10, d.Inter-1)}
	case Curl:
		rest = []field.Point{at(0, d.Inter), at(in*1.5, d.Inter-2)}
	case Comeback:
		rest = []field.Point{at(0, d.Deep-1), at(out*2.5, d.Inter)}
	case DeepComeback:
		rest = []field.Point{at(0, d.Deep+2), at(out*2.5, d.Deep-1)}
	case Dig:
		rest = []field.Point{at(0, d.Inter), at(in*15, d.Inter)}
	case Post:
		rest = []field.Point{at(0, d.Inter), at(in*18, d.Inter+18)}
	case SkinnyPost:
		rest = []field.Point{at(0, d.Inter), at(in*6, d.Inter+20)}
	case Corner:
		rest = []field.Point{at(0, d.Inter), at(out*12, d.Inter+12)}
	case ShortCorner:
		rest = []field.Point{at(0, d.Short+1), at(out*8, d.Short+9)}
	case Drag:
		rest = []field.Point{at(in*1, d.Quick+1), at(in*20, d.Quick+1.5)}
	case Shallow:
		rest = []field.Point{at(in*2, d.Quick+2), at(in*22, d.Quick+3)}
	case Over:
		rest = []field.Point{at(0, d.Quick+7), at(in*6, d.Inter), at(in*28, d.Deep)}
	case Flat:
		rest = []field.Point{at(out*2, d.Quick+1), at(out*10, d.Quick+2)}
	case Arrow:
		rest = []field.Point{at(out*8, d.Short)}
	case Wheel:
		rest = []field.Point{at(out*5, d.Quick), at(out*8, d.Short-1), at(out*8.5, verticalEnd-5)}
	case Stick:
		rest = []field.Point{at(0, d.Short+1), at(out*1.5, d.Short)}
	case Slant:
		rest = []field.Point{at(0, d.Quick+1), at(in*12, d.Quick+9)}
	case Block:
		toBall := in
		rest = []field.Point{field.Pt(x+toBall*1, start.Y-1)}
	default:
		// CHECK and anything we do not recognise: settle underneath.
		rest = []field.Point{field.Pt(x+out*2, los-1), field.Pt(x+out*4, los+d.Quick+1)}
	}

	path := make([]field.Point, 0, len(rest)+1)
	path = append(path, start)
	for _, p := range rest {
		path = append(path, field.InBounds(p))
	}
	return path
}

// IsVertical reports whether kw is a vertical stem that keeps climbing; match
// coverages treat these as carry routes.
func IsVertical(kw Keyword) bool {
	switch kw {
	case Go, Fade, Seam, Post, SkinnyPost, Corner, Wheel, DeepComeback:
		return true
	}
	return false
}

package route_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/route"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateStartsAtAlignment(t *testing.T) {
	kws := append([]route.Keyword{route.Block, "NOPE"}, route.Keywords...)
	for _, f := range model.Formations {
		for _, h := range []field.Hash{field.HashL, field.HashR} {
			a, _ := formation.Align(f, h)
			for id, start := range a.Spots {
				for _, s := range model.Schemes {
					for _, kw := range kws {
						path := route.Generate(kw, start, s, start.X < a.Center())
						if len(path) < 2 {
							t.Fatalf("%s/%s %s %s: path too short", f, h, id, kw)
						}
						if path[0] != start {
							t.Fatalf("%s/%s %s %s: first point %v, want %v", f, h, id, kw, path[0], start)
						}
					}
				}
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a receiver left of center", t, func() {
		start := field.Pt(9, field.LOS-0.5)

		Convey("An out breaks toward the left sideline at the mid depth", func() {
			p := route.Generate(route.Out, start, model.Cover3, true)
			last := p[len(p)-1]
			So(last.X, ShouldBeLessThan, start.X)
			So(last.Depth(), ShouldAlmostEqual, route.DefaultDepths.Mid, 1e-9)
		})

		Convey("A dig breaks inside", func() {
			p := route.Generate(route.Dig, start, model.Cover3, true)
			So(p[len(p)-1].X, ShouldBeGreaterThan, start.X)
		})

		Convey("A curl stems to the intermediate depth and comes back", func() {
			p := route.Generate(route.Curl, start, model.Cover3, true)
			So(p, ShouldHaveLength, 3)
			So(p[1].Depth(), ShouldEqual, route.DefaultDepths.Inter)
			So(p[2].Depth(), ShouldBeLessThan, p[1].Depth())
		})

		Convey("Later points stay in bounds", func() {
			p := route.Generate(route.Corner, field.Pt(2, field.LOS-1), model.Cover3, true)
			for _, q := range p[1:] {
				So(q.X, ShouldBeGreaterThanOrEqualTo, field.Margin)
			}
		})
	})

	Convey("Given a seam from the left slot", t, func() {
		start := field.Pt(15, field.LOS-1)

		Convey("Two-high shells bend it to the far hash", func() {
			p := route.Generate(route.Seam, start, model.Cover2, true)
			So(p[len(p)-1].X, ShouldEqual, field.HashRight)
		})

		Convey("One-high shells keep it vertical", func() {
			p := route.Generate(route.Seam, start, model.Cover3, true)
			So(p[len(p)-1].X, ShouldBeLessThan, start.X)
			So(p[len(p)-1].X, ShouldBeGreaterThan, start.X-2)
		})
	})

	Convey("Given a custom depth table", t, func() {
		g := route.NewGenerator(route.WithDepths(route.Depths{Inter: 14}))
		p := g.Generate(route.Curl, field.Pt(9, field.LOS), model.Cover3, true)
		So(p[1].Depth(), ShouldEqual, 14)
		So(g.Depths().Short, ShouldEqual, route.DefaultDepths.Short)
	})
}

func TestParse(t *testing.T) {
	Convey("Keywords parse case-insensitively with aliases", t, func() {
		kw, ok := route.Parse(" curl ")
		So(ok, ShouldBeTrue)
		So(kw, ShouldEqual, route.Curl)

		kw, ok = route.Parse("streak")
		So(ok, ShouldBeTrue)
		So(kw, ShouldEqual, route.Go)

		kw, ok = route.Parse("speed-out")
		So(ok, ShouldBeTrue)
		So(kw, ShouldEqual, route.SpeedOut)
	})

	Convey("Unknown keywords fall back to a checkdown", t, func() {
		kw, ok := route.Parse("moonwalk")
		So(ok, ShouldBeFalse)
		So(kw, ShouldEqual, route.Check)
	})
}

func TestPath(t *testing.T) {
	Convey("Given an L-shaped path", t, func() {
		p := route.NewPath([]field.Point{field.Pt(0, 0), field.Pt(0, 10), field.Pt(5, 10)})

		So(p.Len(), ShouldAlmostEqual, 15, 1e-9)
		So(p.At(-1), ShouldResemble, field.Pt(0, 0))
		So(p.At(10), ShouldResemble, field.Pt(0, 10))
		So(p.At(12).X, ShouldAlmostEqual, 2, 1e-9)
		So(p.At(99), ShouldResemble, field.Pt(5, 10))
		So(route.BreakIndex(p.Points(), 30), ShouldEqual, 1)
	})

	Convey("An empty path samples to the origin", t, func() {
		p := route.NewPath(nil)
		So(p.Len(), ShouldEqual, 0)
		So(p.At(3), ShouldResemble, field.Point{})
	})
}

func TestRunner(t *testing.T) {
	path := route.NewPath(route.Generate(route.Post, field.Pt(9, field.LOS-0.5), model.Cover1, true))

	Convey("Given a free release", t, func() {
		r := route.Runner{Path: path, Speed: 7.5, Seconds: 3}

		Convey("Progress along the path never goes backward", func() {
			prev := -1.0
			for i := 0; i <= 100; i++ {
				d := r.Distance(float64(i) / 100)
				So(d, ShouldBeGreaterThanOrEqualTo, prev)
				prev = d
			}
		})

		Convey("The break shows up as a sharp cut", func() {
			tBreak := (route.DefaultDepths.Inter + 0.5) / (7.5 * 3)
			So(r.CutAngle(tBreak, 0.04), ShouldBeGreaterThan, 30)
			So(r.CutAngle(0.1, 0.04), ShouldBeLessThan, 1)
		})
	})

	Convey("Given a press", t, func() {
		Convey("A locked receiver never leaves the alignment point", func() {
			r := route.Runner{Path: path, Speed: 7.5, Seconds: 3, Frozen: true}
			for i := 0; i <= 10; i++ {
				So(r.At(float64(i)/10), ShouldResemble, path.Start())
			}
		})

		Convey("A delayed release starts late and trails a free release", func() {
			free := route.Runner{Path: path, Speed: 7.5, Seconds: 3}
			held := route.Runner{Path: path, Speed: 7.5, Seconds: 3, Delay: 0.12}
			So(held.At(0.1), ShouldResemble, path.Start())
			So(held.Distance(0.5), ShouldBeLessThan, free.Distance(0.5))
		})
	})
}

func TestConcepts(t *testing.T) {
	Convey("Every concept assigns a route to every receiver", t, func() {
		for _, c := range route.Concepts() {
			a := route.Routes(c)
			for _, id := range model.Receivers {
				_, ok := a[id]
				So(ok, ShouldBeTrue)
			}
		}
	})

	Convey("Only curl-flat runs a curl, and only from X", t, func() {
		for _, c := range route.Concepts() {
			for id, kw := range route.Routes(c) {
				if kw == route.Curl {
					So(c, ShouldEqual, route.CurlFlat)
					So(id, ShouldEqual, model.RecX)
				}
			}
		}
	})

	Convey("Unknown concepts fall back to curl-flat", t, func() {
		c, ok := route.ParseConcept("hail-mary")
		So(ok, ShouldBeFalse)
		So(c, ShouldEqual, route.CurlFlat)
	})

	Convey("Returned assignments are copies", t, func() {
		a := route.Routes(route.Smash)
		a[model.RecX] = route.Go
		So(route.Routes(route.Smash)[model.RecX], ShouldEqual, route.Hitch)
	})
}

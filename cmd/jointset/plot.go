package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/TrevorS/jointset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// primitiveSegments is the number of segments used to draw the primitive
// circle.
const primitiveSegments = 180

// writeStereonet renders a lower-hemisphere equal-area net: the dataset
// density as grey discs on the grid nodes, each retained class's poles in
// its own color, and class means as crosses.
func writeStereonet(path string, s *jointset.Session, rep *jointset.Report) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d records, %d classes (equal area, lower hemisphere)", rep.Records, len(rep.Classes))
	p.HideAxes()
	p.X.Min, p.X.Max = -1.05, 1.05
	p.Y.Min, p.Y.Max = -1.05, 1.05

	circle := make(plotter.XYs, primitiveSegments+1)
	for i := range circle {
		a := 2 * math.Pi * float64(i) / primitiveSegments
		circle[i] = plotter.XY{X: math.Sin(a), Y: math.Cos(a)}
	}
	primitive, err := plotter.NewLine(circle)
	if err != nil {
		return err
	}
	primitive.Width = vg.Points(1)
	p.Add(primitive)

	if err := addDensity(p, rep.Dataset); err != nil {
		return err
	}

	for i, c := range rep.Classes {
		pts := make(plotter.XYs, 0, len(c.Members))
		for _, m := range c.Members {
			x, y := jointset.ProjectEqualArea(s.Set.Vectors[m])
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
		if len(pts) == 0 {
			continue
		}
		poles, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		poles.GlyphStyle.Color = plotutil.Color(i)
		poles.GlyphStyle.Radius = vg.Points(2)
		poles.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(poles)

		label := fmt.Sprintf("class %d (n=%d)", c.ID, len(c.Records))
		if c.Stats != nil {
			x, y := jointset.ProjectEqualArea(c.Stats.Mean)
			mean, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
			if err != nil {
				return err
			}
			mean.GlyphStyle.Color = plotutil.Color(i)
			mean.GlyphStyle.Radius = vg.Points(6)
			mean.GlyphStyle.Shape = draw.CrossGlyph{}
			p.Add(mean)
			label = fmt.Sprintf("class %d (n=%d) %03.0f/%02.0f", c.ID, c.Stats.Count, c.Stats.MeanDipDirection, c.Stats.MeanDip)
		}
		p.Legend.Add(label, poles)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

// addDensity draws every grid node with a non-zero concentration as a grey
// disc whose radius grows with the concentration.
func addDensity(p *plot.Plot, d jointset.DensityResult) error {
	if d.Max <= 0 {
		return nil
	}
	grid := jointset.Grid()
	pts := make(plotter.XYs, 0, len(grid))
	values := make([]float64, 0, len(grid))
	for i, n := range grid {
		if d.Values[i] > 0 {
			pts = append(pts, plotter.XY{X: n.X, Y: n.Y})
			values = append(values, d.Values[i])
		}
	}
	nodes, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	nodes.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  color.Gray{Y: 200},
			Radius: vg.Points(1 + 7*values[i]/d.Max),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(nodes)
	return nil
}

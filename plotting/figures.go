package plotting

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type seriesKind uint8

const (
	seriesLine seriesKind = iota + 1
	seriesScatter
)

type series struct {
	kind  seriesKind
	xs    []float64
	ys    []float64
	label string
}

type figure struct {
	title  string
	xlabel string
	ylabel string
	grid   bool
	legend bool
	series []series
}

// Figures collects the figures drawn by one cell. It is owned by the evaluating goroutine.
type Figures struct {
	width   vg.Length
	height  vg.Length
	figures []*figure
	current *figure
}

func NewFigures(width, height vg.Length) *Figures {
	return &Figures{
		width:  width,
		height: height,
	}
}

func (f *Figures) newFigure(title string) *figure {
	fig := &figure{
		title: title,
	}
	f.figures = append(f.figures, fig)
	f.current = fig
	return fig
}

func (f *Figures) currentFigure() *figure {
	if f.current == nil {
		return f.newFigure("")
	}
	return f.current
}

func (f *Figures) ClearFigures() {
	f.figures = nil
	f.current = nil
}

func (f *Figures) HasFigures() bool {
	return len(f.figures) > 0
}

func (f *Figures) CloseFigures() {
	f.ClearFigures()
}

func (fig *figure) build() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.title
	p.X.Label.Text = fig.xlabel
	p.Y.Label.Text = fig.ylabel
	if fig.grid {
		p.Add(plotter.NewGrid())
	}
	for i, s := range fig.series {
		xys := make(plotter.XYs, 0, len(s.xs))
		for j := range s.xs {
			x, y := s.xs[j], s.ys[j]
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				continue
			}
			xys = append(xys, plotter.XY{X: x, Y: y})
		}
		if len(xys) == 0 {
			continue
		}
		c := plotutil.Color(i)
		var thumb plot.Thumbnailer
		switch s.kind {
		case seriesScatter:
			scatter, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, err
			}
			scatter.GlyphStyle.Color = c
			scatter.GlyphStyle.Radius = vg.Points(2)
			p.Add(scatter)
			thumb = scatter
		default:
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, err
			}
			line.LineStyle.Color = c
			line.LineStyle.Width = vg.Points(1.5)
			p.Add(line)
			thumb = line
		}
		if fig.legend && s.label != "" {
			p.Legend.Add(s.label, thumb)
		}
	}
	return p, nil
}

// RenderPNG draws every figure, stacked vertically, into one PNG.
func (f *Figures) RenderPNG() ([]byte, error) {
	if len(f.figures) == 0 {
		return nil, fmt.Errorf("no figures")
	}
	plots := make([][]*plot.Plot, 0, len(f.figures))
	for _, fig := range f.figures {
		p, err := fig.build()
		if err != nil {
			return nil, err
		}
		plots = append(plots, []*plot.Plot{p})
	}

	buf := new(bytes.Buffer)
	if len(plots) == 1 {
		w, err := plots[0][0].WriterTo(f.width, f.height, "png")
		if err != nil {
			return nil, err
		}
		if _, err := w.WriteTo(buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	img := vgimg.New(f.width, f.height*vg.Length(len(plots)))
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadY: vg.Points(8),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i, row := range plots {
		row[0].Draw(canvases[i][0])
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

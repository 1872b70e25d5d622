package plotting

import (
	"context"
	"io"

	"github.com/reusee/symbook/interp"
	"go.starlark.net/starlark"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Library is the plotting library. Loading it parses the plot fonts, so it is
// installed in the background after the core libraries.
type Library struct {
	Width  vg.Length
	Height vg.Length
}

var _ interp.Library = Library{}

func (Library) Name() string {
	return "plotting"
}

func (Library) Provides() []string {
	return []string{"plot", "plt"}
}

func (l Library) Load(ctx context.Context) (interp.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	width, height := l.Width, l.Height
	if width <= 0 {
		width = 6 * vg.Inch
	}
	if height <= 0 {
		height = 4 * vg.Inch
	}

	// warm up font and image encoder
	p := plot.New()
	p.Title.Text = "warm up"
	p.Add(plotter.NewGrid())
	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, err
	}
	if _, err := w.WriteTo(io.Discard); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return NewFigures(width, height), nil
}

var _ interp.Package = new(Figures)

var _ interp.Graphics = new(Figures)

func (f *Figures) Members() starlark.StringDict {
	return starlark.StringDict{
		"plt":  f.module(),
		"plot": starlark.NewBuiltin("plot", f.plotBuiltin),
	}
}

func (f *Figures) Docs() []interp.Doc {
	return docs
}

var docs = []interp.Doc{
	{
		Name:      "plot",
		Kind:      "function",
		Signature: "plot(f, (x, lo, hi), points=200, title=\"\")",
		Summary:   "Plot an expression or a function of one variable in a new figure.",
		Body:      "plot(sin(x), (x, -pi, pi))\nPoints where f is undefined are skipped.",
	},
	{
		Name:    "plt",
		Kind:    "module",
		Summary: "Figure building: figure, plot, scatter, plot_expr, title, xlabel, ylabel, grid, legend, clf, close.",
		Body:    "plt.plot([1, 2, 3], [1, 4, 9], label=\"squares\")\nplt.legend()\nThe figures drawn by a cell are shown below its output.",
	},
	{
		Name:      "plt.plot",
		Kind:      "function",
		Signature: "plt.plot(xs, ys=None, label=\"\")",
		Summary:   "Add a line through the points. With one sequence, it is plotted against its indices.",
	},
	{
		Name:      "plt.scatter",
		Kind:      "function",
		Signature: "plt.scatter(xs, ys, label=\"\")",
		Summary:   "Add unconnected points.",
	},
	{
		Name:      "plt.plot_expr",
		Kind:      "function",
		Signature: "plt.plot_expr(f, var=None, lo=-10, hi=10, points=200, label=\"\")",
		Summary:   "Sample an expression or callable over [lo, hi] and add it as a line.",
	},
}

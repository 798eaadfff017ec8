package report

import (
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/open-sauced/pizza/gitstats/pkg/aggregate"
)

var (
	contributorColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	trendColor       = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	insertionsColor  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	deletionsColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

func (r *Reporter) contributorChart(top []aggregate.ContributorCount, path string) error {
	p := plot.New()
	p.Title.Text = "Top 10 contributors by commits"
	p.X.Label.Text = "Commits"
	p.Y.Label.Text = "Contributor"

	if len(top) > 0 {
		// the first y position is drawn at the bottom, so the ranking is
		// reversed to put the top contributor on top
		values := make(plotter.Values, len(top))
		names := make([]string, len(top))
		for i, c := range top {
			values[len(top)-1-i] = float64(c.Commits)
			names[len(top)-1-i] = c.Name
		}

		bars, err := plotter.NewBarChart(values, vg.Points(18))
		if err != nil {
			return err
		}
		bars.Horizontal = true
		bars.Color = contributorColor
		bars.LineStyle.Width = 0

		p.Add(bars)
		p.NominalY(names...)
		p.X.Min = 0
	}

	return r.savePlot(p, 12*vg.Inch, 6*vg.Inch, path)
}

func (r *Reporter) trendChart(points []aggregate.TrendPoint, period aggregate.Period, path string) error {
	p := plot.New()
	p.Title.Text = "Commit trend (per " + period.Label() + ")"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Commits"
	p.X.Tick.Marker = plot.TimeTicks{Format: trendTickFormat(period)}
	p.Add(plotter.NewGrid())

	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = float64(pt.End.Unix())
			xys[i].Y = float64(pt.Commits)
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = trendColor
		line.Width = vg.Points(2)

		p.Add(line)
		p.Y.Min = 0
	}

	return r.savePlot(p, 14*vg.Inch, 6*vg.Inch, path)
}

func trendTickFormat(period aggregate.Period) string {
	if period == aggregate.MonthEnd {
		return "2006-01"
	}
	return "2006-01-02"
}

func (r *Reporter) churnChart(churn []aggregate.YearChurn, path string) error {
	p := plot.New()
	p.Title.Text = "Code churn per year (inserted / deleted lines)"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Lines"
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	if len(churn) > 0 {
		insertions := make(plotter.Values, len(churn))
		deletions := make(plotter.Values, len(churn))
		years := make([]string, len(churn))
		for i, yc := range churn {
			insertions[i] = float64(yc.Insertions)
			deletions[i] = float64(yc.Deletions)
			years[i] = strconv.Itoa(yc.Year)
		}

		width := vg.Points(24)
		insBars, err := plotter.NewBarChart(insertions, width)
		if err != nil {
			return err
		}
		insBars.Color = insertionsColor
		insBars.LineStyle.Width = 0

		delBars, err := plotter.NewBarChart(deletions, width)
		if err != nil {
			return err
		}
		delBars.Color = deletionsColor
		delBars.LineStyle.Width = 0
		delBars.StackOn(insBars)

		p.Add(insBars, delBars)
		p.NominalX(years...)
		p.Legend.Add("Insertions", insBars)
		p.Legend.Add("Deletions", delBars)
		p.Legend.Top = true
		p.Y.Min = 0
	}

	return r.savePlot(p, 14*vg.Inch, 6*vg.Inch, path)
}

// savePlot rasterizes p at the configured DPI and writes it as a PNG.
func (r *Reporter) savePlot(p *plot.Plot, w, h vg.Length, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.opts.DPI))
	p.Draw(draw.New(c))

	return writeFileAtomic(path, func(out io.Writer) error {
		png := vgimg.PngCanvas{Canvas: c}
		_, err := png.WriteTo(out)
		return err
	})
}

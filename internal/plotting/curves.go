package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Fixed output filenames, written to the working directory on save.
const (
	LearningCurveFile = "learning_curve.png"
	ROCCurveFile      = "roc_curve.png"
)

var (
	trainColor    = color.RGBA{R: 220, G: 50, B: 50, A: 255}
	valColor      = color.RGBA{R: 50, G: 50, B: 220, A: 255}
	diagonalColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// LearningCurve renders train and validation series of one fit metric
// against epoch number.
func LearningCurve(title, metric string, train, val []float64) (*plot.Plot, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("no %s history to plot", metric)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Learning Curve for %s", title)
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = metric

	trainLine, err := plotter.NewLine(seriesPoints(train))
	if err != nil {
		return nil, err
	}
	trainLine.Color = trainColor
	trainLine.LineStyle.Width = vg.Points(2)
	p.Add(trainLine)
	p.Legend.Add("train", trainLine)

	if len(val) > 0 {
		valLine, err := plotter.NewLine(seriesPoints(val))
		if err != nil {
			return nil, err
		}
		valLine.Color = valColor
		valLine.LineStyle.Width = vg.Points(2)
		p.Add(valLine)
		p.Legend.Add("val", valLine)
	}

	p.Legend.Top = true
	return p, nil
}

// ROCCurve renders the false positive rate against the true positive rate
// with the chance diagonal for reference.
func ROCCurve(fpr, tpr []float64, auc float64) (*plot.Plot, error) {
	if len(fpr) < 2 || len(fpr) != len(tpr) {
		return nil, fmt.Errorf("roc curve needs matched fpr/tpr series")
	}

	p := plot.New()
	p.Title.Text = "ROC curve"
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"

	pts := make(plotter.XYs, len(fpr))
	for i := range fpr {
		pts[i].X = fpr[i]
		pts[i].Y = tpr[i]
	}

	rocLine, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	rocLine.Color = trainColor
	rocLine.LineStyle.Width = vg.Points(2)
	p.Add(rocLine)
	p.Legend.Add(fmt.Sprintf("area = %.3f", auc), rocLine)

	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, err
	}
	diagonal.Color = diagonalColor
	diagonal.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(diagonal)

	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

// Save writes a rendered plot to disk.
func Save(p *plot.Plot, filename string) error {
	return p.Save(8*vg.Inch, 5*vg.Inch, filename)
}

func seriesPoints(series []float64) plotter.XYs {
	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	return pts
}

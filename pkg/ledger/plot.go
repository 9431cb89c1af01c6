package ledger

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RenderAccuracy plots train and valid accuracy over epochs. Rows whose
// evaluate pass never ran are dropped from the valid series.
func RenderAccuracy(rows []Row, path string) error {
	return render(rows, path, "Training Accuracy Progress", "Accuracy",
		func(r Row) float64 { return r.TrainAcc },
		func(r Row) float64 { return r.TestAcc })
}

// RenderLoss plots train and valid cross-entropy loss over epochs.
func RenderLoss(rows []Row, path string) error {
	return render(rows, path, "Training Loss Progress", "Cross Entropy Loss",
		func(r Row) float64 { return r.TrainLoss },
		func(r Row) float64 { return r.TestLoss })
}

func render(rows []Row, path, title, yLabel string, train, test func(Row) float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = yLabel

	trainXY := make(plotter.XYs, 0, len(rows))
	testXY := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		trainXY = append(trainXY, plotter.XY{X: float64(r.Epoch), Y: train(r)})
		if r.Evaluated() {
			testXY = append(testXY, plotter.XY{X: float64(r.Epoch), Y: test(r)})
		}
	}

	if err := plotutil.AddLinePoints(p, "Train", trainXY, "Valid", testXY); err != nil {
		return fmt.Errorf("build plot series: %w", err)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}

	return nil
}

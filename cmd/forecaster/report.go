package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"StockForecaster/internal/model"
	"StockForecaster/internal/notifier"
)

func printReport(out io.Writer, res *model.ForecastResult) error {
	s := res.Settings
	fmt.Fprintf(out, "%s  run %s\n", res.Symbol, res.RunID)
	fmt.Fprintf(out, "rows %d (train %d, test %d), training pairs %d, data to %s\n",
		res.Rows, res.TrainLen, res.Rows-res.TrainLen, res.TrainPairs, res.DataEnd.Format("2006-01-02"))
	fmt.Fprintf(out, "mode %s: window %d, scaler %s (%s), %s lr %g, loss %s, %d epoch(s), batch %d, dense %s\n\n",
		s.Mode, s.Window, s.Scaler, s.FitScalerOn, s.Optimizer, s.LearningRate, s.Loss, s.Epochs, s.BatchSize, s.DenseActivation)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	if len(res.Predictions) > 0 {
		fmt.Fprintln(tw, "date\tactual\tpredicted\t")
		for _, p := range res.Predictions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", p.Date.Format("2006-01-02"), notifier.Num(p.Actual), notifier.Num(p.Predicted))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	m := res.Metrics
	fmt.Fprintf(out, "RMSE %s  MAE %s  MSE %s  R2 %s  MAPE %s\n\n",
		notifier.Num(m.RMSE), notifier.Num(m.MAE), notifier.Num(m.MSE), notifier.Num(m.R2), notifier.Num(m.MAPE))

	fmt.Fprintln(tw, "forecast date\tprice\t")
	for _, p := range res.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Date.Format("2006-01-02 Mon"), notifier.Num(p.Price))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\ntrained in %s, total %s\n", res.TrainingTime.Round(time.Millisecond), res.Duration.Round(time.Millisecond))
	return nil
}

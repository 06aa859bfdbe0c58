// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/clef/internal/model"
)

// RenderSummary prints aggregate stats for the reported rounds.
func RenderSummary(w io.Writer, report Report) error {
	if report.Agg.Rounds == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Rounds: %d\n", report.Agg.Rounds); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Clef score: %.0f (best %.0f)\n", report.Agg.CurrentRating, report.Agg.BestRating); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg score: %.2f\n", report.Agg.AvgScore); err != nil {
		return err
	}
	for _, tier := range []model.Difficulty{model.Easy, model.Medium, model.Hard} {
		n := report.Agg.CountByTier[tier]
		if n == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "Avg %s: %.2f (%d rounds)\n", tier, report.Agg.AvgByTier[tier], n); err != nil {
			return err
		}
	}
	if spark := Sparkline(RatingValues(report.Points)); spark != "" {
		if _, err := fmt.Fprintf(w, "Trend: %s\n", spark); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderReport prints the complete non-interactive stats report:
// summary, rating curve, and rounds table.
func RenderReport(w io.Writer, report Report, window, totalWidth int) error {
	if err := RenderSummary(w, report); err != nil {
		return err
	}
	if err := RenderRatingCurve(w, report.Points, window, totalWidth, defaultPlotHeight); err != nil {
		return err
	}
	return RenderRoundsTable(w, report)
}

// RenderRatingCurve prints the clef score curve, smoothed by a moving
// average window.
func RenderRatingCurve(w io.Writer, points []model.RatingPoint, window, totalWidth, height int) error {
	if len(points) == 0 {
		return nil
	}
	values := RatingValues(points)
	smoothed := MovingAverage(values, window)
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return Plot(w, "Clef Score", []Series{
		{Name: "rating", Values: values},
		{Name: fmt.Sprintf("avg(%d)", window), Values: smoothed},
	}, width, height)
}

// RenderRoundsTable prints recent rounds with their rating deltas,
// newest first.
func RenderRoundsTable(w io.Writer, report Report) error {
	if len(report.Rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Rounds"); err != nil {
		return err
	}
	headers := []string{"Ended", "Difficulty", "Range", "Score", "Questions", "Δ Rating"}
	rows := make([][]string, 0, len(report.Rounds))
	for i := len(report.Rounds) - 1; i >= 0; i-- {
		rows = append(rows, RoundRow(report.Rounds[i], report.PointByID))
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RoundRow formats one round for tabular display.
func RoundRow(r model.RoundRecord, pointByID map[int64]model.RatingPoint) []string {
	questions := "∞"
	if r.Questions > 0 {
		questions = fmt.Sprintf("%d/%d", r.Answered, r.Questions)
	}
	delta := "—"
	if p, ok := pointByID[r.ID]; ok {
		delta = fmt.Sprintf("%+.0f", p.Delta)
	}
	return []string{
		r.EndedAt.Local().Format("2006-01-02 15:04"),
		string(r.Difficulty),
		fmt.Sprintf("%s-%s", r.Low, r.High),
		fmt.Sprintf("%d", r.Score),
		questions,
		delta,
	}
}

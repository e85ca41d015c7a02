package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/memverse/internal/model"
)

// HistoryRows formats attempts newest first.
func HistoryRows(sessions []model.SessionAggregate) (headers []string, rows [][]string) {
	headers = []string{"Ended", "Passage", "Tr", "Progress", "Status", "Mistakes", "Helps", "WPM"}
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		wpm, _, _ := metricsOf(s)
		status := "stopped"
		if s.Completed {
			status = "done"
		}
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Reference,
			s.Translation,
			fmt.Sprintf("%d%%", s.Progress),
			status,
			fmt.Sprintf("%d", s.Mistakes),
			fmt.Sprintf("%d", s.Helps),
			fmt.Sprintf("%.1f", wpm),
		})
	}
	return headers, rows
}

// HistoryLines renders attempts as aligned text lines, newest first.
func HistoryLines(sessions []model.SessionAggregate) []string {
	headers, rows := HistoryRows(sessions)
	return formatTable(headers, rows, map[int]bool{3: true, 5: true, 6: true, 7: true})
}

// RenderHistory prints the attempt log.
func RenderHistory(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "History (newest first)"); err != nil {
		return err
	}
	for _, line := range HistoryLines(sessions) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

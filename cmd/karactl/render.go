package main

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475a"))

	riskStyles = map[string]lipgloss.Style{
		"High":   cellStyle.Foreground(lipgloss.Color("#f38ba8")),
		"Medium": cellStyle.Foreground(lipgloss.Color("#fab387")),
		"Low":    cellStyle.Foreground(lipgloss.Color("#a6e3a1")),
	}
)

var batchHeaders = []string{"row", "will_complete", "completion_probability", "dropout_risk", "confidence", "error"}

const riskColumn = 3

func renderBatchTable(items []dto.BatchItem) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, batchRow(item))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(batchHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == riskColumn && row >= 0 && row < len(rows) {
				if s, ok := riskStyles[rows[row][col]]; ok {
					return s
				}
			}
			return cellStyle
		})

	return t.String()
}

func batchRow(item dto.BatchItem) []string {
	row := strconv.Itoa(item.Row)
	if item.Prediction == nil {
		return []string{row, "", "", "", "", item.Error}
	}
	p := item.Prediction
	return []string{
		row,
		strconv.FormatBool(p.WillComplete),
		strconv.FormatFloat(p.CompletionProbability, 'f', 4, 64),
		p.DropoutRisk,
		strconv.FormatFloat(p.Confidence, 'f', 4, 64),
		"",
	}
}

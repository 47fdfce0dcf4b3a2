package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/borzacchiello/statelogic"
)

var tableCmd = &cobra.Command{
	Use:   "table [flags] machine_file [equation...]",
	Short: "Print the truth table of some equations.",
	Long: `Print the truth table of the given equations, or of every equation
	of the machine file when none is named.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := loadOrExit(cmd, args)
		style, err := newStyle(getString(cmd, "color"))
		if err != nil {
			log.Error(err)
			os.Exit(2)
		}
		if err := runTable(os.Stdout, m, args[1:], style); err != nil {
			log.Error(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}

func runTable(w io.Writer, m *machine, selected []string, style statelogic.Style) error {
	names := selected
	if len(names) == 0 {
		names = m.names
	}
	roots := make([]*statelogic.Expression, len(names))
	for i, n := range names {
		e, err := m.equation(n)
		if err != nil {
			return err
		}
		roots[i] = e
	}

	tt, err := statelogic.NewTruthTable(roots...)
	if err != nil {
		return err
	}
	writeTable(w, tt, names, style)
	return nil
}

// writeTable prints one column per input and per output. Cells are padded on
// their plain text so that colors do not break the alignment.
func writeTable(w io.Writer, tt *statelogic.TruthTable, names []string, style statelogic.Style) {
	header := make([]string, 0, tt.InputCount()+tt.OutputCount())
	for _, s := range tt.Inputs() {
		header = append(header, s.Name())
	}
	header = append(header, names...)

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range tt.InputRows() {
		for i, v := range row {
			widths[i] = max(widths[i], len(statelogic.ValueText(v)))
		}
	}
	for _, row := range tt.OutputRows() {
		for i, v := range row {
			j := tt.InputCount() + i
			widths[j] = max(widths[j], len(statelogic.ValueText(v)))
		}
	}

	cell := func(b *strings.Builder, col int, plain, styled string) {
		if col == tt.InputCount() && col > 0 {
			b.WriteString("| ")
		}
		b.WriteString(styled)
		b.WriteString(strings.Repeat(" ", widths[col]-len(plain)+1))
	}

	b := strings.Builder{}
	for i, h := range header {
		cell(&b, i, h, h)
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	for r := 0; r < tt.RowCount(); r++ {
		b.Reset()
		for i, v := range tt.InputRows()[r] {
			cell(&b, i, statelogic.ValueText(v), valueCell(v, style))
		}
		for i, v := range tt.OutputRows()[r] {
			cell(&b, tt.InputCount()+i, statelogic.ValueText(v), valueCell(v, style))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

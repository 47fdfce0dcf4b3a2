package cmd

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/borzacchiello/statelogic"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] machine_file",
	Short: "Evaluate every equation with the initial signal values.",
	Run: func(cmd *cobra.Command, args []string) {
		m := loadOrExit(cmd, args)
		style, err := newStyle(getString(cmd, "color"))
		if err != nil {
			log.Error(err)
			os.Exit(2)
		}
		runEval(os.Stdout, m, style)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(w io.Writer, m *machine, style statelogic.Style) {
	for i, e := range m.equations {
		text := e.Text()
		if style != nil {
			text = e.ColoredText(style)
		}
		fmt.Fprintf(w, "%s: %s = %s", m.names[i], text, valueCell(e.CurrentValue(), style))
		if c := e.FailureCause(); c != statelogic.CauseNone {
			fmt.Fprintf(w, " (%s)", c)
		}
		fmt.Fprintln(w)
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/borzacchiello/statelogic"
	"github.com/borzacchiello/statelogic/z3check"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] machine_file",
	Short: "Report conditions that are never true or that overlap.",
	Long: `Report the 1 bit equations that are true for no assignment of their
	signals, and the pairs of equations that can be true at the same time.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := loadOrExit(cmd, args)
		var (
			n   int
			err error
		)
		if getFlag(cmd, "z3") {
			n, err = runCheckZ3(os.Stdout, m)
		} else {
			n, err = runCheck(os.Stdout, m)
		}
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		if n > 0 {
			os.Exit(3)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("z3", false, "use the Z3 solver instead of truth tables")
}

// conditions returns the indexes of the 1 bit equations.
func (m *machine) conditions() []int {
	var res []int
	for i, e := range m.equations {
		if e.Size() == 1 {
			res = append(res, i)
			continue
		}
		log.Debugf("skipping %q: %d bits wide (%s)", m.names[i], e.Size(), e.FailureCause())
	}
	return res
}

func runCheck(w io.Writer, m *machine) (int, error) {
	problems := 0
	conds := m.conditions()
	exprs := make([]*statelogic.Expression, len(conds))
	for i, c := range conds {
		exprs[i] = m.equations[c]
		never, err := statelogic.NeverTrue(exprs[i])
		if err != nil {
			return problems, err
		}
		if never {
			fmt.Fprintf(w, "never true: %s\n", m.names[c])
			problems++
		}
	}

	overlaps, err := statelogic.CheckExclusive(exprs...)
	if err != nil {
		return problems, err
	}
	for _, o := range overlaps {
		names := make([]string, len(o.Conditions))
		for i, c := range o.Conditions {
			names[i] = m.names[conds[c]]
		}
		assign := make([]string, len(o.Inputs))
		for i, s := range o.Inputs {
			assign[i] = fmt.Sprintf("%s=%s", s.Name(), o.Values[i])
		}
		fmt.Fprintf(w, "overlap: %s when %s\n", strings.Join(names, ", "), strings.Join(assign, " "))
		problems++
	}
	return problems, nil
}

func runCheckZ3(w io.Writer, m *machine) (int, error) {
	problems := 0
	conds := m.conditions()
	checker := z3check.NewChecker()
	for _, c := range conds {
		r, err := checker.Satisfiable(m.equations[c])
		if err != nil {
			return problems, err
		}
		switch r {
		case z3check.RESULT_UNSAT:
			fmt.Fprintf(w, "never true: %s\n", m.names[c])
			problems++
		case z3check.RESULT_UNKNOWN:
			fmt.Fprintf(w, "unknown: %s\n", m.names[c])
		}
	}

	for i, a := range conds {
		for _, b := range conds[i+1:] {
			r, err := checker.Overlap(m.equations[a], m.equations[b])
			if err != nil {
				return problems, err
			}
			if r != z3check.RESULT_SAT {
				continue
			}
			fmt.Fprintf(w, "overlap: %s, %s when %s\n", m.names[a], m.names[b], modelText(checker.Model()))
			problems++
		}
	}
	return problems, nil
}

func modelText(model map[string]statelogic.BitVector) string {
	names := make([]string, 0, len(model))
	for n := range model {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%s", n, model[n])
	}
	return strings.Join(parts, " ")
}

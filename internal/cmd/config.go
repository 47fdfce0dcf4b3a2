package cmd

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/borzacchiello/statelogic"
)

// machineFile is the YAML layout read by every command.
type machineFile struct {
	Signals   []signalDecl   `yaml:"signals"`
	Equations []equationDecl `yaml:"equations"`
}

type signalDecl struct {
	Name     string `yaml:"name"`
	Size     uint   `yaml:"size"`
	Initial  string `yaml:"initial"`
	Constant string `yaml:"constant"`
}

type equationDecl struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// machine holds the signals and parsed equations of a machine file.
type machine struct {
	signals   []*statelogic.Signal
	names     []string
	equations []*statelogic.Expression
}

func readMachineFile(filename string) (*machine, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := loadMachine(data)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return m, nil
}

func loadMachine(data []byte) (*machine, error) {
	var f machineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	m := &machine{}
	seen := make(map[string]bool)
	for i, d := range f.Signals {
		if d.Name == "" {
			return nil, errors.Errorf("signal %d has no name", i)
		}
		if seen[d.Name] {
			return nil, errors.Errorf("signal %q declared twice", d.Name)
		}
		seen[d.Name] = true

		s, err := d.build()
		if err != nil {
			return nil, err
		}
		m.signals = append(m.signals, s)
	}
	log.Debugf("loaded %d signals", len(m.signals))

	lookup := statelogic.SignalLookup(m.signals...)
	seen = make(map[string]bool)
	for i, d := range f.Equations {
		name := d.Name
		if name == "" {
			name = d.Expr
		}
		if seen[name] {
			return nil, errors.Errorf("equation %q declared twice", name)
		}
		seen[name] = true

		e, err := statelogic.ParseExpression(d.Expr, lookup)
		if err != nil {
			return nil, errors.Wrapf(err, "equation %d (%s)", i, name)
		}
		m.names = append(m.names, name)
		m.equations = append(m.equations, e)
	}
	return m, nil
}

func (d signalDecl) build() (*statelogic.Signal, error) {
	if d.Constant != "" {
		v, err := statelogic.ParseBitVector(d.Constant)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %q", d.Name)
		}
		return statelogic.NewConstantSignal(d.Name, v)
	}

	var initial statelogic.BitVector
	if d.Initial != "" {
		v, err := statelogic.ParseBitVector(d.Initial)
		if err != nil {
			return nil, errors.Wrapf(err, "initial value of %q", d.Name)
		}
		initial = v
	}
	size := d.Size
	if size == 0 {
		size = initial.Size()
	}
	if size == 0 {
		size = 1
	}

	s, err := statelogic.NewSignal(d.Name, size)
	if err != nil {
		return nil, err
	}
	if !initial.IsNull() {
		if err := s.SetInitialValue(initial); err != nil {
			return nil, err
		}
		s.Reinitialize()
	}
	return s, nil
}

// equation returns the equation with the given name.
func (m *machine) equation(name string) (*statelogic.Expression, error) {
	for i, n := range m.names {
		if n == name {
			return m.equations[i], nil
		}
	}
	return nil, errors.Errorf("unknown equation %q", name)
}

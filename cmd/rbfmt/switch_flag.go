package main

import (
	"fmt"
	"os"
	"strings"
)

// switchFlag is an auto|on|off flag. Auto asks whether the stream the
// feature writes to is a terminal.
type switchFlag string

const (
	switchAuto switchFlag = "auto"
	switchOn   switchFlag = "on"
	switchOff  switchFlag = "off"
)

var (
	colorFlag = switchAuto // --color, resolved against the diagnostics stream
	uiFlag    = switchAuto // --ui, resolved against stdout
)

func (s *switchFlag) String() string {
	if *s == "" {
		return string(switchAuto)
	}
	return string(*s)
}

func (s *switchFlag) Type() string { return "auto|on|off" }

func (s *switchFlag) Set(value string) error {
	switch mode := switchFlag(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", switchAuto:
		*s = switchAuto
	case switchOn, switchOff:
		*s = mode
	default:
		return fmt.Errorf("invalid value %q (expected auto|on|off)", value)
	}
	return nil
}

func (s switchFlag) enabled(f *os.File) bool {
	switch s {
	case switchOn:
		return true
	case switchOff:
		return false
	default:
		return isTerminal(f)
	}
}

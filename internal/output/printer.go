package output

import (
	"fmt"
	"io"
)

type Class int

const (
	Required Class = iota
	Error
	Normal
	Verbose
)

type Printer struct {
	classes    map[Class]bool
	terminal   io.Writer
	diagnosis  io.Writer
	useEscapes bool
}

// NewPrinterTo directs regular output and error output to the given writers.
func NewPrinterTo(terminal io.Writer, diagnosis io.Writer, include []Class, allowEscapes bool) (p Printer) {
	p = Printer{
		classes:    map[Class]bool{},
		terminal:   terminal,
		diagnosis:  diagnosis,
		useEscapes: allowEscapes,
	}
	for _, class := range include {
		p.classes[class] = true
	}
	return
}

func (p Printer) Out(class Class, format string, values ...interface{}) {
	if !p.classes[class] {
		return
	}
	target := &p.terminal
	if class == Error {
		target = &p.diagnosis
	}
	fmt.Fprintf(*target, format, values...)
}

// Colored applies the color only if the printer may emit escape sequences.
func (p Printer) Colored(text string, color Color) string {
	if !p.useEscapes {
		return text
	}
	return Colorize(text, color)
}

func (p Printer) Dim(text string) string {
	if !p.useEscapes {
		return text
	}
	return TerminalFormatAsDim(text)
}

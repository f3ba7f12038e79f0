package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const labelWidth = 20

// Printer writes the aligned "Label:   value" progress lines.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Field(label string, value any) {
	fmt.Fprintf(p.out, "%-*s%v\n", labelWidth, label+":", value)
}

func (p *Printer) Success(ok bool) {
	if ok {
		p.Field("Success", color.GreenString("True"))
		return
	}
	p.Field("Success", color.RedString("False"))
}

func (p *Printer) Error(label string, err error) {
	p.Field(label, color.New(color.FgRed, color.Bold).Sprint(err))
}

// RunResult prints everything a finished run reports, in workflow order.
func (p *Printer) RunResult(r *RunResult) {
	if r == nil {
		return
	}
	p.Field("Anti-CSRF-Token", r.AntiCsrfToken)
	p.Field("CSRF-Token", r.CsrfToken)
	p.Field("HTTP Status Code", r.StatusCode)
	p.Field("HTTP Response", r.Body)
	p.Success(r.AddressUpdated)
	if r.HTMLPath != "" {
		p.Field("HTML Path", r.HTMLPath)
	}
	if r.CookiePath != "" {
		p.Field("Cookies Path", r.CookiePath)
	}
}

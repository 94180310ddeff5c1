/*
main.go - Command-line payslip calculator

PURPOSE:
  Runs one calculation without a server or database. Reads a request
  document, prints the result as JSON or as a text payslip.

INPUT:
  {
    "company":  { ...provisions.Company... },   optional, embedded default otherwise
    "employee": { ...payroll.Employee... },
    "options":  { ...payroll.Options... }
  }

COMMAND-LINE FLAGS:
  -in           Request file, "-" for stdin (default)
  -provisions   Provisions YAML replacing the embedded defaults
  -format       json | text (default text)

EXAMPLES:
  payslip -in ani.json
  cat ani.json | payslip -format json
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
)

type request struct {
	Company  *provisions.Company `json:"company,omitempty"`
	Employee payroll.Employee    `json:"employee"`
	Options  payroll.Options     `json:"options"`
}

func main() {
	in := flag.String("in", "-", `request file, "-" for stdin`)
	provisionsFile := flag.String("provisions", "", "provisions YAML file")
	format := flag.String("format", "text", "output format: json or text")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*in, *provisionsFile, *format, os.Stdin, os.Stdout); err != nil {
		logger.Error("payslip failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(in, provisionsFile, format string, stdin io.Reader, out io.Writer) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("unknown format %q", format)
	}

	src := stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var req request
	if err := json.NewDecoder(src).Decode(&req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	p, err := loadProvisions(provisionsFile)
	if err != nil {
		return err
	}
	if req.Company != nil {
		p.Company = *req.Company
	}

	calc, err := payroll.New(p)
	if err != nil {
		return err
	}
	result, err := calc.Calculate(req.Employee, req.Options)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return render(out, req.Employee.Name, result)
}

func loadProvisions(file string) (provisions.Provisions, error) {
	if file == "" {
		return provisions.Default()
	}
	return provisions.LoadFile(file)
}

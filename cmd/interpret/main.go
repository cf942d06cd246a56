// Command interpret reads a language model reply from a file or stdin and
// prints its field map as JSON, a tab separated table or CSV.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"docextract/internal/export"
	"docextract/internal/interpreter"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("interpret", flag.ContinueOnError)
	format := fs.String("format", "json", "output format: json, table or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	text := string(data)

	switch *format {
	case "json":
		out, err := interpreter.ParseToFieldMap(text).Indent()
		if err != nil {
			return fmt.Errorf("formatting fields: %w", err)
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	case "table":
		for _, row := range interpreter.ParseToTableRows(text) {
			if _, err := fmt.Fprintf(stdout, "%s\t%s\n", row.Field, row.Value); err != nil {
				return err
			}
		}
		return nil
	case "csv":
		return export.WriteCSV(stdout, interpreter.ParseToTableRows(text))
	default:
		return errors.New("unknown format: " + *format)
	}
}

// Command rowpipedemo builds a small dataset, runs it through the
// Calculate->Filter algebra, and prints the result as CSV.
// It exists to exercise rowpipe as a library from outside its own test
// suites, the way a CLI collaborator described in §6 would.
package main

import (
	"fmt"
	"os"

	"github.com/rowpipe/rowpipe"
	"github.com/rowpipe/rowpipe/csvrow"
	"github.com/rowpipe/rowpipe/dataset"
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/value"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	engine := rowpipe.NewEngine(rowpipe.DefaultConfig())
	j := engine.NewJob("demo")

	colA := schema.NewColumn("A")
	colB := schema.NewColumn("B")
	cols := schema.MustNewOrderedColumnSet(colA, colB)

	rows := []schema.Row{
		schema.NewRow(cols, value.Int(1), value.Int(10)),
		schema.NewRow(cols, value.Int(2), value.Int(20)),
		schema.NewRow(cols, value.Int(3), value.Int(30)),
	}

	doubled := schema.NewColumn("Doubled")
	ds := engine.NewDataset(cols, rows).
		Calculate(dataset.CalculateMap{{
			Column: doubled,
			Expr:   expr.NewComparison(expr.NewSibling(colB), value.Multiply, expr.NewLiteral(value.Int(2))),
		}}).
		Filter(expr.NewComparison(expr.NewSibling(colA), value.GreaterThan, expr.NewLiteral(value.Int(1))))

	src, err := ds.Stream(j)
	if err != nil {
		return err
	}
	out, err := stream.DrainAll(j, src, engine.Config.WavefrontCount)
	if err != nil {
		return err
	}

	fmt.Print(csvrow.WriteRows(engine.Config.CSV, out))
	return nil
}

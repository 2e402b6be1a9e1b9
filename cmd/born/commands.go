package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/queue"
	"github.com/born-ml/dispatch/tensor"
)

func runVersion(_ []string, out io.Writer) error {
	fmt.Fprintf(out, "born dispatch %s\n", version)
	return nil
}

func runTypes(_ []string, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tTYPENUM\tKIND")
	for _, dt := range tensor.AllTypes() {
		kind := "bool"
		switch {
		case dt.IsSigned():
			kind = "signed"
		case dt.IsUnsigned():
			kind = "unsigned"
		case dt.IsFloat():
			kind = "float"
		case dt.IsComplex():
			kind = "complex"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", dt, dt, dt.Size(), dt.Typenum(), kind)
	}
	return tw.Flush()
}

func runOps(_ []string, out io.Writer) error {
	for _, sig := range tensor.Operations() {
		fmt.Fprintf(out, "%-12s arity %d\n", sig.Name(), sig.Arity())
	}
	return nil
}

func opFlag(name string, args []string) (tensor.Signature, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	op := fs.String("op", "", "operation name")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if *op == "" {
		return nil, nil, errors.New("-op is required")
	}
	sig, err := tensor.Find(*op)
	if err != nil {
		return nil, nil, err
	}
	return sig, fs.Args(), nil
}

func runTable(args []string, out io.Writer) error {
	sig, _, err := opFlag("table", args)
	if err != nil {
		return err
	}
	types := tensor.AllTypes()
	tw := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
	defer tw.Flush()

	cell := func(types ...tensor.DataType) string {
		dt, err := sig.ResultType(types...)
		if err != nil {
			return "-"
		}
		return dt.String()
	}
	if sig.Arity() == 1 {
		fmt.Fprintln(tw, "INPUT\tRESULT")
		for _, dt := range types {
			fmt.Fprintf(tw, "%s\t%s\n", dt, cell(dt))
		}
		return nil
	}

	header := make([]string, 0, len(types)+1)
	header = append(header, sig.Name())
	for _, dt := range types {
		header = append(header, dt.String())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, a := range types {
		row := []string{a.String()}
		for _, b := range types {
			row = append(row, cell(a, b))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return nil
}

func runResultType(args []string, out io.Writer) error {
	sig, names, err := opFlag("result-type", args)
	if err != nil {
		return err
	}
	types := make([]tensor.DataType, len(names))
	for i, n := range names {
		if types[i], err = tensor.ParseDataType(n); err != nil {
			return err
		}
	}
	dt, err := sig.ResultType(types...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, dt)
	return nil
}

func runInfo(_ []string, out io.Writer) error {
	cfg := queue.DefaultConfig()
	fmt.Fprintf(out, "CPU features:  %s\n", queue.DetectFeatures())
	fmt.Fprintf(out, "Workers:       %d\n", cfg.Parallel.NumWorkers)
	fmt.Fprintf(out, "Min chunk:     %d\n", cfg.Parallel.MinChunkSize)
	fmt.Fprintf(out, "Max in flight: %d\n", cfg.MaxInFlight)
	return nil
}

// runDemo scatters values into a (4, 5) array along axis 1 and gathers them back.
func runDemo(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	modeName := fs.String("mode", "wrap", "index mode: wrap or clip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mode, err := tensor.ParseMode(*modeName)
	if err != nil {
		return err
	}

	q := queue.NewDefault()
	dst, err := tensor.Zeros(q, tensor.Shape{4, 5}, tensor.Int32)
	if err != nil {
		return err
	}
	ind, err := tensor.FromSlice(q, []int64{0, 5, -1}, tensor.Shape{3})
	if err != nil {
		return err
	}
	val, err := tensor.FromSlice(q, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, tensor.Shape{4, 3})
	if err != nil {
		return err
	}
	back, err := tensor.Zeros(q, tensor.Shape{4, 3}, tensor.Int32)
	if err != nil {
		return err
	}

	_, put, err := tensor.Put(q, dst, []*tensor.RawTensor{ind}, val, 1, mode, nil)
	if err != nil {
		return err
	}
	reuse, take, err := tensor.Take(q, dst, []*tensor.RawTensor{ind}, back, 1, mode, []*queue.Event{put})
	if err != nil {
		return err
	}
	if err := queue.WaitAll(take, reuse); err != nil {
		return err
	}

	for _, r := range []struct {
		label string
		t     *tensor.RawTensor
	}{{"indices", ind}, {"array", dst}, {"taken", back}} {
		if err := printTensor(out, r.label, r.t); err != nil {
			return err
		}
	}
	return nil
}

func printTensor(out io.Writer, label string, t *tensor.RawTensor) error {
	var vals []string
	switch t.DType() {
	case tensor.Int32:
		v, err := tensor.ToSlice[int32](t)
		if err != nil {
			return err
		}
		for _, x := range v {
			vals = append(vals, fmt.Sprint(x))
		}
	case tensor.Int64:
		v, err := tensor.ToSlice[int64](t)
		if err != nil {
			return err
		}
		for _, x := range v {
			vals = append(vals, fmt.Sprint(x))
		}
	default:
		return errors.Errorf("cannot print %s", t.DType())
	}
	fmt.Fprintf(out, "%s %v: [%s]\n", label, t.Shape(), strings.Join(vals, " "))
	return nil
}

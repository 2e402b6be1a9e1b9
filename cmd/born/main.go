// Package main provides the born dispatch CLI: it inspects the type registry
// and dispatch tables and runs a small end-to-end demo.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const version = "v0.1.0-dev"

type command struct {
	name  string
	usage string
	run   func(args []string, out io.Writer) error
}

var commands = []command{
	{"version", "Show version", runVersion},
	{"types", "List data types with their ids, sizes and typenums", runTypes},
	{"ops", "List operations", runOps},
	{"table", "Print the result type of an operation for every input type (-op NAME)", runTable},
	{"result-type", "Print the result type for given inputs (-op NAME TYPE...)", runResultType},
	{"info", "Show CPU features and default queue configuration", runInfo},
	{"demo", "Run a put/take round trip (-mode wrap|clip)", runDemo},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "born dispatch - tensor type dispatch and asynchronous kernels")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w, "\nGlobal flags:")
	fmt.Fprintln(w, "  -v           Log dispatch decisions to stderr")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("born", flag.ContinueOnError)
	fs.SetOutput(errOut)
	verbose := fs.Bool("v", false, "log dispatch decisions")
	fs.Usage = func() { usage(errOut) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})))

	if fs.NArg() == 0 {
		usage(out)
		return 0
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(rest, out); err != nil {
			slog.Error("command failed", "command", name, "err", err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(errOut, "unknown command %q\n\n", name)
	usage(errOut)
	return 2
}

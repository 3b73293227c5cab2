package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/agiangrant/nativeapp"
	"github.com/agiangrant/nativeapp/internal/ffi"
)

// Check implements the 'nativeapp check' command
func Check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	libPath := fs.String("lib", "", "Path to the native_app library (default: config, then search path)")
	configPath := fs.String("config", nativeapp.ConfigFile, "Path to nativeapp.toml")
	fs.Parse(args)

	path := *libPath
	if path == "" {
		config, err := nativeapp.LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("Warning: %v, using defaults\n", err)
		} else {
			path = config.Engine.LibPath
		}
	}

	lib, err := ffi.Open(path)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	return report(os.Stdout, lib, term.IsTerminal(int(os.Stdout.Fd())))
}

// symbolSource is the part of *ffi.Library that check reports on.
type symbolSource interface {
	Path() string
	Symbols() []ffi.SymbolStatus
	ABIRevision() int
	HasDestroy() bool
}

// report prints the symbol table. Glyphs are used only on a terminal.
func report(w io.Writer, lib symbolSource, tty bool) error {
	fmt.Fprintf(w, "Library: %s\n\n", lib.Path())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tREQUIRED\tSTATUS")
	missing := 0
	for _, s := range lib.Symbols() {
		status := "ok"
		if tty {
			status = "✓"
		}
		if !s.Found {
			status = "missing"
			if s.Required {
				missing++
			}
		}
		required := "no"
		if s.Required {
			required = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, required, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if rev := lib.ABIRevision(); rev != 0 {
		fmt.Fprintf(w, "ABI revision: %s\n", nativeapp.Revision(rev))
	} else {
		fmt.Fprintln(w, "ABI revision: not reported (assuming by-value create_app)")
	}
	if !lib.HasDestroy() {
		fmt.Fprintln(w, "Warning: destroy_app not exported, instances will leak on Destroy")
	}

	if missing > 0 {
		return fmt.Errorf("%d required symbol(s) missing", missing)
	}
	return nil
}

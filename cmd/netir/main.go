package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"netir/internal/backend"
	"netir/internal/diag"
	"netir/internal/frontend"
	"netir/internal/netlist"
	"netir/internal/passes"
	"netir/internal/textir"
)

var (
	convertJSON = backend.ConvertJSON
	log         = commonlog.GetLogger("netir.cli")
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printGlobalUsage()
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "emit":
		return runEmit(args[1:])
	case "dump":
		return runDump(args[1:])
	case "lint":
		return runLint(args[1:])
	case "json":
		return runJSON(args[1:])
	default:
		printGlobalUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printGlobalUsage() {
	fmt.Fprintf(os.Stderr, "netir: netlist lowering to flat textual IR\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  netir <command> [options] <file.nl>\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  emit       Lower a netlist to text\n")
	fmt.Fprintf(os.Stderr, "  dump       Print a human-readable listing of a netlist\n")
	fmt.Fprintf(os.Stderr, "  lint       Run validation-only checks\n")
	fmt.Fprintf(os.Stderr, "  json       Lower a netlist and convert it to JSON with yosys\n")
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	diagFormat *string
	verbose    *int
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		diagFormat: fs.String("diag-format", "text", "diagnostic output format (text|json)"),
		verbose:    fs.Int("v", 0, "log verbosity (0 quiet, 1 info, 2 debug)"),
	}
}

func (c commonFlags) configureLogging() {
	commonlog.Configure(*c.verbose, nil)
}

func runEmit(args []string) error {
	fs := flag.NewFlagSet("emit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	common := addCommonFlags(fs)
	output := fs.String("o", "", "output file path (stdout when omitted)")
	noMeta := fs.Bool("no-meta", false, "omit metadata records")
	noCheck := fs.Bool("no-check", false, "skip netlist validation before emission")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("emit requires exactly one netlist file")
	}
	common.configureLogging()

	start := time.Now()
	nl, err := prepareNetlist(fs.Arg(0), *common.diagFormat, !*noCheck)
	if err != nil {
		return err
	}
	if err := textir.WriteFile(nl, *output, textir.Options{OmitMetadata: *noMeta}); err != nil {
		return err
	}
	log.Infof("lowered %d cells from %s in %s", len(nl.Cells), fs.Arg(0), time.Since(start))
	if *output != "" && *output != "-" {
		color.New(color.FgGreen).Fprintf(os.Stderr, "wrote %s\n", *output)
	}
	return nil
}

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	common := addCommonFlags(fs)
	output := fs.String("o", "", "output file path (stdout when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("dump requires exactly one netlist file")
	}
	common.configureLogging()

	nl, err := prepareNetlist(fs.Arg(0), *common.diagFormat, false)
	if err != nil {
		return err
	}
	return withOutput(*output, func(w io.Writer) error {
		netlist.Dump(nl, w)
		return nil
	})
}

func runLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("lint requires at least one netlist file")
	}
	common.configureLogging()

	failed := 0
	for _, path := range fs.Args() {
		if _, err := prepareNetlist(path, *common.diagFormat, true); err != nil {
			log.Debugf("%s: %v", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d netlists failed validation", failed, fs.NArg())
	}
	return nil
}

func runJSON(args []string) error {
	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	common := addCommonFlags(fs)
	output := fs.String("o", "", "output file path (stdout when omitted)")
	yosys := fs.String("yosys", "", "path to yosys (optional, falls back to PATH lookup)")
	readCmd := fs.String("read-command", "", "yosys command that reads the embedded text (default read_rtlil)")
	extraPasses := fs.String("passes", "", "semicolon-separated yosys passes to run before write_json")
	scriptOut := fs.String("script-out", "", "path to dump the yosys script (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("json requires exactly one netlist file")
	}
	common.configureLogging()

	nl, err := prepareNetlist(fs.Arg(0), *common.diagFormat, true)
	if err != nil {
		return err
	}
	opts := backend.Options{
		YosysPath:      *yosys,
		ReadCommand:    *readCmd,
		ExtraPasses:    splitPasses(*extraPasses),
		DumpScriptPath: *scriptOut,
	}
	res, err := convertJSON(nl, opts)
	if err != nil {
		return err
	}
	return withOutput(*output, func(w io.Writer) error {
		_, err := w.Write(res.JSON)
		return err
	})
}

func splitPasses(raw string) []string {
	var result []string
	for _, p := range strings.Split(raw, ";") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// prepareNetlist loads path and, when check is set, runs the default passes.
func prepareNetlist(path, diagFormat string, check bool) (*netlist.Netlist, error) {
	reporter := diag.NewReporter(os.Stderr, diagFormat)
	nl, err := frontend.Load(frontend.LoadConfig{Path: path}, reporter)
	if err != nil {
		return nil, err
	}
	if !check {
		return nl, nil
	}
	if err := runDefaultPasses(nl, reporter); err != nil {
		return nil, err
	}
	return nl, nil
}

func runDefaultPasses(nl *netlist.Netlist, reporter *diag.Reporter) error {
	passMgr := passes.NewManager()
	passMgr.Add(passes.NewNetlistCheck(reporter))
	if err := passMgr.Run(nl); err != nil {
		return err
	}
	if reporter != nil && reporter.HasErrors() {
		return fmt.Errorf("analysis passes reported errors")
	}
	return nil
}

func withOutput(path string, fn func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shorekits/pkg/concurrency/lock"
	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/debug/ui"
	dberr "shorekits/pkg/error"
	"shorekits/pkg/logging"
	"shorekits/pkg/workload"
)

const usage = `usage: shorekits [-log-level LEVEL] [-log-format text|json] COMMAND [ARGS]

commands:
  tables               print the element lock mode tables
  show MODE            print every slot of a lock mode
  compat REQ GRANTED   check whether REQ may be granted while GRANTED is held
  implies SUB SUPER    check whether SUPER already grants SUB
  combine A B          print the combined mode
  partid BYTES         print the partition a uniquefier hashes to
  workload [-config FILE] [-json]
                       run the synthetic lock workload

Modes are element names (N, IS, IX, S, SIX, X) or full lock modes such as
"<key_1=X>,<key_*=IX>,<gap=N>".
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("shorekits", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	logLevel := fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "text", "Log format (text or json)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return usageError(err.Error())
	}
	if err := logging.Init(logging.Config{Level: level, Format: *logFormat}); err != nil {
		return err
	}
	defer logging.Close()

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "tables":
		fmt.Fprintln(out, ui.RenderTables())
		return nil
	case "show":
		return runShow(cmdArgs, out)
	case "compat", "implies", "combine":
		return runBinary(cmd, cmdArgs, out)
	case "partid":
		return runPartID(cmdArgs, out)
	case "workload":
		return runWorkload(ctx, cmdArgs, out)
	case "help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

// parseModeArg accepts an element mode name, which is taken as a key lock,
// or the full lock mode syntax.
func parseModeArg(s string) (okvl.LockMode, error) {
	if !strings.Contains(s, "<") {
		m, err := okvl.ParseElementLockMode(s)
		if err != nil {
			return okvl.LockMode{}, err
		}
		return okvl.FromKeyGap(m, okvl.N), nil
	}
	return okvl.ParseLockMode(s)
}

func parseElementPair(args []string) (okvl.ElementLockMode, okvl.ElementLockMode, bool) {
	if strings.Contains(args[0], "<") || strings.Contains(args[1], "<") {
		return 0, 0, false
	}
	a, errA := okvl.ParseElementLockMode(args[0])
	b, errB := okvl.ParseElementLockMode(args[1])
	return a, b, errA == nil && errB == nil
}

func runShow(args []string, out io.Writer) error {
	if len(args) != 1 {
		return usageError("show takes exactly one mode")
	}
	lm, err := parseModeArg(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.RenderTitle("🔒", lm.String()))
	fmt.Fprint(out, ui.RenderLockMode(lm))
	if err := lm.Validate(); err != nil {
		fmt.Fprintln(out, ui.RenderError(err))
	}
	return nil
}

func runBinary(cmd string, args []string, out io.Writer) error {
	if len(args) != 2 {
		return usageError(cmd + " takes exactly two modes")
	}

	if a, b, ok := parseElementPair(args); ok {
		switch cmd {
		case "compat":
			fmt.Fprintln(out, verdict(okvl.Compatible(a, b)))
		case "implies":
			fmt.Fprintln(out, verdict(okvl.ImpliedBy(a, b)))
		case "combine":
			fmt.Fprintln(out, okvl.CombineElements(a, b))
		}
		return nil
	}

	a, err := parseModeArg(args[0])
	if err != nil {
		return err
	}
	b, err := parseModeArg(args[1])
	if err != nil {
		return err
	}

	switch cmd {
	case "compat":
		fmt.Fprintln(out, verdict(okvl.IsCompatible(a, b)))
	case "implies":
		fmt.Fprintln(out, verdict(a.IsImpliedBy(b)))
	case "combine":
		fmt.Fprintln(out, okvl.Combine(a, b))
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return ui.SuccessStyle.Render("yes")
	}
	return lipgloss.NewStyle().Foreground(ui.ErrorColor).Bold(true).Padding(0, 1).Render("no")
}

func runPartID(args []string, out io.Writer) error {
	if len(args) != 1 {
		return usageError("partid takes exactly one uniquefier")
	}
	id := okvl.ComputePartID([]byte(args[0]))
	fmt.Fprintf(out, "%d\n", id)
	return nil
}

func runWorkload(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("workload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "TOML workload configuration")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	cfg := workload.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = workload.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	report, err := workload.Run(ctx, cfg, lock.NewLockManager())
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	occupancy := make([]string, len(report.PartitionOccupancy))
	for i, n := range report.PartitionOccupancy {
		occupancy[i] = fmt.Sprintf("p%d=%d", i, n)
	}
	fmt.Fprintln(out, ui.RenderDetails("Workload report", []ui.KeyValue{
		{Label: "workers", Value: fmt.Sprint(report.Workers)},
		{Label: "committed", Value: fmt.Sprint(report.Committed)},
		{Label: "aborted", Value: fmt.Sprintf("%d (%.2f%%)", report.Aborted, 100*report.AbortRate())},
		{Label: "grants", Value: fmt.Sprint(report.Grants)},
		{Label: "conflicts", Value: fmt.Sprint(report.Conflicts)},
		{Label: "read-only commits", Value: fmt.Sprint(report.ReadOnlyCommits)},
		{Label: "partitions", Value: strings.Join(occupancy, " ")},
		{Label: "duration", Value: report.Duration.String()},
		{Label: "throughput", Value: fmt.Sprintf("%.0f txn/s", report.Throughput)},
	}))
	return nil
}

func usageError(detail string) *dberr.DBError {
	err := dberr.New(dberr.ErrCategoryUser, dberr.CodeInvalidRequest, "invalid command line")
	err.Detail = detail
	err.Hint = "run shorekits help for usage"
	return err
}

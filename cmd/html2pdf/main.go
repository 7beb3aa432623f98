package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdConvert = "convert"
	cmdDoctor  = "doctor"
	cmdInstall = "install"
	cmdVersion = "version"
	cmdHelp    = "help"
)

var commands = []string{cmdConvert, cmdDoctor, cmdInstall, cmdVersion, cmdHelp}

func main() {
	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	log := zap.NewNop()
	if verboseRequested(os.Args) {
		if l, err := logger.New(logger.Config{Level: "debug", Format: logger.FormatConsole}, os.Stderr); err == nil {
			log = l
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf))
	_ = log.Sync()

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// A first argument that is not a command starts a conversion.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch {
	case cmd == "-h" || cmd == "--help":
		cmd = cmdHelp
	case !isCommand(cmd):
		if !strings.HasPrefix(cmd, "-") && !looksLikeHTML(cmd) {
			fmt.Fprintf(env.Stderr, "%v: %s\n\n", ErrUnknownCommand, cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
		cmd, rest = cmdConvert, args[1:]
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	switch cmd {
	case cmdConvert:
		return runConvertCmd(ctx, rest, env)
	case cmdDoctor:
		return runDoctorCmd(ctx, rest, env)
	case cmdInstall:
		return runInstallCmd(ctx, rest, env)
	case cmdVersion:
		fmt.Fprintf(env.Stdout, "html2pdf %s\n", Version)
		return ExitSuccess
	default:
		return runHelp(rest, env)
	}
}

// runConvertCmd parses convert flags, runs the conversion and maps the
// error to an exit code.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, func() { printConvertUsage(env.Stdout) })
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'html2pdf help convert' for usage.")
		return ExitUsage
	}

	return printError(env.Stderr, runConvert(ctx, positional, flags, env))
}

// runHelp prints help for the requested command.
func runHelp(args []string, env *Environment) int {
	command := ""
	if len(args) > 0 {
		command = args[0]
	}
	if !printHelp(command, env.Stdout) {
		fmt.Fprintf(env.Stderr, "%v: %s\n\n", ErrUnknownCommand, command)
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

// printError prints err with an actionable hint and returns its exit code.
// When every backend failed, the per-attempt details were already reported.
func printError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	code := exitCodeFor(err)
	switch code {
	case ExitMissingInput:
		fmt.Fprintf(w, "error: %v%s\n", firstLine(err), hints.ForMissingInput())
	case ExitAllFailed:
		fmt.Fprintf(w, "error: %v\n", html2pdf.ErrAllBackendsFailed)
	default:
		hint := ""
		var notFound *config.NotFoundError
		if errors.As(err, &notFound) {
			hint = hints.ForConfigNotFound(notFound.Tried)
		}
		fmt.Fprintf(w, "error: %v%s\n", err, hint)
	}
	return code
}

// firstLine returns the most specific line of an error built with
// errors.Join: the first attempt error after the aggregate sentinel.
func firstLine(err error) string {
	lines := strings.Split(err.Error(), "\n")
	for _, line := range lines {
		if line != html2pdf.ErrAllBackendsFailed.Error() {
			return line
		}
	}
	return lines[0]
}

// isCommand reports whether arg names a command. Matching is case sensitive.
func isCommand(arg string) bool {
	return slices.Contains(commands, arg)
}

// looksLikeHTML reports whether arg is an HTML file path.
func looksLikeHTML(arg string) bool {
	ext := filepath.Ext(arg)
	return strings.EqualFold(ext, ".html") || strings.EqualFold(ext, ".htm")
}

// verboseRequested scans raw args for -v/--verbose before flags are parsed.
func verboseRequested(args []string) bool {
	return slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
}

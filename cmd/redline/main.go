// Package main is the entry point for the redline CLI, which replays
// an edit script over an HTML document and prints the result.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/redline/internal/app"
	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/event/events"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	ConfigPath string
	ScriptPath string
	InputPath  string
	Tracked    bool
	Verbose    bool
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logCfg := app.DefaultLoggerConfig()
	logCfg.Level = app.ParseLogLevel(cfg.LogLevel)
	if opts.Verbose {
		logCfg.Level = app.LogLevelDebug
	}
	logger := app.NewLogger(logCfg)

	editor := app.New(cfg, app.WithLogger(logger))

	if opts.InputPath != "" {
		data, err := os.ReadFile(opts.InputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", opts.InputPath, err)
			return 1
		}
		if err := editor.LoadHTML(string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.ScriptPath != "" {
		f, err := os.Open(opts.ScriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening %s: %v\n", opts.ScriptPath, err)
			return 1
		}
		defer f.Close()
		if err := replay(editor, logger, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.Tracked {
		fmt.Println(editor.TrackedHTML())
	} else {
		fmt.Println(editor.CleanHTML())
	}
	return 0
}

// replay executes one script command per line. Blank lines and lines
// starting with # are skipped.
func replay(editor *app.Editor, logger *app.Logger, src *os.File) error {
	ctx := context.Background()
	scanner := bufio.NewScanner(src)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runCommand(ctx, editor, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		logger.Debug("ran %q", line)
	}
	return scanner.Err()
}

// runCommand executes one script command.
func runCommand(ctx context.Context, editor *app.Editor, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")

	switch cmd {
	case "type":
		// One event per grapheme would match real keystrokes, but the
		// insert pipeline coalesces either way.
		for _, r := range rest {
			editor.HandleEvent(ctx, events.InsertText{Text: string(r)})
		}
	case "break":
		editor.HandleEvent(ctx, events.InsertBreak{})
	case "para":
		editor.HandleEvent(ctx, events.InsertParagraph{})
	case "backspace":
		editor.HandleEvent(ctx, events.DeleteContent{Direction: events.Backward, Unit: events.UnitCharacter})
	case "delete":
		editor.HandleEvent(ctx, events.DeleteContent{Direction: events.Forward, Unit: events.UnitCharacter})
	case "backspace-word":
		editor.HandleEvent(ctx, events.DeleteContent{Direction: events.Backward, Unit: events.UnitWord})
	case "delete-word":
		editor.HandleEvent(ctx, events.DeleteContent{Direction: events.Forward, Unit: events.UnitWord})
	case "paste":
		editor.HandleEvent(ctx, events.Paste{Text: rest})
	case "cut":
		editor.HandleEvent(ctx, events.Cut{})
	case "caret":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("caret: %w", err)
		}
		return moveCaret(editor, n, n)
	case "select":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return fmt.Errorf("select wants two offsets, got %q", rest)
		}
		s, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		e, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		return moveCaret(editor, s, e)
	case "undo":
		editor.Undo()
	case "redo":
		editor.Redo()
	case "accept":
		if rest == "" {
			editor.AcceptAtCursor()
		} else {
			editor.AcceptChange(rest)
		}
	case "reject":
		if rest == "" {
			editor.RejectAtCursor()
		} else {
			editor.RejectChange(rest)
		}
	case "accept-all":
		editor.AcceptAll()
	case "reject-all":
		editor.RejectAll()
	case "user":
		id, name, _ := strings.Cut(rest, " ")
		if id == "" {
			return fmt.Errorf("user wants an id")
		}
		if name == "" {
			name = id
		}
		editor.Tracking().SetUser(id, name)
	case "track":
		switch rest {
		case "on":
			editor.Tracking().SetEnabled(true)
		case "off":
			editor.Tracking().SetEnabled(false)
		default:
			return fmt.Errorf("track wants on or off, got %q", rest)
		}
	case "pending":
		for _, rec := range editor.PendingChanges() {
			fmt.Printf("%s\t%s\t%s\t%q\n", rec.ID, rec.Kind, rec.UserName, rec.Summary)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// moveCaret places the selection at rune offsets into the visible text.
func moveCaret(editor *app.Editor, start, end int) error {
	doc := editor.Document()
	editor.History().NoteNavigation()
	doc.SetSelection(dom.Selection{
		Start: dom.ResolveOffset(doc.Root(), start),
		End:   dom.ResolveOffset(doc.Root(), end),
	})
	return nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Path to edit script to replay")
	flag.StringVar(&opts.ScriptPath, "s", "", "Path to edit script (shorthand)")
	flag.BoolVar(&opts.Tracked, "tracked", false, "Print tracked markup instead of clean output")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help")
	flag.Parse()

	if showVersion {
		fmt.Printf("redline %s (commit %s, built %s)\n", version, commit, date)
		os.Exit(0)
	}
	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		opts.InputPath = flag.Arg(0)
	}
	return opts
}

func printHelp() {
	fmt.Println(`redline - change-tracking rich text engine

Usage: redline [options] [input.html]

Options:
  -config, -c PATH   Configuration file
  -script, -s PATH   Edit script to replay over the document
  -tracked           Print tracked markup instead of clean output
  -verbose           Enable debug logging
  -version           Show version information
  -help              Show this help

Script commands (one per line, # comments):
  type TEXT          Type text at the caret
  break              Insert a line break
  para               Split the current list item
  backspace | delete Delete one character
  backspace-word | delete-word
  paste TEXT         Paste plain text
  cut                Cut the selection
  caret N            Place the caret at rune offset N
  select A B         Select rune offsets A..B
  undo | redo
  accept [ID] | reject [ID] | accept-all | reject-all
  user ID [NAME]     Switch the local author
  track on|off       Toggle change tracking
  pending            List unresolved changes`)
}

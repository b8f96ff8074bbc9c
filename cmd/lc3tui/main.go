// Command lc3tui is a read-only text-mode inspector for LC-3 assembly
// source. It shows the raw source, the lexeme stream the lexer
// produces, and any diagnostics the parser/assembler report, side by
// side. It never loads a program into memory or executes it - there is
// no CPU here, only the front half of the assembler.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/lc3asm/combinator"
	"github.com/lookbusy1344/lc3asm/config"
	"github.com/lookbusy1344/lc3asm/encoder"
	"github.com/lookbusy1344/lc3asm/parser"
)

// Inspector is the text user interface for viewing one source file's
// lex/parse/assemble results. Unlike a debugger TUI it holds no
// execution state: there is no PC, no registers, nothing to step.
type Inspector struct {
	App  *tview.Application
	Flex *tview.Flex

	SourceView      *tview.TextView
	LexemeView      *tview.TextView
	DiagnosticsView *tview.TextView

	file   string
	source string
}

// NewInspector builds an Inspector over file's contents.
func NewInspector(file, source string) *Inspector {
	ins := &Inspector{
		App:    tview.NewApplication(),
		file:   file,
		source: source,
	}
	ins.initializeViews()
	ins.buildLayout()
	ins.setupKeyBindings()
	return ins
}

func (ins *Inspector) initializeViews() {
	ins.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	ins.SourceView.SetBorder(true).SetTitle(" Source ")

	ins.LexemeView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	ins.LexemeView.SetBorder(true).SetTitle(" Lexemes ")

	ins.DiagnosticsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	ins.DiagnosticsView.SetBorder(true).SetTitle(" Diagnostics ")
}

func (ins *Inspector) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ins.SourceView, 0, 2, false).
		AddItem(ins.LexemeView, 0, 1, false)

	ins.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 4, false).
		AddItem(ins.DiagnosticsView, 10, 0, false)
}

func (ins *Inspector) setupKeyBindings() {
	ins.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			ins.App.Stop()
			return nil
		case tcell.KeyEscape:
			ins.App.Stop()
			return nil
		}
		if event.Rune() == 'q' {
			ins.App.Stop()
			return nil
		}
		return event
	})
}

// Refresh re-runs the lexer/parser/assembler pipeline over the current
// source and repopulates every panel. It performs no assembly output
// or execution - purely inspection.
func (ins *Inspector) Refresh(cfg *config.Config) {
	ins.updateSourceView()
	ins.updateLexemeView()
	ins.updateDiagnosticsView(cfg)
}

// escapeTags prevents a literal "[" in source text from being
// misread as a tview color/region tag.
func escapeTags(s string) string {
	return strings.ReplaceAll(s, "[", "[[")
}

func (ins *Inspector) updateSourceView() {
	lines := strings.Split(ins.source, "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "[yellow]%4d[white] %s\n", i+1, escapeTags(line))
	}
	ins.SourceView.SetText(sb.String())
}

func (ins *Inspector) updateLexemeView() {
	toks, err := parser.Lex(ins.source)

	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(describeLexeme(tok))
		sb.WriteString("\n")
	}
	if err != nil {
		fmt.Fprintf(&sb, "[red]%v[white]\n", err)
	}
	ins.LexemeView.SetText(sb.String())
}

func describeLexeme(tok combinator.Token[parser.Lexeme]) string {
	switch v := tok.Value.(type) {
	case parser.Word:
		return fmt.Sprintf("[green]WORD[white]      %s", v.Text)
	case parser.DotWord:
		return fmt.Sprintf("[green]DIRECTIVE[white] %s", v.Text)
	case parser.Integer:
		return fmt.Sprintf("[green]INTEGER[white]   %d", v.Value)
	case parser.StringLit:
		return fmt.Sprintf("[green]STRING[white]    %q", v.Text)
	case parser.CharLit:
		return fmt.Sprintf("[green]CHAR[white]      %q", v.Text)
	case parser.Newline:
		return fmt.Sprintf("[blue]NEWLINE[white]   (x%d)", v.Count)
	case parser.Comment:
		return fmt.Sprintf("[gray]COMMENT[white]   ; %s", v.Text)
	case parser.InvalidLexeme:
		return fmt.Sprintf("[red]INVALID[white]   %q", v.Text)
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (ins *Inspector) updateDiagnosticsView(cfg *config.Config) {
	index := parser.NewLineIndex(ins.source)
	_, _, err := encoder.PreAssemble(ins.source, cfg)
	if err == nil {
		ins.DiagnosticsView.SetText("[green]no errors[white]")
		return
	}

	var sb strings.Builder
	switch e := err.(type) {
	case *parser.Error:
		pos := index.Resolve(e.Span.Start)
		fmt.Fprintf(&sb, "[red]%s[white]: %s\n", pos, e.Message)
	case *parser.ErrorList:
		for _, sub := range e.Errors {
			pos := index.Resolve(sub.Span.Start)
			fmt.Fprintf(&sb, "[red]%s[white]: %s\n", pos, sub.Message)
		}
	default:
		fmt.Fprintf(&sb, "[red]%v[white]\n", err)
	}
	ins.DiagnosticsView.SetText(sb.String())
}

// Run starts the inspector's event loop.
func (ins *Inspector) Run() error {
	return ins.App.SetRoot(ins.Flex, true).Run()
}

func main() {
	configFile := flag.String("config", "", "Path to a TOML memory/trap configuration (default: built-in layout)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: lc3tui [-config file] <source.asm>")
		os.Exit(1)
	}

	file := flag.Arg(0)
	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", file, err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadFrom(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", *configFile, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ins := NewInspector(file, string(source))
	ins.Refresh(cfg)

	if err := ins.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running inspector: %v\n", err)
		os.Exit(1)
	}
}

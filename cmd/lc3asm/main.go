// Command lc3asm assembles LC-3 assembly source into a flat object
// image. It is a thin driver around the parser and encoder packages:
// every parsing and encoding decision lives there, not here.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flag"

	"github.com/lookbusy1344/lc3asm/config"
	"github.com/lookbusy1344/lc3asm/encoder"
	"github.com/lookbusy1344/lc3asm/parser"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		outFile     = flag.String("o", "", "Output object file (default: <input>.obj)")
		configFile  = flag.String("config", "", "Path to a TOML memory/trap configuration (default: built-in layout)")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump the symbol table and exit without writing an object file")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("lc3asm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	asmFile := flag.Arg(0)
	source, err := os.ReadFile(asmFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", asmFile, err)
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

	if *verboseMode {
		fmt.Printf("Assembling %s\n", asmFile)
	}

	if *dumpSymbols {
		_, table, err := encoder.PreAssemble(string(source), cfg)
		if err != nil {
			printDiagnostic(asmFile, string(source), err)
			os.Exit(1)
		}
		if err := dumpSymbolTable(table, *symbolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	image, err := encoder.Assemble(string(source), cfg)
	if err != nil {
		printDiagnostic(asmFile, string(source), err)
		os.Exit(1)
	}

	dest := *outFile
	if dest == "" {
		ext := filepath.Ext(asmFile)
		dest = strings.TrimSuffix(asmFile, ext) + ".obj"
	}
	if err := os.WriteFile(dest, image, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", dest, err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Wrote %d bytes to %s\n", len(image), dest)
	}
}

// printDiagnostic renders an assembler error with a line:column
// location resolved against the original source, falling back to a
// bare error message for anything that isn't a *parser.Error or
// *parser.ErrorList.
func printDiagnostic(file, source string, err error) {
	index := parser.NewLineIndex(source)

	switch e := err.(type) {
	case *parser.Error:
		pos := index.Resolve(e.Span.Start)
		fmt.Fprintf(os.Stderr, "%s:%s: %s\n", file, pos, e.Message)
	case *parser.ErrorList:
		for _, sub := range e.Errors {
			pos := index.Resolve(sub.Span.Start)
			fmt.Fprintf(os.Stderr, "%s:%s: %s\n", file, pos, sub.Message)
		}
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
	}
}

// dumpSymbolTable writes every bound label and its address, sorted by
// address, to filename (or stdout if filename is empty).
func dumpSymbolTable(table *parser.SymbolTable, filename string) error {
	var sb strings.Builder
	for _, entry := range table.All() {
		fmt.Fprintf(&sb, "%-32s x%04X\n", entry.Label.Text, entry.Addr.Value)
	}

	if filename == "" {
		fmt.Print(sb.String())
		return nil
	}
	return os.WriteFile(filename, []byte(sb.String()), 0o644)
}

func printHelp() {
	fmt.Println(`lc3asm - LC-3 assembler

Usage:
  lc3asm [flags] <source.asm>

Flags:
  -o <file>          Output object file (default: <input>.obj)
  -config <file>     TOML memory/trap configuration (default: built-in layout)
  -dump-symbols      Print the symbol table and exit
  -symbols-file <f>  Write the symbol dump to a file instead of stdout
  -verbose           Print progress as the file is assembled
  -version           Show version information
  -help              Show this message

lc3asm performs a two-pass assemble: the first pass assigns every
statement an address and builds the symbol table, the second resolves
labels to PC-relative offsets and encodes each instruction. Diagnostics
are reported as <file>:<line>:<column>: <message>.`)
}

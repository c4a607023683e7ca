package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: livemd <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Convert markdown to HTML")
	fmt.Fprintln(w, "  serve       Run the live editor")
	fmt.Fprintln(w, "  export      Export markdown to PDF or standalone HTML")
	fmt.Fprintln(w, "  doctor      Check the serve and export setup")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'livemd help <command>' for details on a specific command.")
}

func printEngineUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --engine <s>          Engine: pattern, goldmark")
	fmt.Fprintln(w, "      --shield-code         Keep code content away from markup rules")
	fmt.Fprintln(w, "      --highlight <style>   Chroma style for fenced code (e.g., github)")
	fmt.Fprintln(w)
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: livemd render [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown to an HTML fragment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file (default stdin, or \"-\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w, "      --standalone          Write a complete HTML document")
	fmt.Fprintln(w, "      --title <s>           Document title (default: file name)")
	fmt.Fprintln(w, "      --css <path>          CSS file embedded with --standalone")
	fmt.Fprintln(w)
	printEngineUsage(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: livemd serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the live editor. Stop with Ctrl+C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default :8080)")
	fmt.Fprintln(w, "      --store <dsn>         State store: memory://, file://path.yaml, sqlite://path.db")
	fmt.Fprintln(w, "      --assets <dir>        Directory overriding editor.html, editor.js, editor.css, light.css, dark.css")
	fmt.Fprintln(w, "      --title <s>           Editor page title")
	fmt.Fprintln(w)
	printEngineUsage(w)
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: livemd export <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a markdown file to PDF using headless Chrome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input with .pdf)")
	fmt.Fprintln(w, "      --html                Write standalone HTML instead of PDF")
	fmt.Fprintln(w, "      --title <s>           Document title (default: file name)")
	fmt.Fprintln(w, "      --css <path>          External CSS file")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	printEngineUsage(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: livemd doctor [--addr addr] [--store dsn] [-c config] [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that the config loads, the serve address can be bound, the store")
		fmt.Fprintln(env.Stdout, "is readable, and Chrome plus a writable temp directory are there for export.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: livemd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: livemd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: umt <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  parse      Print the tree of a document, then its serialization")
	fmt.Fprintln(w, "  convert    Convert documents to another type")
	fmt.Fprintln(w, "  diff       Show what a parse and serialize round trip changes")
	fmt.Fprintln(w, "  types      List parseable types and their targets")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'umt help <command>' for details on a specific command.")
}

// printTreeFlags prints the flags shared by parse, convert and diff.
func printTreeFlags(w io.Writer) {
	fmt.Fprintln(w, "Types:")
	fmt.Fprintln(w, "  -f, --from <type>         Input type or extension (default: detected)")
	fmt.Fprintln(w, "  -t, --to <type>           Output type or extension (default: input type)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Plugins:")
	fmt.Fprintln(w, "      --id                  Assign an id to every node")
	fmt.Fprintln(w, "      --text                Attach plain-text trees to markdown text")
	fmt.Fprintln(w, "      --sanitize            Sanitize HTML output")
	fmt.Fprintln(w, "      --indent <n>          JSON/XML indentation in spaces (0 = default)")
	fmt.Fprintln(w, "      --filter <expr>       Drop nodes (and their subtrees) where expr is false")
	fmt.Fprintln(w, "                            Fields: type, mimeType, depth, children, leaf, data, attrs")
	fmt.Fprintln(w, "                            Example: type != \"html\" && depth < 4")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Crawling:")
	fmt.Fprintln(w, "      --crawl               Fetch linked documents and attach them")
	fmt.Fprintln(w, "      --max-depth <n>       Deepest document whose links are followed (default 1)")
	fmt.Fprintln(w, "      --allow-domain <d>    Only follow links to these domains (repeatable)")
	fmt.Fprintln(w, "      --block-domain <d>    Never follow links to these domains (repeatable)")
	fmt.Fprintln(w, "      --current-domain      Only follow links on the input URL's domain")
	fmt.Fprintln(w, "      --render              Fetch through a headless browser")
	fmt.Fprintln(w, "      --timeout <d>         Per-request timeout (e.g., 5s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "      --images              Download remote images into the blob store")
	fmt.Fprintln(w, "      --store <s>           Blob store: fs, sqlite")
	fmt.Fprintln(w, "      --store-dir <path>    Directory of the fs store (default images)")
	fmt.Fprintln(w, "      --store-db <path>     Database of the sqlite store (default umt-blobs.db)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "      --no-color            Disable colored output (also NO_COLOR)")
	fmt.Fprintln(w, "      --trace               Print trace spans to stderr")
}

// printParseUsage prints usage for the parse command.
func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: umt parse [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the tree of a document, then its serialization.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    File, URL, or - for stdin (default: stdin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dump:")
	fmt.Fprintln(w, "      --format <s>          Tree format: tree, yaml, none (default tree)")
	fmt.Fprintln(w)
	printTreeFlags(w)
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: umt convert [inputs...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert documents to another type.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  inputs   Files, directories, URLs, or - for stdin (default: stdin)")
	fmt.Fprintln(w, "           Without --output, results are written to stdout in input order")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	printTreeFlags(w)
}

// printDiffUsage prints usage for the diff command.
func printDiffUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: umt diff [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse a document, serialize it back to its own type and print the")
	fmt.Fprintln(w, "lines that changed. Exits 1 when the round trip differs.")
	fmt.Fprintln(w)
	printTreeFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "parse":
		printParseUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "diff":
		printDiffUsage(env.Stdout)
	case "types":
		fmt.Fprintln(env.Stdout, "Usage: umt types")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List parseable types and the types each serializes to.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: umt version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: umt help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}

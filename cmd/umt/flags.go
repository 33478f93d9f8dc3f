package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
	trace   bool
}

// typeFlags selects the input and output mime types.
type typeFlags struct {
	from string
	to   string
}

// pluginFlags toggles the optional plugins and their output options.
type pluginFlags struct {
	id       bool
	text     bool
	sanitize bool
	indent   int
	filter   string
}

// crawlFlags holds link crawling flags.
type crawlFlags struct {
	enabled       bool
	render        bool
	currentDomain bool
	allow         []string
	block         []string
	maxDepth      int
	timeout       time.Duration
}

// imageFlags holds image download flags.
type imageFlags struct {
	enabled bool
	store   string
	dir     string
	db      string
}

// treeFlags holds every flag that shapes how a document is parsed.
type treeFlags struct {
	common  commonFlags
	types   typeFlags
	plugins pluginFlags
	crawl   crawlFlags
	images  imageFlags

	// set records which flags appeared on the command line, so that unset
	// flags leave config and environment values alone.
	set map[string]bool
}

// parseFlags holds flags for the parse command.
type parseFlags struct {
	treeFlags
	format string
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	treeFlags
	output  string
	workers int
}

// diffFlags holds flags for the diff command.
type diffFlags struct {
	treeFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&f.trace, "trace", false, "print trace spans to stderr")
}

// addTypeFlags adds input/output type flags to a FlagSet.
func addTypeFlags(fs *flag.FlagSet, f *typeFlags) {
	fs.StringVarP(&f.from, "from", "f", "", "input type or extension (default: detected)")
	fs.StringVarP(&f.to, "to", "t", "", "output type or extension (default: input type)")
}

// addPluginFlags adds plugin toggles to a FlagSet.
func addPluginFlags(fs *flag.FlagSet, f *pluginFlags) {
	fs.BoolVar(&f.id, "id", false, "assign an id to every node")
	fs.BoolVar(&f.text, "text", false, "attach plain-text trees to markdown text")
	fs.BoolVar(&f.sanitize, "sanitize", false, "sanitize HTML output")
	fs.IntVar(&f.indent, "indent", 0, "JSON indentation in spaces (0 = compact)")
	fs.StringVar(&f.filter, "filter", "", "keep only nodes matching an expression")
}

// addCrawlFlags adds link crawling flags to a FlagSet.
func addCrawlFlags(fs *flag.FlagSet, f *crawlFlags) {
	fs.BoolVar(&f.enabled, "crawl", false, "fetch linked documents and attach them")
	fs.BoolVar(&f.render, "render", false, "fetch through a headless browser")
	fs.BoolVar(&f.currentDomain, "current-domain", false, "only follow links on the input's domain")
	fs.StringSliceVar(&f.allow, "allow-domain", nil, "only follow links to these domains")
	fs.StringSliceVar(&f.block, "block-domain", nil, "never follow links to these domains")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "deepest document whose links are followed")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-request fetch timeout (e.g., 5s)")
}

// addImageFlags adds image download flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.BoolVar(&f.enabled, "images", false, "download remote images into the blob store")
	fs.StringVar(&f.store, "store", "", "blob store: fs, sqlite")
	fs.StringVar(&f.dir, "store-dir", "", "directory of the fs blob store")
	fs.StringVar(&f.db, "store-db", "", "database of the sqlite blob store")
}

// addTreeFlags adds every tree-shaping flag group.
func addTreeFlags(fs *flag.FlagSet, f *treeFlags) {
	addCommonFlags(fs, &f.common)
	addTypeFlags(fs, &f.types)
	addPluginFlags(fs, &f.plugins)
	addCrawlFlags(fs, &f.crawl)
	addImageFlags(fs, &f.images)
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	fs.SortFlags = false
	return fs
}

// finish parses args and records which flags were set.
func finish(fs *flag.FlagSet, f *treeFlags, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return fs.Args(), nil
}

func parseParseFlags(args []string, w io.Writer) (*parseFlags, []string, error) {
	f := &parseFlags{}
	fs := newFlagSet("parse", w, printParseUsage)
	addTreeFlags(fs, &f.treeFlags)
	fs.StringVar(&f.format, "format", formatTree, "tree dump format: tree, yaml, none")

	positional, err := finish(fs, &f.treeFlags, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newFlagSet("convert", w, printConvertUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addTreeFlags(fs, &f.treeFlags)

	positional, err := finish(fs, &f.treeFlags, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

func parseDiffFlags(args []string, w io.Writer) (*diffFlags, []string, error) {
	f := &diffFlags{}
	fs := newFlagSet("diff", w, printDiffUsage)
	addTreeFlags(fs, &f.treeFlags)

	positional, err := finish(fs, &f.treeFlags, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

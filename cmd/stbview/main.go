// Command stbview reads ST-Bridge structural model files. It prints the
// extracted model, resolves member endpoints, queries the raw XML and serves
// the viewer's IPC API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/samber/lo"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/rebar"
	"github.com/FocuswithJustin/stbview/core/source"
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/stb/extract"
	"github.com/FocuswithJustin/stbview/core/xml"
	"github.com/FocuswithJustin/stbview/internal/api"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

const version = "0.1.0"

// stdout receives command output. Logs go to stderr.
var stdout io.Writer = os.Stdout

// createFile opens --out destinations.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// CLI defines the command-line interface for stbview.
type CLI struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"STBVIEW_LOG_LEVEL" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text" env:"STBVIEW_LOG_FORMAT" enum:"json,text"`

	Parse   ParseCmd   `cmd:"" help:"Extract a model and print it as JSON"`
	Members MembersCmd `cmd:"" help:"Print the endpoints of every member"`
	Summary SummaryCmd `cmd:"" help:"Print element counts, bar grades and steel profiles"`
	Query   QueryCmd   `cmd:"" help:"Run an XPath query against the raw XML"`
	Serve   ServeCmd   `cmd:"" help:"Start the viewer IPC server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply configures logging before any command runs.
func (c *CLI) AfterApply() error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// LoadFlags select how a model file is read.
type LoadFlags struct {
	File      string `arg:"" help:"ST-Bridge file (.stb, optionally .xz compressed)" type:"existingfile"`
	Encoding  string `short:"e" help:"Character set override (e.g. shift_jis)"`
	Collect   bool   `help:"Report every malformed element instead of stopping at the first"`
	MaxErrors int    `name:"max-errors" help:"Stop collecting after this many errors (0 = no limit)" default:"0"`
}

func (f LoadFlags) load() (*stb.Document, error) {
	doc, err := extract.ParseFile(f.File, extract.Options{
		CollectErrors: f.Collect,
		MaxErrors:     f.MaxErrors,
		Encoding:      f.Encoding,
	})
	if err != nil {
		reportErrors(err)
		return nil, err
	}
	return doc, nil
}

// reportErrors prints every diagnostic of a collected error list; kong only
// prints the summary line.
func reportErrors(err error) {
	var list stberrors.ErrorList
	if !errors.As(err, &list) {
		return
	}
	for _, e := range list {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
}

// ParseCmd prints the extracted document.
type ParseCmd struct {
	LoadFlags
	Out     string `short:"o" help:"Write JSON to this file instead of stdout" type:"path"`
	Compact bool   `help:"Print compact JSON"`
}

func (c *ParseCmd) Run() error {
	doc, err := c.load()
	if err != nil {
		return err
	}
	if c.Out == "" {
		return writeJSON(stdout, doc, !c.Compact)
	}
	return writeJSONFile(c.Out, doc, !c.Compact)
}

// writeJSONFile writes v to path. A failed close is reported, since it may
// be the first sign of a short write.
func writeJSONFile(path string, v any, indent bool) error {
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := writeJSON(f, v, indent); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

// MembersCmd prints member endpoints as pairs of nodes.
type MembersCmd struct {
	LoadFlags
	SkipSlabs bool `name:"skip-slabs" help:"Leave out slabs instead of failing on them"`
}

func (c *MembersCmd) Run() error {
	doc, err := c.load()
	if err != nil {
		return err
	}
	resolve := doc.ResolveMembers
	if c.SkipSlabs {
		resolve = doc.ResolveFrameMembers
	}
	pairs, err := resolve()
	if err != nil {
		return err
	}
	if pairs == nil {
		pairs = []stb.NodePair{}
	}
	return writeJSON(stdout, pairs, true)
}

// SummaryCmd prints an overview of a model.
type SummaryCmd struct {
	LoadFlags
}

func (c *SummaryCmd) Run() error {
	doc, err := c.load()
	if err != nil {
		return err
	}
	m := doc.Model

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Version:\t%s\n", doc.Version)
	fmt.Fprintf(tw, "Nodes:\t%d\n", len(m.Nodes))
	fmt.Fprintf(tw, "Axes:\t%d X, %d Y\n", len(m.Axes.X), len(m.Axes.Y))
	fmt.Fprintf(tw, "Stories:\t%d\n", len(m.Stories))
	groups := []struct {
		name string
		n    int
	}{
		{"Columns", len(m.Members.Columns)},
		{"Posts", len(m.Members.Posts)},
		{"Girders", len(m.Members.Girders)},
		{"Beams", len(m.Members.Beams)},
		{"Braces", len(m.Members.Braces)},
		{"Slabs", len(m.Members.Slabs)},
	}
	for _, g := range groups {
		fmt.Fprintf(tw, "%s:\t%d\n", g.name, g.n)
	}
	fmt.Fprintf(tw, "Sections:\t%d\n", m.Sections.Len())
	fmt.Fprintf(tw, "Steel profiles:\t%d\n", len(m.Sections.Steel))
	if err := tw.Flush(); err != nil {
		return err
	}

	// Bad grade labels are reported but do not hide the rest of the summary.
	entries, rerr := rebar.Table(doc.Common)
	if len(entries) > 0 {
		fmt.Fprintln(stdout, "\nReinforcement:")
		for _, e := range entries {
			fmt.Fprintf(stdout, "  %-6s %s\n", e.Diameter, e.Grade)
		}
	}
	if rerr != nil {
		logging.Warn("unreadable reinforcement grades", "error", rerr)
	}

	if len(m.Sections.Steel) > 0 {
		fmt.Fprintln(stdout, "\nSteel profiles:")
		names := lo.Keys(m.Sections.Steel)
		slices.Sort(names)
		for _, name := range names {
			p := m.Sections.Steel[name]
			fmt.Fprintf(stdout, "  %-24s %s\n", name, p.ProfileKind())
		}
	}
	return nil
}

// QueryCmd evaluates an XPath expression against the file's XML.
type QueryCmd struct {
	File     string `arg:"" help:"ST-Bridge file" type:"existingfile"`
	XPath    string `arg:"" name:"xpath" help:"XPath expression, e.g. //StbColumn[@id='10']"`
	Encoding string `short:"e" help:"Character set override (e.g. shift_jis)"`
	Count    bool   `help:"Print only the number of matches"`
}

func (c *QueryCmd) Run() error {
	src, err := source.Load(c.File, source.Options{Encoding: c.Encoding})
	if err != nil {
		return err
	}
	tree, err := xml.Parse(src.Data)
	if err != nil {
		return err
	}
	nodes, err := tree.XPath(c.XPath)
	if err != nil {
		return fmt.Errorf("%w: %v", stberrors.ErrInvalidInput, err)
	}
	if c.Count {
		fmt.Fprintln(stdout, len(nodes))
		return nil
	}
	for _, n := range nodes {
		out := strings.TrimRight(string(n.Format(xml.FormatOptions{})), "\n")
		fmt.Fprintln(stdout, out)
	}
	logging.Debug("query evaluated", "xpath", c.XPath, "matches", len(nodes))
	return nil
}

// ServeCmd starts the IPC server.
type ServeCmd struct {
	Port      int      `help:"HTTP server port" default:"8081" env:"STBVIEW_PORT"`
	Root      string   `help:"Only serve files below this directory" type:"path"`
	CacheDB   string   `name:"cache-db" help:"SQLite file for parsed-document snapshots" type:"path" env:"STBVIEW_CACHE_DB"`
	CacheSize int      `name:"cache-size" help:"Documents kept in memory" default:"32"`
	Origins   []string `name:"allow-origin" help:"Allowed websocket origins (repeatable)"`
	Collect   bool     `help:"Collect every extraction error per request"`
}

func (c *ServeCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := api.New(ctx, api.Config{
		Port:           c.Port,
		Root:           c.Root,
		CacheSize:      c.CacheSize,
		SnapshotDB:     c.CacheDB,
		AllowedOrigins: c.Origins,
		Extract:        extract.Options{CollectErrors: c.Collect},
		Version:        version,
	})
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.ListenAndServe(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "stbview version %s\n", version)
	return nil
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("stbview"),
		kong.Description("ST-Bridge structural model reader"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

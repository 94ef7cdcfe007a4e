// Command gunny checks, formats and converts GunnyScript documents.
//
// Usage:
//
//	gunny [--verbose] [--log-format console|json] <command> [arguments]
//
// The commands are:
//
//	check    parse documents and report the first error in each
//	events   print the event stream of a document
//	fmt      rewrite documents in canonical form
//	convert  convert between GunnyScript, JSON, YAML and TOML
//
// A file name of "-" reads standard input.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/KimNorgaard/go-gunnyscript"
	"github.com/KimNorgaard/go-gunnyscript/convert"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			if msg := exit.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exit.ExitCode())
		}
		fmt.Fprintln(os.Stderr, "gunny:", err)
		os.Exit(1)
	}
}

type runner struct {
	log zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	r := &runner{log: zerolog.Nop()}
	return &cli.App{
		Name:      "gunny",
		Usage:     "check, format and convert GunnyScript documents",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output",
				EnvVars: []string{"GUNNY_VERBOSE"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				Usage:   "log format, console or json",
				EnvVars: []string{"GUNNY_LOG_FORMAT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := newLogger(c.App.ErrWriter, c.String("log-format"), c.Bool("verbose"))
			if err != nil {
				return err
			}
			r.log = logger
			return nil
		},
		// Exit codes are handled by main.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "parse documents and report errors",
				ArgsUsage: "FILE...",
				Action:    r.checkCmd,
			},
			{
				Name:      "events",
				Usage:     "print the event stream of a document",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "chunk-size",
						Value:   4096,
						Usage:   "read the input in chunks of `N` bytes",
						EnvVars: []string{"GUNNY_CHUNK_SIZE"},
					},
				},
				Action: r.eventsCmd,
			},
			{
				Name:      "fmt",
				Usage:     "rewrite documents in canonical form",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					indentFlag(),
					&cli.BoolFlag{
						Name:    "write",
						Aliases: []string{"w"},
						Usage:   "write the result back to the file instead of standard output",
					},
				},
				Action: r.fmtCmd,
			},
			{
				Name:      "convert",
				Usage:     "convert a document to another format",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to",
						Usage:    "output format: gunny, json, yaml or toml",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "input format; defaults to the file extension",
					},
					indentFlag(),
				},
				Action: r.convertCmd,
			},
		},
	}
}

func indentFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "indent",
		Value:   2,
		Usage:   "indent nested values by `N` spaces; 0 writes a single line",
		EnvVars: []string{"GUNNY_INDENT"},
	}
}

func newLogger(w io.Writer, format string, verbose bool) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	switch format {
	case "console":
		out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
		return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
	case "json":
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
	}
	return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
}

func (r *runner) readInput(c *cli.Context, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(name)
}

func (r *runner) checkCmd(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("check: no files given", 2)
	}
	failed := 0
	for _, name := range files {
		start := time.Now()
		data, err := r.readInput(c, name)
		if err == nil {
			_, err = convert.Load(filepath.Ext(name), data)
		}
		if err != nil {
			failed++
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", name, err)
			continue
		}
		r.log.Debug().Str("file", name).Int("bytes", len(data)).Dur("took", time.Since(start)).Msg("document is valid")
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("check: %d of %d documents are invalid", failed, len(files)), 1)
	}
	return nil
}

func (r *runner) eventsCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("events: expected exactly one file", 2)
	}
	name := c.Args().First()

	var in io.Reader = c.App.Reader
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	d := gunnyscript.NewDecoder(in,
		gunnyscript.ChunkSize(c.Int("chunk-size")),
		gunnyscript.WithLogger(r.log.With().Str("file", name).Logger()),
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
		}
		fmt.Fprintln(c.App.Writer, tok)
	}
}

func (r *runner) fmtCmd(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("fmt: no files given", 2)
	}
	write := c.Bool("write")
	for _, name := range files {
		data, err := r.readInput(c, name)
		if err != nil {
			return err
		}
		out, err := gunnyscript.Format(data, gunnyscript.Indent(c.Int("indent")))
		if err != nil {
			return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
		}
		out = withNewline(out)

		if !write || name == "-" {
			if _, err := c.App.Writer.Write(out); err != nil {
				return err
			}
			continue
		}
		if bytes.Equal(out, data) {
			r.log.Debug().Str("file", name).Msg("already formatted")
			continue
		}
		info, err := os.Stat(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(name, out, info.Mode().Perm()); err != nil {
			return err
		}
		r.log.Info().Str("file", name).Msg("formatted")
	}
	return nil
}

func (r *runner) convertCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("convert: expected exactly one file", 2)
	}
	name := c.Args().First()
	data, err := r.readInput(c, name)
	if err != nil {
		return err
	}

	from := c.String("from")
	if from == "" {
		from = filepath.Ext(name)
	}
	doc, err := convert.Load(from, data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
	}

	var out []byte
	switch to := strings.ToLower(c.String("to")); to {
	case "gunny":
		out, err = gunnyscript.Marshal(doc, gunnyscript.Indent(c.Int("indent")))
	case "json":
		out, err = convert.ToJSON(doc, c.Int("indent"))
	case "yaml", "yml":
		out, err = convert.ToYAML(doc)
	case "toml":
		out, err = convert.ToTOML(doc)
	default:
		return cli.Exit(fmt.Sprintf("convert: unknown output format %q", to), 2)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
	}
	r.log.Debug().Str("file", name).Str("from", from).Str("to", c.String("to")).Msg("converted")
	_, err = c.App.Writer.Write(withNewline(out))
	return err
}

func withNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

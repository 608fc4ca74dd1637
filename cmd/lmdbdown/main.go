package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/eigerco/lmdbdown/pkg/config"
	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/db/adapter"
	"github.com/eigerco/lmdbdown/pkg/db/async"
	"github.com/eigerco/lmdbdown/pkg/log"
)

const usage = `usage: lmdbdown [-config file] [-path dir] [-engine lmdb|pebble] [-dbi name] <command> [args]

commands:
  get [-as text|number|boolean|bytes] <key>
  put <key> <value>
  del <key>
  scan [-gt k] [-gte k] [-lt k] [-lte k] [-reverse] [-limit n]
`

// main runs one command against a store.
// go run main.go -path /tmp/store put hello world
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("lmdbdown", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "YAML configuration file")
	path := fs.String("path", "", "store directory, overrides the configuration")
	engine := fs.String("engine", "", "lmdb or pebble, overrides the configuration")
	dbi := fs.String("dbi", "", "sub-database name, overrides the configuration")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *path != "" {
		cfg.Path = *path
	}
	if *engine != "" {
		cfg.Engine = *engine
	}
	if *dbi != "" {
		cfg.Store.DBIName = *dbi
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logOpts, err := cfg.LogOptions()
	if err != nil {
		return err
	}
	logOpts.Out = os.Stderr
	log.Init(logOpts)

	if fs.NArg() == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	e, err := config.EngineByName(cfg.Engine)
	if err != nil {
		return err
	}
	d := async.New(adapter.New(cfg.Path, e))
	if err := d.Open(cfg.Store).Err(); err != nil {
		d.Close().Err() //nolint:errcheck
		d.Wait()        //nolint:errcheck
		return err
	}

	cmdErr := dispatch(context.Background(), d, fs.Arg(0), fs.Args()[1:], out)
	closeErr := d.Close().Err()
	if err := d.Wait(); err != nil {
		log.Root.Error().Err(err).Msg("worker exited with error")
	}
	return errors.Join(cmdErr, closeErr)
}

func dispatch(ctx context.Context, d *async.DB, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "get":
		return get(ctx, d, args, out)
	case "put":
		if len(args) != 2 {
			return fmt.Errorf("%w: put takes a key and a value", errUsage)
		}
		_, err := d.Put([]byte(args[0]), parseValue(args[1])).Wait(ctx)
		return err
	case "del":
		if len(args) != 1 {
			return fmt.Errorf("%w: del takes one key", errUsage)
		}
		_, err := d.Delete([]byte(args[0])).Wait(ctx)
		return err
	case "scan":
		return scan(ctx, d, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// parseValue stores "true", "false" and numerals in their native form, anything else as text.
func parseValue(s string) db.Value {
	switch s {
	case "true":
		return db.Boolean(true)
	case "false":
		return db.Boolean(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return db.Number(f)
	}
	return db.Text(s)
}

var kinds = map[string]db.ValueKind{
	"text":    db.KindText,
	"number":  db.KindNumber,
	"boolean": db.KindBoolean,
	"bytes":   db.KindBytes,
}

func get(ctx context.Context, d *async.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	as := fs.String("as", "text", "stored kind: text, number, boolean or bytes")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	kind, ok := kinds[*as]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", errUsage, *as)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: get takes one key", errUsage)
	}

	v, err := d.Get([]byte(fs.Arg(0)), db.ReadOptions{As: db.As(kind)}).Wait(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, v.Text())
	return nil
}

func scan(ctx context.Context, d *async.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gt := fs.String("gt", "", "exclusive lower bound")
	gte := fs.String("gte", "", "inclusive lower bound")
	lt := fs.String("lt", "", "exclusive upper bound")
	lte := fs.String("lte", "", "inclusive upper bound")
	reverse := fs.Bool("reverse", false, "iterate from the upper bound down")
	limit := fs.Int("limit", 0, "maximum number of pairs, 0 for no limit")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	entries, err := d.Iterator(db.IteratorOptions{
		Gt:      []byte(*gt),
		Gte:     []byte(*gte),
		Lt:      []byte(*lt),
		Lte:     []byte(*lte),
		Reverse: *reverse,
		Limit:   *limit,
	}).All().Wait(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%s\n", e.Key.Text(), e.Value.Text())
	}
	return nil
}

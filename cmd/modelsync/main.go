package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"modelsync/internal/config"
)

const Version = "0.3.0"

const usage = `Replicate structured-document models and inspect their notification journals.

Usage:
    modelsync run <scenario> [--config=<config>] [--mode=<mode>] [--compose] [--label=<label>]
        [--journal=<db>] [--stream=<stream>] [--export=<file>] [--format=<format>] [--trace] [--verbosity=<level>]
    modelsync language <scenario> [--out=<file>]
    modelsync journal streams <db>
    modelsync journal list <db> [--stream=<stream>] [--kind=<kind>] [--node=<node>] [--after=<seq>] [--limit=<n>]
    modelsync journal rebuild <db> <language> [--stream=<stream>] [--export=<file>] [--format=<format>] [--verbosity=<level>]
    modelsync config [--config=<config>]
    modelsync -h | --help
    modelsync --version

Options:
    -h --help            Show this screen.
    --version            Show version.
    --config=<config>    Config file; searched for when absent.
    --mode=<mode>        mirror or pair; overrides the config.
    --compose            Replay transactions as composites.
    --label=<label>      Producer label of the replica.
    --journal=<db>       Journal the source stream to this SQLite file.
    --stream=<stream>    Journal stream name.
    --export=<file>      Write the replica to this file.
    --format=<format>    Export format, json or yaml [default: yaml].
    --trace              Print every notification the source emits.
    --out=<file>         Write to this file instead of stdout.
    --kind=<kind>        Only entries of this notification kind.
    --node=<node>        Only entries mentioning this node.
    --after=<seq>        Only entries after this journal seq.
    --limit=<n>          At most n entries.
    --verbosity=<level>  glog verbosity; overrides the config.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], Version)
	if err != nil {
		panic(err)
	}
	defer glog.Flush()

	switch {
	case flagBool(opts, "run"):
		cfg := loadConfig(opts)
		setupLogging(opts, cfg)
		err = run(opts, cfg, os.Stdout)
	case flagBool(opts, "language"):
		err = language(opts)
	case flagBool(opts, "journal"):
		setupLogging(opts, config.DefaultConfig())
		err = journal(opts)
	case flagBool(opts, "config"):
		cfg := loadConfig(opts)
		fmt.Println(cfg.Summary())
	}
	if err != nil {
		glog.Exitf("modelsync: %v", err)
	}
}

func flagBool(opts docopt.Opts, key string) bool {
	v, _ := opts.Bool(key)
	return v
}

func flagString(opts docopt.Opts, key string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return ""
}

func loadConfig(opts docopt.Opts) *config.Config {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if explicit := flagString(opts, "--config"); explicit != "" {
		cfg, path, err = config.LoadFromPath(explicit)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		glog.Exitf("modelsync: config %s: %v", path, err)
	}
	if path != "" {
		glog.V(1).Infof("config loaded from %s", path)
	}
	return cfg
}

// setupLogging maps the logging section and --verbosity onto glog flags
func setupLogging(opts docopt.Opts, cfg *config.Config) {
	verbosity := cfg.Logging.Verbosity
	if v := flagString(opts, "--verbosity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			verbosity = n
		}
	}
	flag.Set("v", strconv.Itoa(verbosity))
	if cfg.Logging.Stderr || verbosity > 0 {
		flag.Set("logtostderr", "true")
	}
}

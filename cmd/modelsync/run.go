package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"modelsync/internal/bus"
	"modelsync/internal/codec"
	"modelsync/internal/config"
	"modelsync/internal/graph"
	"modelsync/internal/repository/sqlite"
	"modelsync/internal/service"
)

// run replays a scenario against a source forest wired to a replica and
// checks that both end up equal. Trace lines and the summary go to out.
func run(opts docopt.Opts, cfg *config.Config, out io.Writer) error {
	if m := flagString(opts, "--mode"); m != "" {
		cfg.Replication.Mode = config.ParseMode(m)
	}
	if flagBool(opts, "--compose") {
		cfg.Replication.Compose = true
	}
	if l := flagString(opts, "--label"); l != "" {
		cfg.Replication.Label = l
	}
	if db := flagString(opts, "--journal"); db != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = db
	}
	if s := flagString(opts, "--stream"); s != "" {
		cfg.Journal.Stream = s
	}
	glog.V(1).Infof("config: %s", cfg.Summary())

	sc, err := readScenario(flagString(opts, "<scenario>"))
	if err != nil {
		return err
	}
	lang, err := sc.Language.Build()
	if err != nil {
		return err
	}
	initial := sc.Initial
	if initial == nil {
		initial = &codec.Document{}
	}

	ctx := context.Background()
	source := graph.NewForest(lang, "source")
	var taps []bus.Receiver
	if cfg.Journal.Enabled {
		j, err := sqlite.New(cfg.Journal.Path, cfg.Journal.BusyTimeout.Duration())
		if err != nil {
			return err
		}
		defer j.Close()
		sink := service.NewJournalSink(ctx, j, cfg.Journal.Stream)
		// the initial partitions go to the journal so it can be rebuilt
		// from an empty forest
		if err := source.ConnectTo(sink); err != nil {
			return err
		}
		if err := codec.Load(source, initial); err != nil {
			return err
		}
		source.Disconnect(sink)
		taps = append(taps, sink)
	} else if err := codec.Load(source, initial); err != nil {
		return err
	}

	if flagBool(opts, "--trace") {
		events := service.NewEventBus()
		events.Handle(func(ev service.Event) {
			fmt.Fprintln(out, ev.Summary)
		})
		taps = append(taps, events)
	}

	var (
		runner  *service.Runner
		replica *graph.Forest
		verify  func() error
		applied func() int
	)
	if cfg.Replication.Mode.Bidirectional() {
		other := graph.NewForest(lang, cfg.Replication.Label)
		if err := codec.Load(other, initial); err != nil {
			return err
		}
		p, err := service.NewPair(source, other, cfg.Replication.Compose)
		if err != nil {
			return err
		}
		var tx bus.Sender = source
		if p.LeftTx() != nil {
			tx = p.LeftTx()
		}
		for _, tap := range taps {
			if err := tx.ConnectTo(tap); err != nil {
				return err
			}
		}
		runner = service.NewRunner(source, p.LeftTx())
		replica, verify = other, p.Verify
		applied = func() int { _, r := p.Applied(); return r }
	} else {
		m, err := service.NewMirror(source, service.MirrorOptions{
			Label:   cfg.Replication.Label,
			Compose: cfg.Replication.Compose,
			Taps:    taps,
		})
		if err != nil {
			return err
		}
		runner = service.NewRunner(source, m.Transactions())
		replica, verify = m.Replica(), m.Verify
		applied = m.Replicator().Applied
	}

	for i, st := range sc.Steps {
		if err := runner.Apply(st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st, err)
		}
	}
	if err := verify(); err != nil {
		return fmt.Errorf("replica diverged: %w", err)
	}
	fmt.Fprintf(out, "%d steps, %d notifications replayed into %s, replica verified\n",
		len(sc.Steps), applied(), replica.Label())

	if path := flagString(opts, "--export"); path != "" {
		return export(replica, path, flagString(opts, "--format"))
	}
	return nil
}

func readScenario(path string) (*codec.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc, err := codec.ParseScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// export writes the registered partitions of f to path
func export(f *graph.Forest, path, format string) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	doc, err := codec.Dump(f)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Export(doc, out); err != nil {
		out.Close()
		return err
	}
	glog.V(1).Infof("exported %d partitions to %s", len(doc.Partitions), path)
	return out.Close()
}

// language prints the language of a scenario
func language(opts docopt.Opts) error {
	sc, err := readScenario(flagString(opts, "<scenario>"))
	if err != nil {
		return err
	}
	lang, err := sc.Language.Build()
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if path := flagString(opts, "--out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return codec.ExportLanguage(lang, w)
}

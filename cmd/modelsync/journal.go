package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/docopt/docopt-go"

	"modelsync/internal/codec"
	"modelsync/internal/config"
	"modelsync/internal/graph"
	"modelsync/internal/notification"
	"modelsync/internal/repository"
	"modelsync/internal/repository/sqlite"
	"modelsync/internal/service"
)

func journal(opts docopt.Opts) error {
	j, err := sqlite.New(flagString(opts, "<db>"), config.DefaultBusyTimeout)
	if err != nil {
		return err
	}
	defer j.Close()
	ctx := context.Background()

	switch {
	case flagBool(opts, "streams"):
		return journalStreams(ctx, j)
	case flagBool(opts, "list"):
		return journalList(ctx, j, opts)
	case flagBool(opts, "rebuild"):
		return journalRebuild(ctx, j, opts)
	}
	return nil
}

func journalStreams(ctx context.Context, j repository.Journal) error {
	stats, err := j.Streams(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STREAM\tENTRIES\tFIRST\tLAST")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.Stream, s.Entries, s.FirstSeq, s.LastSeq)
	}
	return w.Flush()
}

func journalList(ctx context.Context, j repository.Journal, opts docopt.Opts) error {
	q := repository.Query{
		Stream: flagString(opts, "--stream"),
		Kind:   notification.Kind(flagString(opts, "--kind")),
		Node:   flagString(opts, "--node"),
	}
	var err error
	if after := flagString(opts, "--after"); after != "" {
		if q.AfterSeq, err = strconv.ParseInt(after, 10, 64); err != nil {
			return fmt.Errorf("--after: %w", err)
		}
	}
	if limit := flagString(opts, "--limit"); limit != "" {
		if q.Limit, err = strconv.Atoi(limit); err != nil {
			return fmt.Errorf("--limit: %w", err)
		}
	}

	entries, err := j.List(ctx, q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tSTREAM\tRECORDED\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Seq, e.Stream, e.RecordedAt.Format("15:04:05.000"), e.Summary)
	}
	return w.Flush()
}

func journalRebuild(ctx context.Context, j repository.Journal, opts docopt.Opts) error {
	f, err := os.Open(flagString(opts, "<language>"))
	if err != nil {
		return err
	}
	lang, err := codec.ParseLanguage(f)
	f.Close()
	if err != nil {
		return err
	}

	stream := flagString(opts, "--stream")
	if stream == "" {
		stream = config.DefaultConfig().Journal.Stream
	}
	target := graph.NewForest(lang, "rebuilt")
	n, err := service.Rebuild(ctx, j, stream, target)
	if err != nil {
		return err
	}
	fmt.Printf("rebuilt %d partitions from %d entries of %s\n", len(target.Partitions()), n, stream)

	if path := flagString(opts, "--export"); path != "" {
		return export(target, path, flagString(opts, "--format"))
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/sqldef/dumpsort/dumpobj"
)

type options struct {
	File           string `short:"f" long:"file" description:"YAML fixture describing the object graph" value-name:"path"`
	PreDataID      int    `long:"pre-data-id" description:"dump_id of the pre-data boundary sentinel" value-name:"id"`
	PostDataID     int    `long:"post-data-id" description:"dump_id of the post-data boundary sentinel" value-name:"id"`
	Preferred      bool   `long:"preferred-only" description:"print the type/name pre-sort without consulting the dependency graph"`
	Verbose        bool   `long:"verbose" description:"log tie-break and repair diagnostics at debug level"`
	ExplainViewDep bool   `long:"explain-view-deps" description:"cross-check a view's declared dependencies against the tables its query text actually references" value-name:"dump_id"`
	Help           bool   `long:"help" description:"show this help"`
	Version        bool   `long:"version" description:"show this version"`
}

var version = "0.0.1"

func parseOptions(args []string) (*options, string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options] fixture.yaml"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if opts.File == "" && len(rest) > 0 {
		opts.File = rest[0]
	}
	if opts.File == "" {
		fmt.Fprintln(os.Stderr, "no fixture file given; pass --file or a positional path")
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	return &opts, opts.File
}

func (o *options) preBoundaryID() dumpobj.ID  { return dumpobj.ID(o.PreDataID) }
func (o *options) postBoundaryID() dumpobj.ID { return dumpobj.ID(o.PostDataID) }

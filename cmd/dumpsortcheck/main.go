// Command dumpsortcheck loads a YAML object-graph fixture and prints the
// safe emission order dumpsort computes for it, the way a CLI embedder
// would smoke-test a catalog before wiring a real dumper against this
// module.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/sqldef/dumpsort"
	"github.com/sqldef/dumpsort/dumpcfg"
	"github.com/sqldef/dumpsort/dumplog"
	"github.com/sqldef/dumpsort/dumpobj"
	"github.com/sqldef/dumpsort/viewdep"
)

func main() {
	opts, path := parseOptions(os.Args[1:])

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := dumplog.New(level)

	runID := uuid.New().String()
	logger = logger.With(slog.String("run_id", runID))

	graph, err := dumpcfg.LoadFixture(path)
	if err != nil {
		logger.Error("failed to load fixture", slog.String("error", err.Error()))
		os.Exit(1)
	}

	objects, reg, err := graph.Build()
	if err != nil {
		logger.Error("failed to build object graph", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printer := newPrinter()

	if opts.Preferred {
		out := dumpsort.SortByTypeName(objects, reg, logger)
		printer.Println(describeAll(reg, out))
		return
	}

	out, err := dumpsort.SortDependencyAware(objects, reg, opts.preBoundaryID(), opts.postBoundaryID(), logger)
	if err != nil {
		logger.Error("sort failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	printer.Println(describeAll(reg, out))

	if opts.ExplainViewDep {
		explainViewDeps(logger, reg, graph.Queries())
	}
}

// describeAll renders the final order as a slice of human descriptions,
// reusing the registry's precomputed Describe strings rather than
// recomputing them.
func describeAll(reg *dumpobj.Registry, objects []*dumpobj.Object) []string {
	out := make([]string, len(objects))
	for i, o := range objects {
		out[i] = reg.Description(o.DumpID)
	}
	return out
}

// newPrinter returns a pp printer configured for color only when stdout is
// an interactive terminal, so piping output to a file or another tool
// doesn't embed escape codes.
func newPrinter() *pp.PrettyPrinter {
	p := pp.New()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		p.SetColoringEnabled(false)
	}
	return p
}

// explainViewDeps cross-checks each view or matview object that carries
// fixture query text against the dependency edges the loader declared for
// it, using viewdep to parse the query's actual table references. A
// mismatch usually means the catalog loader missed a dependency edge that
// a repair pattern would otherwise need to see.
func explainViewDeps(logger *slog.Logger, reg *dumpobj.Registry, queries map[dumpobj.ID]string) {
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "no view objects with query text available to cross-check in this fixture")
		return
	}
	for id, query := range queries {
		o := reg.FindByDumpID(id)
		if o == nil {
			continue
		}
		declared := make([]string, 0, len(o.Deps))
		for _, dep := range o.Deps {
			if t := reg.FindByDumpID(dep); t != nil {
				declared = append(declared, t.Name)
			}
		}
		ok, missing, err := viewdep.Consistent(query, declared)
		if err != nil {
			logger.Warn("could not parse view query", slog.Int("dump_id", int(id)), slog.String("error", err.Error()))
			continue
		}
		if !ok {
			logger.Warn("view references tables not present in its declared dependencies",
				slog.Int("dump_id", int(id)), slog.Any("missing", missing))
			continue
		}
		logger.Info("view dependency check passed", slog.Int("dump_id", int(id)))
	}
}

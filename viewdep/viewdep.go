// Package viewdep is an optional sanity check, outside the ordering core's
// contract: given a view or rule's defining SQL query, it extracts the
// table names the query actually references and compares them against the
// dependency edges a loader attached to the corresponding dumpobj.Object.
// Nothing in dumpobj, tnsort, toposort, or looprepair calls this package —
// it exists for a loader's test suite (or the CLI's --explain-view-deps
// flag) to catch a loader bug that under- or over-counts a view's
// dependencies before they ever reach the sort.
package viewdep

import (
	"encoding/json"
	"fmt"
	"sort"

	pg_query "github.com/pganalyze/pg_query_go/v2"
)

// ReferencedTables parses query and returns the distinct table names it
// references, in sorted order. It returns an error if query doesn't parse;
// callers doing a best-effort sanity check should treat a parse error as
// "couldn't verify" rather than "mismatch".
func ReferencedTables(query string) ([]string, error) {
	raw, err := pg_query.ParseToJSON(query)
	if err != nil {
		return nil, fmt.Errorf("viewdep: parsing query: %w", err)
	}

	var tree any
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, fmt.Errorf("viewdep: decoding parse tree: %w", err)
	}

	seen := make(map[string]bool)
	collectRelNames(tree, seen)

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// collectRelNames walks the decoded parse tree looking for RangeVar nodes,
// which libpg_query represents as an object carrying a "relname" field.
func collectRelNames(node any, out map[string]bool) {
	switch v := node.(type) {
	case map[string]any:
		if name, ok := v["relname"].(string); ok {
			out[name] = true
		}
		for _, child := range v {
			collectRelNames(child, out)
		}
	case []any:
		for _, child := range v {
			collectRelNames(child, out)
		}
	}
}

// Consistent reports whether declaredDeps (the table names a loader
// attached as dependency edges for a view/rule object) covers every table
// ReferencedTables finds in query. It does not require an exact match:
// dump objects commonly carry extra edges (e.g. to a schema or an access
// method) that never appear as a bare table reference.
func Consistent(query string, declaredDeps []string) (bool, []string, error) {
	refs, err := ReferencedTables(query)
	if err != nil {
		return false, nil, err
	}

	declared := make(map[string]bool, len(declaredDeps))
	for _, d := range declaredDeps {
		declared[d] = true
	}

	var missing []string
	for _, r := range refs {
		if !declared[r] {
			missing = append(missing, r)
		}
	}
	return len(missing) == 0, missing, nil
}

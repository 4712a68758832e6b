// ABOUTME: Attribute injection resolution engine: expands file globs, parses topologies, matches selectors.
// ABOUTME: Per-file lookup failures are logged and skipped; malformed specs and unknown kinds are fatal.
package injection

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/HPENetworking/topology-sub000/szn"
)

// Resolver resolves injection specs against a set of search paths.
type Resolver struct {
	// SearchPaths are the roots used to locate files matched by relative
	// glob patterns. When empty, the current working directory is used.
	SearchPaths []string

	// Logger receives skip diagnostics for files that cannot be read or
	// parsed. Defaults to slog.Default.
	Logger *slog.Logger
}

// Resolve loads an injection spec file and resolves it against searchPaths
// with a default Resolver.
func Resolve(specPath string, searchPaths []string) (*Result, error) {
	r := &Resolver{SearchPaths: searchPaths}
	return r.Resolve(specPath)
}

// Resolve loads the spec at specPath and resolves it.
func (r *Resolver) Resolve(specPath string) (*Result, error) {
	rules, err := LoadSpec(specPath)
	if err != nil {
		return nil, err
	}
	return r.ResolveRules(rules)
}

// ResolveRules applies the rules in order and returns the merged result.
// Later rules overlay earlier ones for the same file and element key.
func (r *Resolver) ResolveRules(rules []Rule) (*Result, error) {
	searchPaths, err := r.expandSearchPaths()
	if err != nil {
		return nil, err
	}
	r.logger().Debug("expanded injection search paths", "paths", searchPaths)

	result := newResult()
	cache := newTopologyCache(r.logger())

	for _, rule := range rules {
		for _, file := range expandFiles(rule.Files, searchPaths) {
			topo, ok := cache.topology(file)
			if !ok {
				continue
			}

			fi := result.file(file)
			if rule.Environment != nil {
				fi.MergeEnvironment(rule.Environment)
			}

			for _, mod := range rule.Modifiers {
				for _, target := range mod.Targets {
					elements, err := expandSelectors(topo, target)
					if err != nil {
						return nil, err
					}
					for _, key := range elements {
						fi.Merge(key, mod.Attributes)
					}
				}
			}
		}
	}

	return result, nil
}

// logger returns the configured logger or the process default.
func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// expandSearchPaths resolves the configured search paths to absolute paths
// and appends every subdirectory recursively, skipping hidden directories.
// The result is deduplicated preserving first-seen order.
func (r *Resolver) expandSearchPaths() ([]string, error) {
	roots := r.SearchPaths
	if len(roots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		roots = []string{cwd}
	}

	var expanded []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			expanded = append(expanded, path)
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		add(abs)
		// Unreadable roots simply contribute no subdirectories; the error
		// surfaces later when globbing finds nothing.
		_ = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
	}

	return expanded, nil
}

// expandFiles expands glob patterns to the matching candidate files.
// Absolute patterns are used as-is; relative patterns are joined with every
// search path. A candidate is kept when it is a regular file named like an
// SZN topology source (test_*.py or *.szn) and is only added once.
func expandFiles(patterns, searchPaths []string) []string {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		var lookups []string
		if filepath.IsAbs(pattern) {
			lookups = []string{pattern}
		} else {
			for _, sp := range searchPaths {
				lookups = append(lookups, filepath.Join(sp, pattern))
			}
		}

		for _, lookup := range lookups {
			matches, err := filepath.Glob(lookup)
			if err != nil {
				// Invalid pattern: matches nothing.
				continue
			}
			for _, match := range matches {
				if seen[match] {
					continue
				}
				info, err := os.Stat(match)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				if !isTopologySource(filepath.Base(match)) {
					continue
				}
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	return files
}

// isTopologySource reports whether a file name looks like a topology
// carrier: a pytest suite or a standalone SZN file.
func isTopologySource(name string) bool {
	if ok, _ := filepath.Match("test_*.py", name); ok {
		return true
	}
	ok, _ := filepath.Match("*.szn", name)
	return ok
}

// topologyCache parses each candidate file at most once and remembers
// failures so they are logged a single time.
type topologyCache struct {
	logger *slog.Logger
	topos  map[string]*szn.Topology
	failed map[string]bool
}

func newTopologyCache(logger *slog.Logger) *topologyCache {
	return &topologyCache{
		logger: logger,
		topos:  make(map[string]*szn.Topology),
		failed: make(map[string]bool),
	}
}

// topology returns the parsed topology for file. Lookup failures (missing
// TOPOLOGY constant, unreadable file, parse error) are not fatal: the file
// is skipped with a diagnostic and excluded from further rules.
func (c *topologyCache) topology(file string) (*szn.Topology, bool) {
	if topo, ok := c.topos[file]; ok {
		return topo, true
	}
	if c.failed[file] {
		return nil, false
	}

	text, err := topologyText(file)
	if err != nil {
		c.failed[file] = true
		c.logger.Warn("skipping file for attribute injection: no topology found",
			"file", file, "error", err)
		return nil, false
	}

	topo, err := szn.Parse(text)
	if err != nil {
		c.failed[file] = true
		c.logger.Error("skipping file for attribute injection: SZN parsing failed",
			"file", file, "error", err)
		return nil, false
	}

	c.topos[file] = topo
	return topo, true
}

// topologyText extracts the SZN text carried by a file: the TOPOLOGY
// constant for Python suites, the whole content for anything else.
func topologyText(file string) (string, error) {
	if strings.HasSuffix(file, ".py") {
		return szn.FindTopologyInPython(file)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// expandSelectors resolves a target's selectors against a topology and
// returns the matched element keys: the union over selectors, each in the
// topology's declaration order, without duplicates.
func expandSelectors(topo *szn.Topology, target Target) ([]string, error) {
	elements, err := elementsFor(topo, target.Kind)
	if err != nil {
		return nil, err
	}

	var matched []string
	seen := make(map[string]bool)
	for _, selector := range target.Selectors {
		for _, el := range elements {
			ok, err := Match(selector, el.display, el.attrs)
			if err != nil {
				return nil, err
			}
			if ok && !seen[el.display] {
				seen[el.display] = true
				matched = append(matched, el.display)
			}
		}
	}
	return matched, nil
}

// element pairs a display string with the attribute set selectors match on.
type element struct {
	display string
	attrs   *szn.AttributeSet
}

// elementsFor lists a topology's elements of the given kind in declaration
// order. An unknown kind is a semantic error and aborts resolution.
func elementsFor(topo *szn.Topology, kind Kind) ([]element, error) {
	switch kind {
	case KindNodes:
		out := make([]element, 0, len(topo.Nodes))
		for _, n := range topo.Nodes {
			out = append(out, element{display: n.String(), attrs: n.Attributes})
		}
		return out, nil
	case KindPorts:
		out := make([]element, 0, len(topo.Ports))
		for _, p := range topo.Ports {
			out = append(out, element{display: p.String(), attrs: p.Attributes})
		}
		return out, nil
	case KindLinks:
		out := make([]element, 0, len(topo.Links))
		for _, l := range topo.Links {
			out = append(out, element{display: l.String(), attrs: l.Attributes})
		}
		return out, nil
	default:
		return nil, &szn.SemanticError{Msg: "unknown injection target kind: " + string(kind)}
	}
}

package analyzer

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/propscope/pkg/parser"
	"github.com/gnana997/propscope/pkg/resolver"
	"github.com/gnana997/propscope/pkg/scanner"
	"github.com/gnana997/propscope/pkg/util"
)

const defaultCacheSize = 512

// Config configures an Analyzer.
type Config struct {
	// Workers sets the parse-and-extract worker count. 0 means
	// util.OptimalPoolSize().
	Workers int
	// CacheSize bounds the per-file extraction cache (keyed by absolute
	// path + mtime). 0 means defaultCacheSize; negative disables it.
	CacheSize int
	// Resolver controls file discovery under analysis roots.
	Resolver resolver.Options
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Analyzer runs the five analysis operations over a source tree. Every
// invocation produces fresh results; the extraction cache is a pure
// optimization keyed by path and mtime, never a source of truth.
type Analyzer struct {
	parsers  *parser.Manager
	files    *util.FileCache
	cache    *lru.Cache[string, *scanner.FileExtraction]
	resolver resolver.Options
	workers  int
	logger   *slog.Logger
}

// New creates an Analyzer. Close it to release parser and mmap resources.
func New(cfg Config) (*Analyzer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Analyzer{
		parsers:  parser.NewManager(logger),
		files:    util.NewFileCache(logger),
		resolver: cfg.Resolver,
		workers:  util.OptimalPoolSizeWithOverride(cfg.Workers),
		logger:   logger,
	}
	if len(a.resolver.Exclude) == 0 {
		a.resolver = mergeResolverDefaults(a.resolver)
	}

	size := cfg.CacheSize
	if size == 0 {
		size = defaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, *scanner.FileExtraction](size)
		if err != nil {
			return nil, fmt.Errorf("create extraction cache: %w", err)
		}
		a.cache = cache
	}

	return a, nil
}

func mergeResolverDefaults(opts resolver.Options) resolver.Options {
	defaults := resolver.DefaultOptions()
	opts.Exclude = defaults.Exclude
	return opts
}

// Close releases parser pools and unmaps cached files.
func (a *Analyzer) Close() error {
	err := a.parsers.Close()
	if ferr := a.files.Close(); err == nil {
		err = ferr
	}
	return err
}

// Invalidate drops cached state for a file, forcing a re-read and
// re-parse on the next operation. Used by the file watcher.
func (a *Analyzer) Invalidate(filePath string) {
	a.files.Invalidate(filePath)
	if a.cache != nil {
		// Cache keys embed the mtime, so stale entries age out on their
		// own; dropping eagerly just frees the slot sooner.
		for _, key := range a.cache.Keys() {
			if pathOfCacheKey(key) == filePath {
				a.cache.Remove(key)
			}
		}
	}
}

// Analyze extracts every declaration and usage site under root, filtered
// by the options, and returns the canonical full result.
func (a *Analyzer) Analyze(root string, opts AnalyzeOptions) (*FullResult, error) {
	col, err := a.collect(root)
	if err != nil {
		return nil, err
	}
	return col.fullResult(opts), nil
}

// FindUsages returns every usage of one prop name, optionally narrowed
// to a component.
func (a *Analyzer) FindUsages(root, prop, component string) (*FullResult, error) {
	if prop == "" {
		return nil, fmt.Errorf("prop: must not be empty")
	}
	col, err := a.collect(root)
	if err != nil {
		return nil, err
	}
	full := col.fullResult(AnalyzeOptions{Component: component, Prop: prop, IncludeTypes: true})
	// Usage search reports call sites, not definitions.
	full.Declarations = nil
	full.Summary.Declarations = 0
	// Sites that do not carry the prop at all are noise here.
	kept := full.Usages[:0]
	for _, s := range full.Usages {
		if len(s.Props) > 0 {
			kept = append(kept, s)
		}
	}
	full.Usages = kept
	full.Summary.UsageSites = len(kept)
	return full, nil
}

// GetDeclarations returns the declarations of one component, props in
// source order.
func (a *Analyzer) GetDeclarations(root, component string) (*FullResult, error) {
	if component == "" {
		return nil, fmt.Errorf("component: must not be empty")
	}
	col, err := a.collect(root)
	if err != nil {
		return nil, err
	}
	full := col.fullResult(AnalyzeOptions{Component: component, IncludeTypes: true})
	full.Usages = nil
	full.Summary.UsageSites = 0
	return full, nil
}

// collection aggregates per-file extractions for one invocation.
type collection struct {
	extractions []*scanner.FileExtraction
	scanned     int
	skipped     int
}

// fileOutcome is one worker's result for one file.
type fileOutcome struct {
	extraction *scanner.FileExtraction
	skipped    bool
}

// collect resolves files under root and runs the parse-and-extract pass
// on a fork-join worker pool. Each file's pass is pure and independent;
// aggregation happens only after all workers finish, so no locks guard
// the result. Files that cannot be read, decoded, or parsed contribute
// nothing and never fail the batch.
func (a *Analyzer) collect(root string) (*collection, error) {
	files, err := resolver.Resolve(root, a.resolver)
	if err != nil {
		return nil, err
	}

	col := &collection{}
	if len(files) == 0 {
		return col, nil
	}

	workers := a.workers
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	outcomes := make(chan fileOutcome, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outcomes <- a.extractFile(path)
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(outcomes)
	}()

	byFile := make(map[string]*scanner.FileExtraction, len(files))
	for outcome := range outcomes {
		if outcome.skipped {
			col.skipped++
			continue
		}
		col.scanned++
		byFile[outcome.extraction.File] = outcome.extraction
	}

	// Files arrive in completion order; re-emit in path order so two
	// runs over an unchanged tree yield identical results.
	for _, f := range files {
		if fx, ok := byFile[f]; ok {
			col.extractions = append(col.extractions, fx)
		}
	}
	return col, nil
}

// extractFile parses one file and extracts it unfiltered; operation
// filters are applied afterwards so the cache entry serves every query.
func (a *Analyzer) extractFile(path string) fileOutcome {
	info, err := os.Stat(path)
	if err != nil {
		a.logger.Debug("skipping unreadable file", "file", path, "error", err)
		return fileOutcome{skipped: true}
	}

	key := cacheKey(path, info.ModTime().UnixNano(), info.Size())
	if a.cache != nil {
		if fx, ok := a.cache.Get(key); ok {
			return fileOutcome{extraction: fx}
		}
	}

	data, err := a.files.Read(path)
	if err != nil {
		a.logger.Debug("skipping unreadable file", "file", path, "error", err)
		return fileOutcome{skipped: true}
	}
	if !utf8.Valid(data) {
		// Binary content is indistinguishable from a parse failure.
		a.logger.Debug("skipping undecodable file", "file", path)
		return fileOutcome{skipped: true}
	}

	tree, err := a.parsers.ParseFile(data, path)
	if err != nil {
		a.logger.Debug("skipping unparseable file", "file", path, "error", err)
		return fileOutcome{skipped: true}
	}
	defer tree.Close()

	fx := scanner.Extract(tree.RootNode(), data, path, scanner.Options{IncludeTypes: true})
	if a.cache != nil {
		a.cache.Add(key, fx)
	}
	return fileOutcome{extraction: fx}
}

func cacheKey(path string, mtimeNano, size int64) string {
	return fmt.Sprintf("%s\x00%d\x00%d", path, mtimeNano, size)
}

func pathOfCacheKey(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i]
		}
	}
	return key
}

// fullResult applies the operation filters and flattens the collection
// into the canonical shape, sorted by (file, line).
func (c *collection) fullResult(opts AnalyzeOptions) *FullResult {
	full := &FullResult{
		Declarations: []scanner.ComponentDeclaration{},
		Usages:       []scanner.UsageSite{},
	}

	for _, fx := range c.extractions {
		decls := scanner.FilterDeclarations(fx.Declarations, opts.Component)
		if !opts.IncludeTypes {
			decls = stripTypeInfo(decls)
		}
		full.Declarations = append(full.Declarations, decls...)
		full.Usages = append(full.Usages, scanner.FilterSites(fx.Sites, opts.Component, opts.Prop)...)
	}

	sort.SliceStable(full.Declarations, func(i, j int) bool {
		return lessByFileLine(full.Declarations[i].File, full.Declarations[i].Line,
			full.Declarations[j].File, full.Declarations[j].Line)
	})
	sort.SliceStable(full.Usages, func(i, j int) bool {
		return lessByFileLine(full.Usages[i].File, full.Usages[i].Line,
			full.Usages[j].File, full.Usages[j].Line)
	})

	full.Summary = Summary{
		FilesScanned: c.scanned,
		FilesSkipped: c.skipped,
		Declarations: len(full.Declarations),
		UsageSites:   len(full.Usages),
	}
	return full
}

func stripTypeInfo(decls []scanner.ComponentDeclaration) []scanner.ComponentDeclaration {
	out := make([]scanner.ComponentDeclaration, len(decls))
	for i, d := range decls {
		d.PropsTypeName = ""
		props := make([]scanner.PropUsage, len(d.Props))
		for j, p := range d.Props {
			p.Type = ""
			props[j] = p
		}
		d.Props = props
		out[i] = d
	}
	return out
}

func lessByFileLine(fileA string, lineA int, fileB string, lineB int) bool {
	if fileA != fileB {
		return fileA < fileB
	}
	return lineA < lineB
}

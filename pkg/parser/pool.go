package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/propscope/pkg/util"
)

// pool holds reusable tree-sitter parsers for one grammar. Tree-sitter
// parsers are not safe for concurrent use, so each parse acquires an
// exclusive parser and releases it immediately after.
type pool struct {
	parsers chan *ts.Parser
	langPtr unsafe.Pointer
	lang    Language
	isTSX   bool
	maxSize int

	mu      sync.Mutex
	created int

	logger *slog.Logger
}

func newPool(lang Language, langPtr unsafe.Pointer, isTSX bool, maxSize int, logger *slog.Logger) *pool {
	return &pool{
		parsers: make(chan *ts.Parser, maxSize),
		langPtr: langPtr,
		lang:    lang,
		isTSX:   isTSX,
		maxSize: maxSize,
		logger:  logger,
	}
}

// acquire returns an idle parser, creating one lazily while the pool is
// below maxSize. At capacity it blocks until a parser is released.
func (p *pool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.parsers:
		return parser, nil
	default:
	}

	p.mu.Lock()
	if p.created < p.maxSize {
		parser := ts.NewParser()
		if parser == nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("failed to create parser")
		}
		if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
			parser.Close()
			p.mu.Unlock()
			return nil, fmt.Errorf("failed to set %s language: %w", p.lang, err)
		}
		p.created++
		p.logger.Debug("created pooled parser",
			"language", p.lang.String(), "isTSX", p.isTSX, "created", p.created)
		p.mu.Unlock()
		return parser, nil
	}
	p.mu.Unlock()

	return <-p.parsers, nil
}

func (p *pool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.parsers <- parser:
	default:
		// Over-released parser, drop it instead of leaking.
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser", "language", p.lang.String())
	}
}

func (p *pool) close() {
	close(p.parsers)
	for parser := range p.parsers {
		if parser != nil {
			parser.Close()
		}
	}
}

func (p *pool) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// defaultPoolSize matches the analyzer's worker count so a worker never
// blocks waiting for a parser.
func defaultPoolSize() int {
	return util.OptimalPoolSize()
}

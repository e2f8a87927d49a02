package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// poolKey uniquely identifies a parser pool (language + TSX variant).
type poolKey struct {
	lang  Language
	isTSX bool
}

// Manager owns parser pools for all supported grammars, created lazily
// on first use. Safe for concurrent use; callers own returned trees and
// must call tree.Close().
type Manager struct {
	pools map[poolKey]*pool
	mu    sync.RWMutex

	logger *slog.Logger

	parsesCalled int
}

// NewManager creates a parser Manager. Close it to free tree-sitter
// resources.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pools:  make(map[poolKey]*pool),
		logger: logger,
	}
}

// Parse parses source with the given grammar. isTSX is only meaningful
// for TypeScript, where it selects the TSX variant.
//
// A tree whose root contains ERROR nodes is still returned: partial
// trees carry usable declarations and usage sites. Only a nil tree is
// treated as a parse failure.
func (m *Manager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	m.mu.Lock()
	m.parsesCalled++
	m.mu.Unlock()

	pool, err := m.getOrCreatePool(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}
	if tree.RootNode().HasError() {
		m.logger.Debug("parse tree contains errors", "language", lang.String())
	}
	return tree, nil
}

// ParseFile parses source for a file path, detecting the grammar from
// the extension.
func (m *Manager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return m.Parse(source, lang, IsTSXFile(filePath))
}

// Close releases all pooled parsers. The Manager cannot be used after.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.pools {
		if p != nil {
			p.close()
		}
	}
	m.pools = make(map[poolKey]*pool)
	m.logger.Debug("parser manager closed", "parses_called", m.parsesCalled)
	return nil
}

// Stats returns cumulative parser usage counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	created := 0
	for _, p := range m.pools {
		created += p.createdCount()
	}
	return Stats{ParsersCreated: created, ParsesCalled: m.parsesCalled}
}

// Stats holds cumulative parser usage counters.
type Stats struct {
	ParsersCreated int
	ParsesCalled   int
}

func (m *Manager) getOrCreatePool(lang Language, isTSX bool) (*pool, error) {
	key := poolKey{lang: lang, isTSX: isTSX}

	m.mu.RLock()
	p, ok := m.pools[key]
	m.mu.RUnlock()
	if ok {
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok = m.pools[key]; ok {
		return p, nil
	}

	langPtr, err := languagePointer(lang, isTSX)
	if err != nil {
		return nil, err
	}
	p = newPool(lang, langPtr, isTSX, defaultPoolSize(), m.logger)
	m.pools[key] = p
	return p, nil
}

// languagePointer returns the tree-sitter grammar pointer for a language.
func languagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

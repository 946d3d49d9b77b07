// Package pool implements the constants & strings pool from spec.md
// §4.5: an interned string table with a transactional writer, and an
// expression pool addressed by ast.Idx. Both are append-only for the
// lifetime of a compiled document, matching the invariant in spec.md
// §3 that "Indices into the expression and string pools are immutable
// for the lifetime of the document."
package pool

import (
	"strings"

	"github.com/corvidae/fluxui/internal/template/ast"
)

// StrIndex addresses one interned string in a StringPool.
type StrIndex int

// StringPool deduplicates strings on exact match and supports building
// a new string incrementally via a Txn, avoiding the intermediate
// allocations that text-segment concatenation would otherwise require
// (spec.md §4.5 rationale).
type StringPool struct {
	strs  []string
	index map[string]StrIndex
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{index: make(map[string]StrIndex)}
}

// Intern inserts s if not already present and returns its index.
func (p *StringPool) Intern(s string) StrIndex {
	if idx, ok := p.index[s]; ok {
		return idx
	}
	idx := StrIndex(len(p.strs))
	p.strs = append(p.strs, s)
	p.index[s] = idx
	return idx
}

// Get returns the string at idx.
func (p *StringPool) Get(idx StrIndex) string { return p.strs[idx] }

// Txn is an in-progress string composition. Callers write segments via
// WriteString and finish with Commit, which interns the accumulated
// text as a single pool entry.
type Txn struct {
	pool *StringPool
	buf  strings.Builder
}

// Begin starts a new write transaction against the pool.
func (p *StringPool) Begin() *Txn { return &Txn{pool: p} }

// WriteString appends s to the transaction's buffer.
func (t *Txn) WriteString(s string) { t.buf.WriteString(s) }

// Commit interns the accumulated text and returns its index.
func (t *Txn) Commit() StrIndex { return t.pool.Intern(t.buf.String()) }

// ExprPool holds every expression parsed for a document, addressable by
// ast.Idx. Index 0 is always a static Null expression so that
// ast.NullIdx is always valid.
type ExprPool struct {
	exprs []ast.Expr
}

// NewExprPool returns a pool pre-seeded with the Null expression at
// ast.NullIdx.
func NewExprPool() *ExprPool {
	return &ExprPool{exprs: []ast.Expr{{Kind: ast.ExprNull}}}
}

// Add appends e and returns its new index.
func (p *ExprPool) Add(e ast.Expr) ast.Idx {
	p.exprs = append(p.exprs, e)
	return ast.Idx(len(p.exprs) - 1)
}

// Get returns the expression at idx.
func (p *ExprPool) Get(idx ast.Idx) ast.Expr { return p.exprs[idx] }

// Len returns the number of expressions in the pool, including Null.
func (p *ExprPool) Len() int { return len(p.exprs) }

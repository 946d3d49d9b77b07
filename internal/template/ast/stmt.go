package ast

// StmtKind discriminates the flat statement stream the statement
// parser emits (spec.md §3 "Statement"). Stream order matters: the
// blueprint builder is a second pass over this flat stream.
type StmtKind int

const (
	StmtScopeStart StmtKind = iota
	StmtScopeEnd
	StmtNode
	StmtLoadAttribute
	StmtLoadValue
	StmtFor
	StmtIf
	StmtElse
	StmtSwitch
	StmtCase
	StmtDefault
	StmtWith
	StmtDeclaration
	StmtComponent
	StmtAssociatedFunction
	StmtComponentSlot
	StmtEOF
)

// DeclScope distinguishes `let` (current scope) from `global`
// (document globals) declarations.
type DeclScope int

const (
	ScopeLocal DeclScope = iota
	ScopeGlobal
)

// Stmt is one entry in the flat statement stream. Line/Col locate it in
// source for error reporting; not every field is meaningful for every
// Kind.
type Stmt struct {
	Kind StmtKind
	Line int
	Col  int

	Name string // StmtNode identifier, StmtComponent id, StmtComponentSlot name

	AttrKey  string   // StmtLoadAttribute
	Expr     Idx      // StmtLoadAttribute/LoadValue/If/Else/Switch/Case/With/Declaration condition or bound expr
	HasExpr  bool      // StmtElse: true if "else if", false if bare "else"

	Binding string // StmtFor/With binding name

	DeclName  string
	DeclScope DeclScope

	// StmtComponent: associated-function remaps parsed from the
	// `(INTERNAL -> EXTERNAL, …)` list; the parser stores them here
	// directly rather than emitting separate StmtAssociatedFunction
	// entries.
	Associations []Association
}

// Association maps one component-internal event name to the name the
// caller's scope should see it under (`INTERNAL -> EXTERNAL`).
type Association struct {
	Internal string
	External string
}

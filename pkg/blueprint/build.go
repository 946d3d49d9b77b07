package blueprint

import (
	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/perr"
)

// Build runs the second pass named in spec.md §4.3's closing paragraph:
// it turns the flat statement stream from the statement parser into a
// tree of Blueprint nodes, and separately collects every `global`
// declaration, at any depth of the tree.
func Build(stmts []ast.Stmt) (roots []*Blueprint, globals []ast.Stmt, err error) {
	roots, i, err := buildBlock(stmts, 0)
	if err != nil {
		return nil, nil, err
	}
	if i >= len(stmts) || stmts[i].Kind != ast.StmtEOF {
		return nil, nil, perr.New(perr.KindCompile, "", 0, perr.ErrUnexpectedToken)
	}
	globals = collectGlobals(roots)
	return roots, globals, nil
}

func collectGlobals(bps []*Blueprint) []ast.Stmt {
	var out []ast.Stmt
	var walk func([]*Blueprint)
	walk = func(bps []*Blueprint) {
		for _, bp := range bps {
			if bp.Kind == KindDeclaration && bp.DeclScope == ast.ScopeGlobal {
				out = append(out, ast.Stmt{Kind: ast.StmtDeclaration, DeclName: bp.DeclName, DeclScope: ast.ScopeGlobal, Expr: bp.DeclExpr})
			}
			walk(bp.Children)
			for _, arm := range bp.IfArms {
				walk(arm.Children)
			}
			for _, arm := range bp.CaseArms {
				walk(arm.Children)
			}
			for _, kids := range bp.Slots {
				walk(kids)
			}
		}
	}
	walk(bps)
	return out
}

// buildBlock parses zero or more sibling blueprints starting at i,
// stopping (without consuming) at the first StmtScopeEnd or StmtEOF.
func buildBlock(stmts []ast.Stmt, i int) ([]*Blueprint, int, error) {
	var out []*Blueprint
	for i < len(stmts) {
		switch stmts[i].Kind {
		case ast.StmtScopeEnd, ast.StmtEOF:
			return out, i, nil
		case ast.StmtNode:
			bp, ni, err := buildNode(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		case ast.StmtFor:
			bp, ni, err := buildFor(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		case ast.StmtIf:
			bp, ni, err := buildIfChain(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		case ast.StmtSwitch:
			bp, ni, err := buildSwitchChain(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		case ast.StmtWith:
			bp, ni, err := buildWith(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		case ast.StmtDeclaration:
			s := stmts[i]
			out = append(out, &Blueprint{Kind: KindDeclaration, DeclName: s.DeclName, DeclScope: s.DeclScope, DeclExpr: s.Expr})
			i++
		case ast.StmtComponent:
			bp, ni, err := buildComponent(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		case ast.StmtComponentSlot:
			bp, ni, err := buildSlot(stmts, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			out = append(out, bp)
		default:
			return nil, 0, perr.New(perr.KindCompile, "", 0, perr.ErrUnexpectedToken)
		}
	}
	return out, i, nil
}

func buildScopedChildren(stmts []ast.Stmt, i int) ([]*Blueprint, int, error) {
	if i >= len(stmts) || stmts[i].Kind != ast.StmtScopeStart {
		return nil, i, nil
	}
	i++
	kids, ni, err := buildBlock(stmts, i)
	if err != nil {
		return nil, 0, err
	}
	i = ni
	if i >= len(stmts) || stmts[i].Kind != ast.StmtScopeEnd {
		return nil, 0, perr.New(perr.KindCompile, "", 0, perr.ErrInvalidUnindent)
	}
	i++
	return kids, i, nil
}

func buildNode(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	s := stmts[i]
	i++
	bp := &Blueprint{Kind: KindNode, ElementName: s.Name, Attributes: map[string]ast.Idx{}}
	for i < len(stmts) && stmts[i].Kind == ast.StmtLoadAttribute {
		bp.Attributes[stmts[i].AttrKey] = stmts[i].Expr
		bp.AttrOrder = append(bp.AttrOrder, stmts[i].AttrKey)
		i++
	}
	if i < len(stmts) && stmts[i].Kind == ast.StmtLoadValue {
		bp.Value = stmts[i].Expr
		bp.HasValue = true
		i++
	}
	kids, ni, err := buildScopedChildren(stmts, i)
	if err != nil {
		return nil, 0, err
	}
	bp.Children = kids
	return bp, ni, nil
}

func buildFor(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	s := stmts[i]
	i++
	bp := &Blueprint{Kind: KindFor, ForBinding: s.Binding, ForExpr: s.Expr}
	kids, ni, err := buildScopedChildren(stmts, i)
	if err != nil {
		return nil, 0, err
	}
	bp.Children = kids
	return bp, ni, nil
}

func buildWith(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	s := stmts[i]
	i++
	bp := &Blueprint{Kind: KindWith, WithBinding: s.Binding, WithExpr: s.Expr}
	kids, ni, err := buildScopedChildren(stmts, i)
	if err != nil {
		return nil, 0, err
	}
	bp.Children = kids
	return bp, ni, nil
}

func buildSlot(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	s := stmts[i]
	i++
	bp := &Blueprint{Kind: KindSlotPlacement, SlotName: s.Name}
	kids, ni, err := buildScopedChildren(stmts, i)
	if err != nil {
		return nil, 0, err
	}
	bp.Children = kids
	return bp, ni, nil
}

func buildIfChain(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	bp := &Blueprint{Kind: KindIfChain}
	for {
		s := stmts[i]
		var cond ast.Idx
		hasCond := true
		if s.Kind == ast.StmtElse {
			hasCond = s.HasExpr
			cond = s.Expr
		} else {
			cond = s.Expr
		}
		i++
		kids, ni, err := buildScopedChildren(stmts, i)
		if err != nil {
			return nil, 0, err
		}
		i = ni
		bp.IfArms = append(bp.IfArms, IfArm{Cond: cond, HasCond: hasCond, Children: kids})
		if !hasCond {
			break // unconditional else ends the chain
		}
		if i < len(stmts) && stmts[i].Kind == ast.StmtElse {
			continue
		}
		break
	}
	return bp, i, nil
}

func buildSwitchChain(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	s := stmts[i]
	i++
	bp := &Blueprint{Kind: KindSwitchChain, SwitchExpr: s.Expr}
	if i >= len(stmts) || stmts[i].Kind != ast.StmtScopeStart {
		return bp, i, nil
	}
	i++
	for i < len(stmts) && (stmts[i].Kind == ast.StmtCase || stmts[i].Kind == ast.StmtDefault) {
		arm := CaseArm{IsDefault: stmts[i].Kind == ast.StmtDefault, Cond: stmts[i].Expr}
		i++
		kids, ni, err := buildScopedChildren(stmts, i)
		if err != nil {
			return nil, 0, err
		}
		i = ni
		arm.Children = kids
		bp.CaseArms = append(bp.CaseArms, arm)
	}
	if i >= len(stmts) || stmts[i].Kind != ast.StmtScopeEnd {
		return nil, 0, perr.New(perr.KindCompile, "", 0, perr.ErrInvalidUnindent)
	}
	i++
	return bp, i, nil
}

func buildComponent(stmts []ast.Stmt, i int) (*Blueprint, int, error) {
	s := stmts[i]
	i++
	bp := &Blueprint{Kind: KindComponentInstance, ComponentName: s.Name, Associations: s.Associations, Slots: map[string][]*Blueprint{}}
	if i < len(stmts) && stmts[i].Kind == ast.StmtLoadValue {
		i++ // component value expressions aren't currently exposed to slots; reserved for future extension
	}
	kids, ni, err := buildScopedChildren(stmts, i)
	if err != nil {
		return nil, 0, err
	}
	for _, kid := range kids {
		if kid.Kind == KindSlotPlacement && kid.Children != nil {
			bp.Slots[kid.SlotName] = kid.Children
			continue
		}
		bp.Slots[""] = append(bp.Slots[""], kid)
	}
	return bp, ni, nil
}

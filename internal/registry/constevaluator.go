// Package registry - literal type evaluation.
package registry

import (
	"strconv"
	"strings"

	"github.com/griffnb/tsschema/internal/domain"
)

// EvaluateLiteral reduces a type expression to a single literal value.
// Literals evaluate to themselves, template literals to the concatenation of
// their parts and references to the value of the aliased type.
func (s *Service) EvaluateLiteral(scope domain.Scope, node *domain.TypeNode) (interface{}, bool) {
	return s.evaluateLiteral(scope, node, make(map[string]struct{}))
}

func (s *Service) evaluateLiteral(scope domain.Scope, node *domain.TypeNode, recursiveStack map[string]struct{}) (interface{}, bool) {
	if node == nil {
		return nil, false
	}

	switch node.Kind {
	case domain.KindLiteral:
		return node.Value, true
	case domain.KindTemplate:
		var b strings.Builder
		for i, part := range node.Parts {
			b.WriteString(part)
			if i >= len(node.Types) {
				continue
			}
			value, ok := s.evaluateLiteral(scope, node.Types[i], recursiveStack)
			if !ok {
				return nil, false
			}
			text, ok := literalText(value)
			if !ok {
				return nil, false
			}
			b.WriteString(text)
		}
		return b.String(), true
	case domain.KindReference:
		if len(node.Args) > 0 {
			return nil, false
		}
		sym, err := s.Resolve(scope, node.NamePath())
		if err != nil || sym.Declaration.Kind != domain.DeclAlias {
			return nil, false
		}
		key := sym.ID.Key()
		if _, ok := recursiveStack[key]; ok {
			return nil, false
		}
		recursiveStack[key] = struct{}{}
		defer delete(recursiveStack, key)

		declScope := domain.Scope{Path: sym.ID.Path, Namespace: scopeOf(sym.ID.Names)}
		return s.evaluateLiteral(declScope, sym.Declaration.Type, recursiveStack)
	}
	return nil, false
}

func literalText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "null", true
	}
	return "", false
}

package yangcontext

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/gval"
)

// if-feature expressions are YANG boolean expressions over feature names:
// "foo and (bar or not p:baz)". The names are rewritten to generated
// variables and the operators to propositional logic so gval can evaluate
// the expression directly.
var featureLanguage = gval.NewLanguage(gval.PropositionalLogic())

// featureTokens splits an if-feature expression into parentheses, operator
// keywords and feature names.
func featureTokens(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")
	return strings.Fields(expr)
}

// featureRefs lists the feature names an if-feature expression refers to.
func featureRefs(expr string) []string {
	var refs []string
	for _, tok := range featureTokens(expr) {
		switch tok {
		case "and", "or", "not", "(", ")":
		default:
			refs = append(refs, tok)
		}
	}
	return refs
}

// evalIfFeature evaluates the expression with the lookup supplying the
// state of each referenced feature.
func evalIfFeature(expr string, lookup func(name string) (bool, error)) (bool, error) {
	var rewritten strings.Builder
	params := map[string]interface{}{}
	n := 0
	for _, tok := range featureTokens(expr) {
		switch tok {
		case "and":
			rewritten.WriteString(" && ")
		case "or":
			rewritten.WriteString(" || ")
		case "not":
			rewritten.WriteString(" !")
		case "(", ")":
			rewritten.WriteString(tok)
		default:
			state, err := lookup(tok)
			if err != nil {
				return false, err
			}
			name := fmt.Sprintf("f%d", n)
			n++
			params[name] = state
			rewritten.WriteString(" " + name + " ")
		}
	}
	if n == 0 {
		return false, Errorf(EInval, "if-feature %q has no feature reference", expr)
	}
	v, err := featureLanguage.Evaluate(rewritten.String(), params)
	if err != nil {
		return false, WrapErrorf(EInval, err, "if-feature %q", expr)
	}
	b, ok := v.(bool)
	if !ok {
		return false, Errorf(EInval, "if-feature %q is not boolean", expr)
	}
	return b, nil
}

// evaluateFeatures recomputes the enabled state of every feature in the
// module set. A feature with no if-feature is enabled; the rest follow
// their expressions, iterated to a fixpoint since features may depend on
// features defined later or in other modules.
func (c *Context) evaluateFeatures(set []*Module) {
	for _, m := range set {
		for _, f := range m.Features {
			f.Enabled = len(f.IfFeature) == 0
		}
	}
	for changed := true; changed; {
		changed = false
		for _, m := range set {
			for _, f := range m.Features {
				if f.Enabled || len(f.IfFeature) == 0 {
					continue
				}
				on := true
				for _, expr := range f.IfFeature {
					v, err := evalIfFeature(expr, func(name string) (bool, error) {
						ref := m.resolveFeatureRef(name)
						if ref == nil {
							return false, nil
						}
						return ref.Enabled, nil
					})
					if err != nil || !v {
						on = false
						break
					}
				}
				if on {
					f.Enabled = true
					changed = true
				}
			}
		}
	}
}

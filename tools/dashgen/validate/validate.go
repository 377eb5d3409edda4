// Package validate checks generated dashboards and rule files against the
// set of metrics the gateway actually exports, so a renamed metric fails the
// build instead of silently blanking a panel.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/storeflow/gateway/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail validation; warnings are
// advisory.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation passed.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Dashboard validates every PromQL expression in a built dashboard: each must
// parse, and every metric it selects must be a known metric or recording rule.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var result Result

	raw, err := json.Marshal(dash)
	if err != nil {
		result.errorf("marshaling dashboard: %v", err)
		return result
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		result.errorf("re-parsing dashboard JSON: %v", err)
		return result
	}

	for _, expr := range collectExprs(tree) {
		checkExpr(&result, expr, known)
	}
	return result
}

// Rules validates every recording and alert expression in a PrometheusRule CR.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var result Result
	for _, group := range cr.Spec.Groups {
		for _, rule := range group.Rules {
			checkExpr(&result, rule.Expr, known)
		}
	}
	return result
}

// collectExprs walks decoded JSON and gathers every "expr" string value.
func collectExprs(node any) []string {
	var exprs []string
	switch v := node.(type) {
	case map[string]any:
		for key, val := range v {
			if key == "expr" {
				if s, ok := val.(string); ok && s != "" {
					exprs = append(exprs, s)
					continue
				}
			}
			exprs = append(exprs, collectExprs(val)...)
		}
	case []any:
		for _, item := range v {
			exprs = append(exprs, collectExprs(item)...)
		}
	}
	return exprs
}

func checkExpr(result *Result, expr string, known map[string]bool) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		result.errorf("invalid PromQL %q: %v", expr, err)
		return
	}

	//nolint:errcheck // the walk function never returns an error
	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !knownMetric(vs.Name, known) {
			result.errorf("expression %q selects unknown metric %q", expr, vs.Name)
		}
		return nil
	})
}

// knownMetric checks a selector name against the known set, accepting
// histogram series suffixes for known histogram base names.
func knownMetric(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// Package matching evaluates handler match criteria against captured
// requests.
package matching

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/interceptd/interceptd/pkg/handler"
)

// Matches reports whether the request satisfies every configured condition
// of the handler's criteria. Method and path are checked by the registry
// before this runs; only the extra conditions are evaluated here.
func Matches(c *handler.Criteria, req *handler.Request) bool {
	if c.Empty() {
		return true
	}

	for name, want := range c.Headers {
		if req.Header.Get(name) != want {
			return false
		}
	}

	for name, want := range c.Query {
		if req.Query.Get(name) != want {
			return false
		}
	}

	if c.BodyEquals != "" && string(req.Body) != c.BodyEquals {
		return false
	}

	if c.BodyContains != "" && !strings.Contains(string(req.Body), c.BodyContains) {
		return false
	}

	if len(c.BodyJSONPath) > 0 && !matchJSONPath(c.BodyJSONPath, req.Body) {
		return false
	}

	if c.When != "" {
		ok, err := evalWhen(c.When, req)
		if err != nil || !ok {
			return false
		}
	}

	return true
}

// evalWhen compiles and runs a when-expression with the captured request as
// the environment. A failing or non-boolean expression counts as no match
// rather than an error, so a typo'd predicate surfaces as an unhandled
// request in the test.
func evalWhen(expression string, req *handler.Request) (bool, error) {
	env := map[string]any{
		"method":  req.Method,
		"path":    req.Path,
		"params":  stringMap(req.Params),
		"query":   firstValues(req.Query),
		"headers": firstValues(req.Header),
		"body":    string(req.Body),
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, err
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	ok, isBool := result.(bool)
	return isBool && ok, nil
}

func stringMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// firstValues flattens a multi-value map to its first values, which is what
// when-expressions almost always want.
func firstValues[M ~map[string][]string](m M) map[string]string {
	out := make(map[string]string, len(m))
	for k, vals := range m {
		if len(vals) > 0 {
			out[strings.ToLower(k)] = vals[0]
		}
	}
	return out
}

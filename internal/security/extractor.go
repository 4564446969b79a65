// Package security infers the authentication mechanism and authorization
// rules declared in Spring Security filter-chain configuration.
//
// Detection works on the call-chain view of each configuration method body
// and is a best-effort classifier: rules reached through shapes other than
// a matcher call or anyRequest() are not reported.
package security

import (
	"strings"

	"spec-synth/internal/analyzer"
	"spec-synth/internal/javaparser"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
)

const filterChainType = "SecurityFilterChain"

var matcherCalls = map[string]bool{
	"requestMatchers": true,
	"antMatchers":     true,
	"mvcMatchers":     true,
}

var jwtNames = []string{"JwtAuthenticationFilter", "JwtTokenFilter", "JwtUtil"}

var customFilterCalls = []string{"addFilter", "addFilterBefore", "addFilterAfter", "addFilterAt"}

// Result is the merged security model plus the findings gathered on the way.
type Result struct {
	Model       model.SecurityModel
	Methods     int // configuration methods inspected
	Diagnostics logger.Diagnostics
}

// ExtractFrom parses root and extracts its security model.
func ExtractFrom(root string, opts analyzer.Options) (*Result, error) {
	tree, err := analyzer.ParseTree(root, opts)
	if err != nil {
		return nil, err
	}
	res := Extract(tree.Units)
	diags := append(logger.Diagnostics{}, tree.Diagnostics...)
	diags.Append(res.Diagnostics)
	res.Diagnostics = diags
	return res, nil
}

// Extract inspects every method returning a security filter chain. Rules
// keep discovery order; the mechanism is the strongest one seen. A tree
// without configuration yields the empty model.
func Extract(units []*javaparser.CompilationUnit) *Result {
	res := &Result{Model: model.EmptySecurity()}
	for _, cu := range units {
		for _, td := range cu.AllTypes() {
			for i := range td.Methods {
				m := &td.Methods[i]
				if !strings.Contains(m.ReturnType, filterChainType) || m.Body == "" {
					continue
				}
				body, err := javaparser.ParseBody(m.Body)
				if err != nil {
					res.Diagnostics.Add(logger.LevelWarn, cu.Path, "%s.%s: %v", td.Name, m.Name, err)
					continue
				}
				res.Methods++

				mech := DetectMechanism(body)
				res.Model.Mechanism = model.Stronger(res.Model.Mechanism, mech)
				res.Diagnostics.Add(logger.LevelDebug, cu.Path, "%s.%s: mechanism %s", td.Name, m.Name, mech)

				rules := Rules(body, func(format string, args ...interface{}) {
					res.Diagnostics.Add(logger.LevelDebug, cu.Path, format, args...)
				})
				res.Model.Rules = append(res.Model.Rules, rules...)
			}
		}
	}
	return res
}

// DetectMechanism classifies a configuration body, checking in priority
// order: resource-server JWT, JWT filter naming, HTTP basic, form login or
// session management, custom filter registration.
func DetectMechanism(body *javaparser.Body) model.AuthMechanism {
	switch {
	case body.HasCall("oauth2ResourceServer") && body.HasCall("jwt"):
		return model.MechanismBearerJWT
	case mentionsJWT(body):
		return model.MechanismBearerJWT
	case body.HasCall("httpBasic"):
		return model.MechanismBasic
	case body.HasCall("formLogin") || body.HasCall("sessionManagement"):
		return model.MechanismSession
	}
	for _, name := range customFilterCalls {
		if body.HasCall(name) {
			return model.MechanismOther
		}
	}
	return model.MechanismNone
}

func mentionsJWT(body *javaparser.Body) bool {
	for _, name := range jwtNames {
		lower := strings.ToLower(name[:1]) + name[1:]
		if body.Idents[name] || body.Idents[lower] {
			return true
		}
	}
	return false
}

// Rules extracts one rule per pattern for every authorization decision
// whose immediate receiver is a matcher call or anyRequest(). Other
// receiver shapes are reported through debugf and dropped.
func Rules(body *javaparser.Body, debugf func(format string, args ...interface{})) []model.SecurityRule {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}
	var rules []model.SecurityRule
	for _, call := range body.Calls {
		kind, ok := model.ParseRuleKind(call.Name)
		if !ok {
			continue
		}
		roles := []string{}
		if kind.TakesRoles() {
			roles = stringArgs(call.Args)
		}

		recv := call.Receiver
		switch {
		case recv == nil:
			debugf("line %d: %s() without a matcher receiver, no rule emitted", call.Line, call.Name)
		case recv.Name == "anyRequest":
			rules = append(rules, model.SecurityRule{Pattern: "/**", Kind: kind, Roles: roles})
		case matcherCalls[recv.Name]:
			rules = append(rules, matcherRules(recv, kind, roles, debugf)...)
		default:
			debugf("line %d: %s() on %s() is not a recognized matcher, no rule emitted", call.Line, call.Name, recv.Name)
		}
	}
	return rules
}

func matcherRules(m *javaparser.Call, kind model.RuleKind, roles []string, debugf func(string, ...interface{})) []model.SecurityRule {
	args := m.Args
	if len(args) == 0 {
		return nil
	}

	var method *model.HTTPMethod
	if first := args[0]; first.Kind == javaparser.ExprField || first.Kind == javaparser.ExprName {
		verb, ok := model.ParseHTTPMethod(first.Text)
		switch {
		case ok:
			method = &verb
			args = args[1:]
		case strings.HasPrefix(first.Text, "HttpMethod."):
			debugf("line %d: %s is not a modeled verb, no rule emitted", m.Line, first.Text)
			return nil
		}
	}

	var rules []model.SecurityRule
	for _, pattern := range stringArgs(args) {
		rules = append(rules, model.SecurityRule{
			Method:  method,
			Pattern: pattern,
			Kind:    kind,
			Roles:   append([]string{}, roles...),
		})
	}
	return rules
}

func stringArgs(args []javaparser.Expr) []string {
	out := []string{}
	for _, a := range args {
		if a.Kind == javaparser.ExprString {
			out = append(out, a.Text)
		}
	}
	return out
}

package assembler

import (
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/openapi"
	"spec-synth/internal/security"
)

// SchemeFor returns the securitySchemes entry for a mechanism. ok is false
// for MechanismNone.
func SchemeFor(m model.AuthMechanism) (name string, scheme *openapi.SecurityScheme, ok bool) {
	switch m {
	case model.MechanismBearerJWT:
		return "bearerAuth", &openapi.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "JWT bearer token: Authorization: Bearer <token>.",
		}, true
	case model.MechanismBasic:
		return "basicAuth", &openapi.SecurityScheme{Type: "http", Scheme: "basic"}, true
	case model.MechanismSession:
		return "sessionCookie", &openapi.SecurityScheme{
			Type:        "apiKey",
			In:          "cookie",
			Name:        "JSESSIONID",
			Description: "Servlet session cookie issued after form login.",
		}, true
	case model.MechanismOther:
		return "customAuth", &openapi.SecurityScheme{
			Type:        "apiKey",
			In:          "header",
			Name:        "Authorization",
			Description: "Credentials checked by a custom filter.",
		}, true
	}
	return "", nil, false
}

// applySecurity registers the scheme and marks every operation with the
// rule that governs it. Nothing is written when no mechanism was detected.
func applySecurity(doc *openapi.Document, sm model.SecurityModel, diags *logger.Diagnostics) {
	name, scheme, ok := SchemeFor(sm.Mechanism)
	if !ok {
		return
	}
	doc.Components.SecuritySchemes.Set(name, scheme)

	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Operations() {
			op := mo.Operation
			rule := security.Resolve(sm, mo.Method, path)
			if rule == nil {
				diags.Add(logger.LevelDebug, "", "%s %s: no security rule matched, assuming %s", mo.Method, path, name)
			}
			if rule != nil && rule.Kind == model.RulePermitAll {
				op.Security = []openapi.SecurityRequirement{}
				op.SetExtension("x-security", "public")
				continue
			}
			op.Security = []openapi.SecurityRequirement{{name: []string{}}}
			op.SetExtension("x-security", name)
			if rule != nil && rule.Kind.TakesRoles() && len(rule.Roles) > 0 {
				op.SetExtension("x-required-roles", append([]string(nil), rule.Roles...))
			}
		}
	}
}

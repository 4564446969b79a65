package model

// RuleKind is the authorization decision attached to a matcher.
type RuleKind string

const (
	RulePermitAll       RuleKind = "permitAll"
	RuleAuthenticated   RuleKind = "authenticated"
	RuleHasRole         RuleKind = "hasRole"
	RuleHasAnyRole      RuleKind = "hasAnyRole"
	RuleHasAuthority    RuleKind = "hasAuthority"
	RuleHasAnyAuthority RuleKind = "hasAnyAuthority"
)

// ParseRuleKind recognizes the six decision call names.
func ParseRuleKind(name string) (RuleKind, bool) {
	switch RuleKind(name) {
	case RulePermitAll, RuleAuthenticated, RuleHasRole, RuleHasAnyRole, RuleHasAuthority, RuleHasAnyAuthority:
		return RuleKind(name), true
	}
	return "", false
}

// TakesRoles reports whether the decision carries role or authority names.
func (k RuleKind) TakesRoles() bool {
	switch k {
	case RuleHasRole, RuleHasAnyRole, RuleHasAuthority, RuleHasAnyAuthority:
		return true
	}
	return false
}

// SecurityRule binds a path pattern (and optionally a verb) to a decision.
type SecurityRule struct {
	Method  *HTTPMethod // nil matches any verb
	Pattern string
	Kind    RuleKind
	Roles   []string
}

// AuthMechanism is the inferred authentication scheme.
type AuthMechanism string

const (
	MechanismNone      AuthMechanism = "none"
	MechanismBearerJWT AuthMechanism = "bearerJwt"
	MechanismBasic     AuthMechanism = "basic"
	MechanismSession   AuthMechanism = "session"
	MechanismOther     AuthMechanism = "other"
)

func (m AuthMechanism) rank() int {
	switch m {
	case MechanismBearerJWT:
		return 4
	case MechanismBasic:
		return 3
	case MechanismSession:
		return 2
	case MechanismOther:
		return 1
	}
	return 0
}

// Stronger returns whichever mechanism ranks higher in
// bearerJwt > basic > session > other > none.
func Stronger(a, b AuthMechanism) AuthMechanism {
	if b.rank() > a.rank() {
		return b
	}
	if a == "" {
		return MechanismNone
	}
	return a
}

// SecurityModel is the merged result of all security configuration methods.
type SecurityModel struct {
	Rules     []SecurityRule
	Mechanism AuthMechanism
}

// EmptySecurity is the model for a project without security configuration.
func EmptySecurity() SecurityModel {
	return SecurityModel{Rules: []SecurityRule{}, Mechanism: MechanismNone}
}

package javaparser

import (
	"testing"
)

func callNames(b *Body) []string {
	var out []string
	for _, c := range b.Calls {
		out = append(out, c.Name)
	}
	return out
}

func TestParseBodyLambdaDSL(t *testing.T) {
	src := `
        http
            .csrf(csrf -> csrf.disable())
            .authorizeHttpRequests(auth -> auth
                .requestMatchers(HttpMethod.GET, "/api/public/**", "/health").permitAll()
                .requestMatchers("/admin/" + "**").hasAnyRole("ADMIN", "OPS")
                .anyRequest().authenticated())
            .oauth2ResourceServer(oauth -> oauth.jwt(Customizer.withDefaults()));
        return http.build();
`
	body, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody failed: %v", err)
	}

	want := []string{
		"csrf", "disable", "authorizeHttpRequests", "requestMatchers", "permitAll",
		"requestMatchers", "hasAnyRole", "anyRequest", "authenticated",
		"oauth2ResourceServer", "jwt", "withDefaults", "build",
	}
	got := callNames(body)
	if len(got) != len(want) {
		t.Fatalf("calls = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, expected %s", i, got[i], want[i])
		}
	}

	permit := body.Calls[4]
	if permit.Receiver == nil || permit.Receiver.Name != "requestMatchers" {
		t.Fatalf("permitAll receiver = %+v", permit.Receiver)
	}
	args := permit.Receiver.Args
	if len(args) != 3 || args[0].Kind != ExprField || args[0].Text != "HttpMethod.GET" {
		t.Errorf("matcher args = %+v", args)
	}
	if args[1].Kind != ExprString || args[1].Text != "/api/public/**" {
		t.Errorf("pattern arg = %+v", args[1])
	}

	roles := body.Calls[6]
	if roles.Receiver.Args[0].Text != "/admin/**" {
		t.Errorf("concatenated pattern = %+v", roles.Receiver.Args[0])
	}
	if len(roles.Args) != 2 || roles.Args[1].Text != "OPS" {
		t.Errorf("role args = %+v", roles.Args)
	}

	if body.Calls[3].ReceiverText != "auth" {
		t.Errorf("first matcher receiver text = %q", body.Calls[3].ReceiverText)
	}
	if body.Calls[0].ReceiverText != "http" {
		t.Errorf("csrf receiver text = %q", body.Calls[0].ReceiverText)
	}
	if !body.HasCall("oauth2ResourceServer") || !body.HasCall("jwt") {
		t.Error("HasCall should find oauth2ResourceServer and jwt")
	}
}

func TestParseBodyLegacyChain(t *testing.T) {
	src := `
        http.addFilterBefore(new JwtTokenFilter(jwtUtil), UsernamePasswordAuthenticationFilter.class);
        http.authorizeRequests()
            .antMatchers("/login").permitAll()
            .and()
            .httpBasic();
        for (String p : paths) { registry.mvcMatchers(p).authenticated(); }
        if (enabled) { http.formLogin(); } else { http.sessionManagement(); }
`
	body, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody failed: %v", err)
	}

	for _, name := range []string{"addFilterBefore", "JwtTokenFilter", "authorizeRequests", "antMatchers", "httpBasic", "mvcMatchers", "formLogin", "sessionManagement"} {
		if name == "JwtTokenFilter" {
			if !body.Idents[name] {
				t.Errorf("identifier %s not recorded", name)
			}
			continue
		}
		if !body.HasCall(name) {
			t.Errorf("call %s not found in %v", name, callNames(body))
		}
	}

	var ant *Call
	for _, c := range body.Calls {
		if c.Name == "permitAll" {
			ant = c.Receiver
		}
	}
	if ant == nil || ant.Name != "antMatchers" || ant.Receiver == nil || ant.Receiver.Name != "authorizeRequests" {
		t.Errorf("chain not linked: %+v", ant)
	}

	filter := body.Calls[0]
	if len(filter.Args) != 2 || filter.Args[1].Kind != ExprField {
		t.Errorf("addFilterBefore args = %+v", filter.Args)
	}
}

func TestParseBodyMalformed(t *testing.T) {
	if _, err := ParseBody(`http.csrf("unterminated`); err == nil {
		t.Error("expected lexical error")
	}
	body, err := ParseBody(`http.a(b.c(;`)
	if err != nil {
		t.Fatalf("structural damage should be tolerated: %v", err)
	}
	if !body.HasCall("a") || !body.HasCall("c") {
		t.Errorf("calls = %v", callNames(body))
	}
}

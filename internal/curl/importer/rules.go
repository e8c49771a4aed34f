package importer

import (
	"strings"

	"github.com/unkn0wn-root/reqtree/internal/curl"
	"github.com/unkn0wn-root/reqtree/internal/request"
)

// Rules are tried in order; the first one that applies wins.
type methodRule func(p *curl.Parsed) (request.Method, bool)

type authRule func(p *curl.Parsed) (request.Auth, bool)

var methodRules = []methodRule{
	explicitWriteMethod,
	bodyImpliesPost,
}

var authRules = []authRule{
	basicFromUser,
	bearerFromHeader,
}

// explicitWriteMethod honours -X only for PUT and DELETE. Any other -X value,
// GET included, defers to the body rule.
func explicitWriteMethod(p *curl.Parsed) (request.Method, bool) {
	x, ok := p.Flag(curl.FlagRequest)
	if !ok {
		return "", false
	}
	switch m := request.Method(strings.TrimSpace(x)); m {
	case request.MethodPut, request.MethodDelete:
		return m, true
	}
	return "", false
}

func bodyImpliesPost(p *curl.Parsed) (request.Method, bool) {
	if p.RawBody != "" {
		return request.MethodPost, true
	}
	return "", false
}

func inferMethod(p *curl.Parsed) request.Method {
	for _, rule := range methodRules {
		if m, ok := rule(p); ok {
			return m
		}
	}
	return request.MethodGet
}

func basicFromUser(p *curl.Parsed) (request.Auth, bool) {
	creds, ok := p.Flag(curl.FlagUser)
	if !ok {
		return request.Auth{}, false
	}
	user, pass, ok := strings.Cut(creds, ":")
	if !ok {
		return request.Auth{}, false
	}
	return request.Basic(user, pass), true
}

func bearerFromHeader(p *curl.Parsed) (request.Auth, bool) {
	value, ok := p.Header(request.HeaderAuthorization)
	if !ok {
		return request.Auth{}, false
	}
	fields := strings.Fields(value)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return request.Auth{}, false
	}
	return request.Bearer(fields[1]), true
}

func detectAuth(p *curl.Parsed) request.Auth {
	for _, rule := range authRules {
		if a, ok := rule(p); ok {
			return a
		}
	}
	return request.NoAuth()
}

package request

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

const HeaderAuthorization = "Authorization"

// KeyValue is one header or query parameter row. Disabled rows are kept
// but not applied.
type KeyValue struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Key     string `json:"key"     yaml:"key"`
	Value   string `json:"value"   yaml:"value"`
}

func Pair(key, value string) KeyValue {
	return KeyValue{Enabled: true, Key: key, Value: value}
}

// Request never carries a query string in URL (see Params) and never carries an
// Authorization header (see Auth).
type Request struct {
	Name    string     `json:"name"    yaml:"name"`
	Method  Method     `json:"method"  yaml:"method"`
	URL     string     `json:"url"     yaml:"url"`
	Params  []KeyValue `json:"params"  yaml:"params"`
	Headers []KeyValue `json:"headers" yaml:"headers"`
	Auth    Auth       `json:"auth"    yaml:"auth"`
	Body    Body       `json:"body"    yaml:"body"`
}

func NewRequest(name string) Request {
	return Request{
		Name:    name,
		Method:  MethodGet,
		Params:  []KeyValue{},
		Headers: []KeyValue{},
		Auth:    NoAuth(),
		Body:    NoBody(),
	}
}

func (r Request) Clone() Request {
	out := r
	out.Params = append([]KeyValue(nil), r.Params...)
	out.Headers = append([]KeyValue(nil), r.Headers...)
	if out.Params == nil {
		out.Params = []KeyValue{}
	}
	if out.Headers == nil {
		out.Headers = []KeyValue{}
	}
	return out
}

// FullURL appends the enabled params to URL in order.
func (r Request) FullURL() string {
	q := EncodeQuery(r.Params)
	if q == "" {
		return r.URL
	}
	base, frag, hasFrag := strings.Cut(r.URL, "#")
	out := base + "?" + q
	if hasFrag {
		out += "#" + frag
	}
	return out
}

func EncodeQuery(params []KeyValue) string {
	var b strings.Builder
	for _, p := range params {
		if !p.Enabled {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// SplitURL parses an absolute URL and moves its query into enabled params,
// preserving order of appearance.
func SplitURL(raw string) (string, []KeyValue, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", nil, errdef.Wrap(errdef.CodeURL, err, "could not parse URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, errdef.New(errdef.CodeURL, "could not parse URL: %q is not absolute", trimmed)
	}

	params := DecodeQuery(u.RawQuery)
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String(), params, nil
}

// DecodeQuery form-decodes a raw query. Undecodable pieces are kept verbatim.
func DecodeQuery(raw string) []KeyValue {
	params := []KeyValue{}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		params = append(params, Pair(unescapeLenient(k), unescapeLenient(v)))
	}
	return params
}

func unescapeLenient(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

// Normalize restores the model invariants on data that did not come through
// the importer, e.g. hand-edited collection files.
func (r *Request) Normalize() {
	if r.Method == "" {
		r.Method = MethodGet
	}
	if r.Body.Kind == "" {
		r.Body.Kind = BodyNone
	}
	r.Auth = r.Auth.normalized()

	if base, query, ok := strings.Cut(r.URL, "?"); ok {
		frag := ""
		if q, f, hasFrag := strings.Cut(query, "#"); hasFrag {
			query, frag = q, "#"+f
		}
		r.URL = base + frag
		r.Params = append(DecodeQuery(query), r.Params...)
	}
	if r.Params == nil {
		r.Params = []KeyValue{}
	}

	headers := make([]KeyValue, 0, len(r.Headers))
	for _, h := range r.Headers {
		if !strings.EqualFold(h.Key, HeaderAuthorization) {
			headers = append(headers, h)
			continue
		}
		if r.Auth.Kind == AuthNone && h.Enabled {
			r.Auth = authFromHeader(h.Value)
		}
	}
	r.Headers = headers
}

func authFromHeader(value string) Auth {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return NoAuth()
	}
	switch {
	case strings.EqualFold(fields[0], "Bearer"):
		return Bearer(fields[1])
	case strings.EqualFold(fields[0], "Basic"):
		decoded, err := base64.StdEncoding.DecodeString(fields[1])
		if err != nil {
			return NoAuth()
		}
		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return NoAuth()
		}
		return Basic(user, pass)
	default:
		return NoAuth()
	}
}

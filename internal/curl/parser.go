package curl

import (
	"strings"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

var errNotCurlCommand = errdef.New(errdef.CodeCurl, "not a curl command")

type Header struct {
	Name  string
	Value string
}

// Parsed is the grammar-level view of one curl invocation. Flags holds the
// last value of each recognised scalar flag keyed by its short letter;
// presence-only flags map to "".
type Parsed struct {
	URL      string
	Flags    map[string]string
	Headers  []Header
	RawBody  string
	Warnings []string
}

func (p *Parsed) Flag(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.Flags[name]
	return v, ok
}

// Header returns the first header named name, ignoring case.
func (p *Parsed) Header(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Parser turns curl command text into a Parsed value.
type Parser interface {
	Parse(text string) (*Parsed, error)
}

type parser struct{}

func NewParser() Parser {
	return parser{}
}

func (parser) Parse(text string) (*Parsed, error) {
	return Parse(text)
}

// Parse reads the first curl command in text. Only its first --next segment
// is kept.
func Parse(text string) (*Parsed, error) {
	if cmd, ok := FirstCommand(text); ok {
		text = cmd
	}
	tok, err := splitTokens(text)
	if err != nil {
		return nil, err
	}
	cmd, err := parseCmd(tok)
	if err != nil {
		return nil, err
	}
	if len(cmd.Segs) == 0 {
		return nil, errdef.New(errdef.CodeCurl, "curl command missing URL")
	}
	p, err := normSeg(cmd.Segs[0])
	if err != nil {
		return nil, err
	}
	if len(cmd.Segs) > 1 {
		p.Warnings = append(p.Warnings, nextSegmentMsg)
	}
	return p, nil
}

type segState struct {
	flags map[string]string
	hdr   []Header
	body  []string
	query []string
	url   string
	zip   bool
	json  bool
	warn  *warnings
}

func normSeg(seg Seg) (*Parsed, error) {
	st := &segState{
		flags: map[string]string{},
		warn:  &warnings{},
	}
	st.warn.UnknownFlags(seg.Unk)

	for _, it := range seg.Items {
		if it.IsOpt {
			applyOpt(st, it.Opt)
		} else {
			applyPos(st, it.Pos)
		}
	}

	if st.url == "" {
		return nil, errdef.New(errdef.CodeCurl, "curl command missing URL")
	}

	if len(st.query) > 0 {
		st.url = appendQuery(st.url, strings.Join(st.query, bodySeparator))
	}
	body := strings.Join(st.body, bodySeparator)
	if _, get := st.flags[FlagGet]; get && body != "" {
		st.url = appendQuery(st.url, body)
		body = ""
	}
	if st.json {
		st.ensureHeader(headerContentType, mimeJSON)
		st.ensureHeader(headerAccept, mimeJSON)
	}
	if st.zip {
		st.ensureHeader(headerAcceptEncoding, defaultEncode)
	}

	return &Parsed{
		URL:      st.url,
		Flags:    st.flags,
		Headers:  st.hdr,
		RawBody:  body,
		Warnings: st.warn.List(),
	}, nil
}

func (st *segState) ensureHeader(name, value string) {
	for _, h := range st.hdr {
		if strings.EqualFold(h.Name, name) {
			return
		}
	}
	st.hdr = append(st.hdr, Header{Name: name, Value: value})
}

func appendQuery(rawURL, query string) string {
	base, frag, hasFrag := strings.Cut(rawURL, "#")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			sep = ""
		}
	}
	out := base + sep + query
	if hasFrag {
		out += "#" + frag
	}
	return out
}

func consumeNext(tokens []string, idx *int, flag string) (string, error) {
	*idx++
	if *idx >= len(tokens) {
		return "", errdef.New(errdef.CodeCurl, "missing argument for %s", flag)
	}
	return tokens[*idx], nil
}

func findCurlIndex(tokens []string) (int, bool) {
	for i, tok := range tokens {
		if isCurlWord(stripPromptPrefix(tok)) {
			return i, true
		}
	}
	return 0, false
}

func isCurlWord(word string) bool {
	return strings.EqualFold(strings.TrimSpace(word), cmdCurl)
}

func splitHeader(header string) (string, string) {
	name, value, _ := strings.Cut(header, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	return name, strings.TrimSpace(value)
}

func stripPromptPrefix(token string) string {
	trimmed := strings.TrimSpace(token)
	for _, prefix := range promptPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return trimmed
}

func sanitizeURL(raw string) string {
	return strings.Trim(raw, urlQuoteChars)
}

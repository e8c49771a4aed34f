package curl

import (
	"maps"
	"net/url"
	"strings"
)

type optKind int

const (
	optNone optKind = iota
	optVal
)

type optFn func(*segState, string)

type optDef struct {
	key  string
	kind optKind
	fn   optFn
}

var defs = map[string]*optDef{
	"request":        {key: "request", kind: optVal, fn: optFlag(FlagRequest)},
	"header":         {key: "header", kind: optVal, fn: optHdr},
	"user":           {key: "user", kind: optVal, fn: optFlag(FlagUser)},
	"user-agent":     {key: "user-agent", kind: optVal, fn: optHdrKey(headerUserAgent)},
	"referer":        {key: "referer", kind: optVal, fn: optHdrKey(headerReferer)},
	"cookie":         {key: "cookie", kind: optVal, fn: optHdrKey(headerCookie)},
	"oauth2-bearer":  {key: "oauth2-bearer", kind: optVal, fn: optBearer},
	"compressed":     {key: "compressed", kind: optNone, fn: optComp},
	"url":            {key: "url", kind: optVal, fn: optURL},
	"url-query":      {key: "url-query", kind: optVal, fn: optURLQuery},
	"json":           {key: "json", kind: optVal, fn: optJSON},
	"data":           {key: "data", kind: optVal, fn: optData},
	"data-raw":       {key: "data-raw", kind: optVal, fn: optDataRaw},
	"data-binary":    {key: "data-binary", kind: optVal, fn: optData},
	"data-urlencode": {key: "data-urlencode", kind: optVal, fn: optDataURL},
	"get":            {key: "get", kind: optNone, fn: optGet},

	"head":            warnOpt("head", optNone),
	"form":            warnOpt("form", optVal),
	"form-string":     warnOpt("form-string", optVal),
	"upload-file":     warnOpt("upload-file", optVal),
	"insecure":        warnOpt("insecure", optNone),
	"proxy":           warnOpt("proxy", optVal),
	"proxy-user":      warnOpt("proxy-user", optVal),
	"location":        warnOpt("location", optNone),
	"max-time":        warnOpt("max-time", optVal),
	"connect-timeout": warnOpt("connect-timeout", optVal),
	"max-redirs":      warnOpt("max-redirs", optVal),
	"retry":           warnOpt("retry", optVal),
	"retry-delay":     warnOpt("retry-delay", optVal),
	"retry-max-time":  warnOpt("retry-max-time", optVal),
	"cacert":          warnOpt("cacert", optVal),
	"capath":          warnOpt("capath", optVal),
	"cert":            warnOpt("cert", optVal),
	"cert-type":       warnOpt("cert-type", optVal),
	"key":             warnOpt("key", optVal),
	"key-type":        warnOpt("key-type", optVal),
	"pass":            warnOpt("pass", optVal),
	"ciphers":         warnOpt("ciphers", optVal),
	"pinnedpubkey":    warnOpt("pinnedpubkey", optVal),
	"fail":            warnOpt("fail", optNone),
	"silent":          warnOpt("silent", optNone),
	"show-error":      warnOpt("show-error", optNone),
	"verbose":         warnOpt("verbose", optNone),
	"include":         warnOpt("include", optNone),
	"output":          warnOpt("output", optVal),
	"output-dir":      warnOpt("output-dir", optVal),
	"remote-name":     warnOpt("remote-name", optNone),
	"dump-header":     warnOpt("dump-header", optVal),
	"write-out":       warnOpt("write-out", optVal),
	"cookie-jar":      warnOpt("cookie-jar", optVal),
	"range":           warnOpt("range", optVal),
	"config":          warnOpt("config", optVal),
	"continue-at":     warnOpt("continue-at", optVal),
	"time-cond":       warnOpt("time-cond", optVal),
	"limit-rate":      warnOpt("limit-rate", optVal),
	"speed-limit":     warnOpt("speed-limit", optVal),
	"speed-time":      warnOpt("speed-time", optVal),
	"max-filesize":    warnOpt("max-filesize", optVal),
	"interface":       warnOpt("interface", optVal),
	"local-port":      warnOpt("local-port", optVal),
	"connect-to":      warnOpt("connect-to", optVal),
	"dns-servers":     warnOpt("dns-servers", optVal),
	"noproxy":         warnOpt("noproxy", optVal),
	"preproxy":        warnOpt("preproxy", optVal),
	"socks5":          warnOpt("socks5", optVal),
	"unix-socket":     warnOpt("unix-socket", optVal),
	"proto":           warnOpt("proto", optVal),
	"request-target":  warnOpt("request-target", optVal),
	"aws-sigv4":       warnOpt("aws-sigv4", optVal),
	"netrc-file":      warnOpt("netrc-file", optVal),
	"trace":           warnOpt("trace", optVal),
	"trace-ascii":     warnOpt("trace-ascii", optVal),
	"stderr":          warnOpt("stderr", optVal),
	"quote":           warnOpt("quote", optVal),
	"etag-save":       warnOpt("etag-save", optVal),
	"etag-compare":    warnOpt("etag-compare", optVal),
	"variable":        warnOpt("variable", optVal),
	"http1.1":         warnOpt("http1.1", optNone),
	"http2":           warnOpt("http2", optNone),
	"resolve":         warnOpt("resolve", optVal),
}

// longDefs is defs plus long aliases that share a definition.
var longDefs = func() map[string]*optDef {
	out := maps.Clone(defs)
	out["data-ascii"] = defs["data"]
	return out
}()

var shortDefs = map[rune]*optDef{
	'X': defs["request"],
	'H': defs["header"],
	'u': defs["user"],
	'A': defs["user-agent"],
	'e': defs["referer"],
	'b': defs["cookie"],
	'd': defs["data"],
	'G': defs["get"],
	'I': warnShort('I', optNone),
	'F': warnShort('F', optVal),
	'T': warnShort('T', optVal),
	'k': warnShort('k', optNone),
	'x': warnShort('x', optVal),
	'U': warnShort('U', optVal),
	'L': warnShort('L', optNone),
	'm': warnShort('m', optVal),
	'f': warnShort('f', optNone),
	's': warnShort('s', optNone),
	'S': warnShort('S', optNone),
	'v': warnShort('v', optNone),
	'i': warnShort('i', optNone),
	'o': warnShort('o', optVal),
	'O': warnShort('O', optNone),
	'D': warnShort('D', optVal),
	'w': warnShort('w', optVal),
	'c': warnShort('c', optVal),
	'r': warnShort('r', optVal),
	'K': warnShort('K', optVal),
	'C': warnShort('C', optVal),
	'z': warnShort('z', optVal),
	'E': warnShort('E', optVal),
	'Y': warnShort('Y', optVal),
	'y': warnShort('y', optVal),
	'Q': warnShort('Q', optVal),
}

// warnOpt defines a long flag that is understood only far enough to skip its
// argument.
func warnOpt(name string, kind optKind) *optDef {
	return &optDef{key: name, kind: kind, fn: optWarn("--" + name)}
}

func warnShort(ch rune, kind optKind) *optDef {
	return &optDef{key: string(ch) + "-short", kind: kind, fn: optWarn("-" + string(ch))}
}

// Item keys are unique per definition, so normalisation looks them up here.
var defsByKey = func() map[string]*optDef {
	out := make(map[string]*optDef, len(defs)+len(shortDefs))
	for _, d := range defs {
		out[d.key] = d
	}
	for _, d := range shortDefs {
		out[d.key] = d
	}
	return out
}()

func applyOpt(st *segState, opt Opt) {
	def := defsByKey[opt.Key]
	if def == nil {
		st.warn.Flag(opt.Key)
		return
	}
	def.fn(st, opt.Val)
}

func applyPos(st *segState, v string) {
	v = sanitizeURL(strings.TrimSpace(v))
	if v == "" {
		return
	}
	if st.url != "" {
		if !isAbsoluteURL(st.url) && isAbsoluteURL(v) {
			st.url, v = v, st.url
		}
		st.warn.Add("extra URL " + v + " (ignored)")
		return
	}
	st.url = v
}

func isAbsoluteURL(v string) bool {
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func optFlag(name string) optFn {
	return func(st *segState, v string) {
		st.flags[name] = v
	}
}

func optHdr(st *segState, v string) {
	name, value := splitHeader(v)
	if name == "" {
		st.warn.Add("malformed header " + v + " (ignored)")
		return
	}
	st.hdr = append(st.hdr, Header{Name: name, Value: value})
}

func optHdrKey(name string) optFn {
	return func(st *segState, v string) {
		st.hdr = append(st.hdr, Header{Name: name, Value: v})
	}
}

func optBearer(st *segState, v string) {
	st.hdr = append(st.hdr, Header{Name: headerAuthorization, Value: "Bearer " + v})
}

func optComp(st *segState, _ string) {
	st.zip = true
}

func optURL(st *segState, v string) {
	applyPos(st, v)
}

func optJSON(st *segState, v string) {
	st.json = true
	optData(st, v)
}

func optData(st *segState, v string) {
	if strings.HasPrefix(v, "@") {
		st.warn.Add("file body " + v + " not read (kept literally)")
	}
	st.body = append(st.body, v)
}

func optDataRaw(st *segState, v string) {
	st.body = append(st.body, v)
}

// optDataURL follows curl's --data-urlencode forms: "content", "=content" and
// "name=content" encode the content part only.
func optDataURL(st *segState, v string) {
	st.body = append(st.body, encodePart(st, v))
}

// optURLQuery appends to the URL query. A leading "+" adds the rest as is;
// otherwise the value is encoded like --data-urlencode.
func optURLQuery(st *segState, v string) {
	if raw, ok := strings.CutPrefix(v, "+"); ok {
		st.query = append(st.query, raw)
		return
	}
	st.query = append(st.query, encodePart(st, v))
}

func encodePart(st *segState, v string) string {
	if strings.HasPrefix(v, "@") || strings.Contains(v, "@") && !strings.Contains(v, "=") {
		st.warn.Add("file body " + v + " not read (kept literally)")
	}
	name, content, ok := strings.Cut(v, "=")
	switch {
	case !ok:
		return url.QueryEscape(v)
	case name == "":
		return url.QueryEscape(content)
	default:
		return name + "=" + url.QueryEscape(content)
	}
}

func optGet(st *segState, _ string) {
	st.flags[FlagGet] = ""
}

func optWarn(flag string) optFn {
	return func(st *segState, _ string) {
		st.warn.Flag(flag)
	}
}

package request

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

func TestFullURLAndSplitRoundTrip(t *testing.T) {
	req := NewRequest("x")
	req.URL = "http://x/y"
	req.Params = []KeyValue{Pair("a", "1"), Pair("b", "2")}

	full := req.FullURL()
	if full != "http://x/y?a=1&b=2" {
		t.Fatalf("FullURL = %q", full)
	}

	base, params, err := SplitURL(full)
	if err != nil {
		t.Fatalf("SplitURL: %v", err)
	}
	if base != "http://x/y" {
		t.Fatalf("base = %q, want http://x/y", base)
	}
	if !reflect.DeepEqual(params, req.Params) {
		t.Fatalf("params = %#v, want %#v", params, req.Params)
	}
}

func TestFullURLRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "n")
		params := make([]KeyValue, 0, n)
		for i := 0; i < n; i++ {
			params = append(params, Pair(
				rapid.String().Draw(t, "key"),
				rapid.String().Draw(t, "value"),
			))
		}
		req := NewRequest("p")
		req.URL = "http://x/y"
		req.Params = params

		base, got, err := SplitURL(req.FullURL())
		if err != nil {
			t.Fatalf("SplitURL(%q): %v", req.FullURL(), err)
		}
		if base != "http://x/y" {
			t.Fatalf("base = %q", base)
		}
		if !reflect.DeepEqual(got, params) {
			t.Fatalf("params = %#v, want %#v", got, params)
		}
	})
}

func TestFullURLSkipsDisabledAndKeepsFragment(t *testing.T) {
	req := NewRequest("x")
	req.URL = "https://api.test/items#top"
	req.Params = []KeyValue{
		Pair("q", "a b"),
		{Enabled: false, Key: "skip", Value: "1"},
	}
	if got := req.FullURL(); got != "https://api.test/items?q=a+b#top" {
		t.Fatalf("FullURL = %q", got)
	}
	req.Params = nil
	if got := req.FullURL(); got != "https://api.test/items#top" {
		t.Fatalf("FullURL without params = %q", got)
	}
}

func TestSplitURLRejectsRelativeAndMalformed(t *testing.T) {
	for _, raw := range []string{"/just/a/path", "example.com/x", "http://[::1", ""} {
		if _, _, err := SplitURL(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		} else if errdef.CodeOf(err) != errdef.CodeURL {
			t.Fatalf("expected url code for %q, got %q", raw, errdef.CodeOf(err))
		}
	}
}

func TestSplitURLKeepsDuplicatesAndOrder(t *testing.T) {
	_, params, err := SplitURL("http://h/p?z=1&a=2&z=3&flag")
	if err != nil {
		t.Fatalf("SplitURL: %v", err)
	}
	want := []KeyValue{Pair("z", "1"), Pair("a", "2"), Pair("z", "3"), Pair("flag", "")}
	if !reflect.DeepEqual(params, want) {
		t.Fatalf("params = %#v, want %#v", params, want)
	}
}

func TestNormalizeMovesAuthorizationAndQuery(t *testing.T) {
	req := Request{
		Name: "legacy",
		URL:  "https://h/p?x=1#frag",
		Headers: []KeyValue{
			Pair("authorization", "Bearer abc"),
			Pair("Accept", "*/*"),
		},
		Params: []KeyValue{Pair("y", "2")},
	}
	req.Normalize()

	if req.URL != "https://h/p#frag" {
		t.Fatalf("URL = %q", req.URL)
	}
	if !reflect.DeepEqual(req.Params, []KeyValue{Pair("x", "1"), Pair("y", "2")}) {
		t.Fatalf("params = %#v", req.Params)
	}
	if len(req.Headers) != 1 || req.Headers[0].Key != "Accept" {
		t.Fatalf("headers = %#v", req.Headers)
	}
	if req.Auth != Bearer("abc") {
		t.Fatalf("auth = %#v", req.Auth)
	}
	if req.Method != MethodGet || req.Body.Kind != BodyNone {
		t.Fatalf("defaults not applied: %v %v", req.Method, req.Body.Kind)
	}
}

func TestNormalizeKeepsExplicitAuth(t *testing.T) {
	req := NewRequest("r")
	req.URL = "https://h"
	req.Auth = Auth{Kind: AuthBasic, Username: "u", Password: "p", Token: "stray"}
	req.Headers = []KeyValue{Pair("Authorization", "Bearer other")}
	req.Normalize()

	if req.Auth != Basic("u", "p") {
		t.Fatalf("auth = %#v", req.Auth)
	}
	if len(req.Headers) != 0 {
		t.Fatalf("authorization header must be dropped: %#v", req.Headers)
	}
}

func TestCloneIsDeep(t *testing.T) {
	req := NewRequest("r")
	req.Headers = append(req.Headers, Pair("A", "1"))
	cp := req.Clone()
	cp.Headers[0].Value = "2"
	if req.Headers[0].Value != "1" {
		t.Fatalf("clone shares header storage")
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" patch ")
	if err != nil || m != MethodPatch {
		t.Fatalf("ParseMethod = %v, %v", m, err)
	}
	if _, err := ParseMethod("BREW"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestBodyContentType(t *testing.T) {
	if RawBody("x").ContentType() != "" {
		t.Fatalf("raw bodies carry no content type")
	}
	if (Body{Kind: BodyJSON}).ContentType() != "application/json" {
		t.Fatalf("unexpected json content type")
	}
	if !NoBody().IsEmpty() || RawBody("").IsEmpty() {
		t.Fatalf("unexpected emptiness")
	}
}

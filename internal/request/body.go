package request

type BodyKind string

const (
	BodyNone       BodyKind = "none"
	BodyRaw        BodyKind = "raw"
	BodyJSON       BodyKind = "json"
	BodyXML        BodyKind = "xml"
	BodyHTML       BodyKind = "html"
	BodyJavaScript BodyKind = "javascript"
	BodyForm       BodyKind = "form"
)

type Body struct {
	Kind BodyKind `json:"kind"           yaml:"kind"`
	Text string   `json:"text,omitempty" yaml:"text,omitempty"`
}

func NoBody() Body {
	return Body{Kind: BodyNone}
}

func RawBody(text string) Body {
	return Body{Kind: BodyRaw, Text: text}
}

// ContentType is the MIME type implied by the kind. Raw bodies carry none.
func (b Body) ContentType() string {
	switch b.Kind {
	case BodyJSON:
		return "application/json"
	case BodyXML:
		return "application/xml"
	case BodyHTML:
		return "text/html"
	case BodyJavaScript:
		return "application/javascript"
	case BodyForm:
		return "application/x-www-form-urlencoded"
	default:
		return ""
	}
}

func (b Body) IsEmpty() bool {
	return b.Kind == "" || b.Kind == BodyNone
}

package request

import (
	"fmt"
	"strings"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

var Methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodHead,
	MethodOptions,
	MethodTrace,
	MethodConnect,
}

func ParseMethod(raw string) (Method, error) {
	up := Method(strings.ToUpper(strings.TrimSpace(raw)))
	for _, m := range Methods {
		if m == up {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q", raw)
}

func (m Method) String() string {
	if m == "" {
		return string(MethodGet)
	}
	return string(m)
}

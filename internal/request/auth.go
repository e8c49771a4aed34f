package request

import (
	"encoding/base64"
	"fmt"
	"strings"
)

type AuthKind int

const (
	AuthNone AuthKind = iota
	AuthBasic
	AuthBearer
)

func (k AuthKind) String() string {
	switch k {
	case AuthBasic:
		return "Basic"
	case AuthBearer:
		return "Bearer"
	default:
		return "No Auth"
	}
}

// Auth is a closed variant. Only the fields belonging to Kind are meaningful;
// the constructors below are the only way values should be built.
type Auth struct {
	Kind     AuthKind `json:"kind"               yaml:"kind"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string   `json:"token,omitempty"    yaml:"token,omitempty"`
}

func NoAuth() Auth {
	return Auth{Kind: AuthNone}
}

func Basic(username, password string) Auth {
	return Auth{Kind: AuthBasic, Username: username, Password: password}
}

func Bearer(token string) Auth {
	return Auth{Kind: AuthBearer, Token: token}
}

// NextAuth cycles NoAuth -> Basic -> Bearer -> NoAuth. Credentials are dropped.
func NextAuth(a Auth) Auth {
	switch a.Kind {
	case AuthNone:
		return Basic("", "")
	case AuthBasic:
		return Bearer("")
	default:
		return NoAuth()
	}
}

func PatchUsername(a Auth, text string) Auth {
	if a.Kind != AuthBasic {
		return a
	}
	return Basic(text, a.Password)
}

func PatchPassword(a Auth, text string) Auth {
	if a.Kind != AuthBasic {
		return a
	}
	return Basic(a.Username, text)
}

func PatchBearerToken(a Auth, text string) Auth {
	if a.Kind != AuthBearer {
		return a
	}
	return Bearer(text)
}

// InputCount is the number of text inputs the variant exposes for editing.
func (a Auth) InputCount() int {
	switch a.Kind {
	case AuthBasic:
		return 2
	case AuthBearer:
		return 1
	default:
		return 0
	}
}

// Header renders the Authorization header value for the variant.
func (a Auth) Header() (string, string, bool) {
	switch a.Kind {
	case AuthBasic:
		creds := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return HeaderAuthorization, "Basic " + creds, true
	case AuthBearer:
		return HeaderAuthorization, "Bearer " + a.Token, true
	default:
		return "", "", false
	}
}

// normalized drops payload fields that do not belong to Kind.
func (a Auth) normalized() Auth {
	switch a.Kind {
	case AuthBasic:
		return Basic(a.Username, a.Password)
	case AuthBearer:
		return Bearer(a.Token)
	default:
		return NoAuth()
	}
}

func (k AuthKind) MarshalText() ([]byte, error) {
	switch k {
	case AuthBasic:
		return []byte("basic"), nil
	case AuthBearer:
		return []byte("bearer"), nil
	default:
		return []byte("none"), nil
	}
}

func (k *AuthKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "basic":
		*k = AuthBasic
	case "bearer":
		*k = AuthBearer
	case "", "none":
		*k = AuthNone
	default:
		return fmt.Errorf("unknown auth kind %q", text)
	}
	return nil
}

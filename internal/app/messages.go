package app

import (
	"github.com/unkn0wn-root/reqtree/internal/collection"
	"github.com/unkn0wn-root/reqtree/internal/vars"
)

// RequestChangedMsg asks views showing the request at Index to re-read it.
type RequestChangedMsg struct {
	Index collection.Index
}

type CollectionChangedMsg struct {
	Collection int
	Created    bool
	Added      collection.Index
	// Removed is set instead of Added when a request was dropped.
	Removed *collection.Index
}

// EnvironmentAddedMsg carries the environment exactly as imported. Names may
// repeat in the registry, so views should not look it up again by name.
type EnvironmentAddedMsg struct {
	Name        string
	Environment vars.Environment
}

// AuthField names the auth text input a view should edit.
type AuthField int

const (
	AuthFieldNone AuthField = iota
	AuthFieldUsername
	AuthFieldPassword
	AuthFieldToken
)

func (f AuthField) String() string {
	switch f {
	case AuthFieldUsername:
		return "username"
	case AuthFieldPassword:
		return "password"
	case AuthFieldToken:
		return "token"
	default:
		return "none"
	}
}

package vars

import (
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

const envMarker = ".env."

// IsEnvironmentFile reports names of the form <prefix>.env.<label> or
// .env.<label>.
func IsEnvironmentFile(path string) bool {
	base := filepath.Base(path)
	i := strings.Index(base, envMarker)
	return i >= 0 && len(base) > i+len(envMarker)
}

// EnvironmentName collapses the ".env." marker of a file name into a single
// dot: "config.env.staging" becomes "config.staging" and ".env.local" becomes
// "local".
func EnvironmentName(path string) string {
	base := filepath.Base(path)
	return strings.Trim(strings.ReplaceAll(base, envMarker, "."), ".")
}

// ImportFile reads path with reader and appends the result to reg. Nothing is
// appended when reading fails.
func ImportFile(reader Reader, reg *Registry, path string) (Environment, error) {
	if reader == nil {
		reader = DotEnvReader{}
	}
	if reg == nil {
		reg = Default
	}
	name := EnvironmentName(path)
	if name == "" {
		return Environment{}, errdef.New(errdef.CodeEnvironment, "could not derive environment name from %q", path)
	}
	values, err := reader.Read(path)
	if err != nil {
		return Environment{}, errdef.Wrap(errdef.CodeEnvironment, err, "could not import environment")
	}
	if values == nil {
		values = map[string]string{}
	}
	env := Environment{Name: name, Values: values}
	reg.Append(env)
	return env.Clone(), nil
}

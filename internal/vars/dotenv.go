package vars

import (
	"github.com/joho/godotenv"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

// Reader loads key/value pairs from an environment file.
type Reader interface {
	Read(path string) (map[string]string, error)
}

// DotEnvReader parses KEY=VALUE files, including quoting, comments and
// `export` prefixes.
type DotEnvReader struct{}

func (DotEnvReader) Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeEnvironment, err, "could not parse environment file %s", path)
	}
	return values, nil
}

package vars

import (
	"github.com/unkn0wn-root/reqtree/internal/request"
)

// ExpandRequest returns a copy of req with templates resolved in the URL,
// enabled params and headers, auth credentials, and body. The first unknown
// variable is reported; expansion still covers every field.
func ExpandRequest(r *Resolver, req request.Request) (request.Request, error) {
	out := req.Clone()
	var firstErr error
	expand := func(s string) string {
		v, err := r.ExpandTemplates(s)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	}

	out.URL = expand(out.URL)
	expandRows(out.Params, expand)
	expandRows(out.Headers, expand)
	out.Auth.Username = expand(out.Auth.Username)
	out.Auth.Password = expand(out.Auth.Password)
	out.Auth.Token = expand(out.Auth.Token)
	out.Body.Text = expand(out.Body.Text)
	return out, firstErr
}

func expandRows(rows []request.KeyValue, expand func(string) string) {
	for i := range rows {
		if !rows[i].Enabled {
			continue
		}
		rows[i].Key = expand(rows[i].Key)
		rows[i].Value = expand(rows[i].Value)
	}
}

package curl

import (
	"fmt"
	"strings"
)

const warnFlagFormat = "unsupported flag %s (ignored)"

// warnings keeps the first occurrence of each message in input order.
type warnings struct {
	seen map[string]struct{}
	list []string
}

func (w *warnings) Add(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if _, ok := w.seen[msg]; ok {
		return
	}
	if w.seen == nil {
		w.seen = make(map[string]struct{})
	}
	w.seen[msg] = struct{}{}
	w.list = append(w.list, msg)
}

func (w *warnings) Flag(flag string) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return
	}
	w.Add(fmt.Sprintf(warnFlagFormat, flag))
}

func (w *warnings) UnknownFlags(flags []string) {
	for _, flag := range flags {
		w.Flag(flag)
	}
}

func (w *warnings) List() []string {
	if len(w.list) == 0 {
		return nil
	}
	return append([]string(nil), w.list...)
}

package curl

import (
	"strings"
)

type cmdParser struct {
	tok     []string
	i       int
	cmd     *Cmd
	seg     Seg
	posOnly bool
}

// parseCmd groups the tokens after the curl word into option and positional
// items, starting a new segment at every --next.
func parseCmd(tok []string) (*Cmd, error) {
	idx, ok := findCurlIndex(tok)
	if !ok {
		return nil, errNotCurlCommand
	}

	p := &cmdParser{tok: tok, cmd: &Cmd{}}
	for p.i = idx + 1; p.i < len(tok); p.i++ {
		if err := p.step(tok[p.i]); err != nil {
			return nil, err
		}
	}
	p.flushSeg()
	return p.cmd, nil
}

func (p *cmdParser) step(t string) error {
	if t == "" {
		return nil
	}
	if p.posOnly {
		p.seg.Items = append(p.seg.Items, Item{Pos: t})
		return nil
	}

	switch {
	case t == "--":
		p.posOnly = true
		return nil
	case t == "--next":
		p.flushSeg()
		return nil
	case strings.HasPrefix(t, "--"):
		it, ok, err := p.long(t)
		if err != nil {
			return err
		}
		if ok {
			p.seg.Items = append(p.seg.Items, it)
		} else {
			p.seg.Unk = append(p.seg.Unk, t)
		}
		return nil
	case strings.HasPrefix(t, "-") && t != "-":
		its, unk, err := p.short(t)
		if err != nil {
			return err
		}
		p.seg.Items = append(p.seg.Items, its...)
		p.seg.Unk = append(p.seg.Unk, unk...)
		return nil
	}

	p.seg.Items = append(p.seg.Items, Item{Pos: t})
	return nil
}

func (p *cmdParser) flushSeg() {
	if len(p.seg.Items) > 0 || len(p.seg.Unk) > 0 {
		p.cmd.Segs = append(p.cmd.Segs, p.seg)
	}
	p.seg = Seg{}
	p.posOnly = false
}

func (p *cmdParser) long(t string) (Item, bool, error) {
	name, val, hasVal := splitLong(t)
	def := longDefs[name]
	if def == nil {
		return Item{}, false, nil
	}
	if def.kind == optVal && !hasVal {
		nv, err := consumeNext(p.tok, &p.i, "--"+name)
		if err != nil {
			return Item{}, false, err
		}
		val = nv
	}
	return optItem(def.key, val), true, nil
}

func splitLong(t string) (string, string, bool) {
	raw := strings.TrimPrefix(t, "--")
	if raw == "" {
		return "", "", false
	}
	name, val, ok := strings.Cut(raw, "=")
	return name, val, ok
}

// short expands a cluster like -sSXPOST. A value-taking letter consumes the
// rest of the cluster, or the next token when it ends the cluster.
func (p *cmdParser) short(t string) ([]Item, []string, error) {
	raw := []rune(t[1:])
	var its []Item
	var unk []string

	for j, ch := range raw {
		def := shortDefs[ch]
		if def == nil {
			unk = append(unk, "-"+string(ch))
			continue
		}
		if def.kind == optNone {
			its = append(its, optItem(def.key, ""))
			continue
		}

		if j+1 < len(raw) {
			its = append(its, optItem(def.key, string(raw[j+1:])))
			break
		}
		nv, err := consumeNext(p.tok, &p.i, "-"+string(ch))
		if err != nil {
			return nil, nil, err
		}
		its = append(its, optItem(def.key, nv))
	}
	return its, unk, nil
}

func optItem(key, val string) Item {
	return Item{Opt: Opt{Key: key, Val: val}, IsOpt: true}
}

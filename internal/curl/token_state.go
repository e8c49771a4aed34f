package curl

type quoteMode uint8

const (
	quoteNone quoteMode = iota
	quoteSingle
	quoteDouble
	quoteANSI
)

type tokenOptions struct {
	decodeANSI            bool
	allowLineContinuation bool
}

// tokenStep is the result of feeding one rune. handled means the rune was
// consumed by quoting rules; emit carries the literal rune to keep, if any.
type tokenStep struct {
	emit    bool
	r       rune
	handled bool
}

// TokenState tracks shell quoting across runes. It is shared by the tokenizer
// and the line scanner so both agree on where a command ends.
type TokenState struct {
	mode   quoteMode
	escape bool
	skipLF bool
}

func (s *TokenState) Open() bool {
	return s.mode != quoteNone
}

func (s *TokenState) InQuote() bool {
	return s.mode == quoteSingle || s.mode == quoteDouble
}

func (s *TokenState) Escaping() bool {
	return s.escape
}

func (s *TokenState) ResetEscape() {
	s.escape = false
	s.skipLF = false
}

func consumed() tokenStep {
	return tokenStep{handled: true}
}

func literal(r rune) tokenStep {
	return tokenStep{emit: true, r: r, handled: true}
}

func (s *TokenState) advance(rs []rune, i *int, opts tokenOptions) (tokenStep, error) {
	r := rs[*i]

	if s.skipLF {
		s.skipLF = false
		if r == '\n' {
			return consumed(), nil
		}
	}

	if s.escape {
		return s.escaped(rs, i, opts)
	}

	switch s.mode {
	case quoteANSI:
		switch r {
		case '\\':
			s.escape = true
			return consumed(), nil
		case '\'':
			s.mode = quoteNone
			return consumed(), nil
		}
		return literal(r), nil
	case quoteSingle:
		if r == '\'' {
			s.mode = quoteNone
			return consumed(), nil
		}
		return literal(r), nil
	case quoteDouble:
		switch r {
		case '\\':
			s.escape = true
			return consumed(), nil
		case '"':
			s.mode = quoteNone
			return consumed(), nil
		}
		return literal(r), nil
	}

	switch r {
	case '\\':
		s.escape = true
		return consumed(), nil
	case '\'':
		s.mode = quoteSingle
		return consumed(), nil
	case '"':
		s.mode = quoteDouble
		return consumed(), nil
	case '$':
		if *i+1 < len(rs) && rs[*i+1] == '\'' {
			s.mode = quoteANSI
			*i++
			return consumed(), nil
		}
	}
	return tokenStep{}, nil
}

func (s *TokenState) escaped(rs []rune, i *int, opts tokenOptions) (tokenStep, error) {
	s.escape = false
	r := rs[*i]
	if s.mode == quoteANSI {
		if !opts.decodeANSI {
			return literal(r), nil
		}
		val, err := ansiEsc(rs, i)
		if err != nil {
			return tokenStep{}, err
		}
		return literal(val), nil
	}
	if opts.allowLineContinuation && isLineBreak(r) {
		if r == '\r' {
			s.skipLF = true
		}
		return consumed(), nil
	}
	return literal(r), nil
}

package curl

import (
	"strconv"
	"strings"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

type lexer struct {
	state TokenState
	buf   strings.Builder
	out   []string
	quote bool
}

func (lx *lexer) add(r rune) {
	lx.buf.WriteRune(r)
}

// flush emits the pending word. A quoted empty string ('' or "") still counts
// as an argument so `-d ''` keeps its value slot.
func (lx *lexer) flush() {
	if lx.buf.Len() == 0 && !lx.quote {
		return
	}
	lx.out = append(lx.out, lx.buf.String())
	lx.buf.Reset()
	lx.quote = false
}

// Shell-style tokenization: single quotes are literal, double quotes honour
// backslash escapes, $'...' decodes ANSI-C escapes, and a backslash before a
// newline joins lines.
func splitTokens(input string) ([]string, error) {
	lx := &lexer{}
	rs := []rune(input)
	opts := tokenOptions{decodeANSI: true, allowLineContinuation: true}

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		wasOpen := lx.state.Open()
		step, err := lx.state.advance(rs, &i, opts)
		if err != nil {
			return nil, err
		}
		if step.handled {
			if step.emit {
				lx.add(step.r)
			}
			if wasOpen || lx.state.Open() {
				lx.quote = true
			}
			continue
		}

		if isWhitespace(r) {
			lx.flush()
			continue
		}
		lx.add(r)
	}

	if lx.state.Escaping() {
		return nil, errdef.New(errdef.CodeCurl, "unterminated escape sequence")
	}
	if lx.state.Open() {
		return nil, errdef.New(errdef.CodeCurl, "unterminated quoted string")
	}

	lx.flush()
	return lx.out, nil
}

var ansiSimple = map[rune]rune{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// ansiEsc decodes the escape at rs[*i] inside $'...'. Unknown escapes yield
// the character itself.
func ansiEsc(rs []rune, i *int) (rune, error) {
	if *i >= len(rs) {
		return 0, errdef.New(errdef.CodeCurl, "unterminated escape sequence")
	}
	r := rs[*i]
	if v, ok := ansiSimple[r]; ok {
		return v, nil
	}
	switch r {
	case 'x':
		return readHex(rs, i, 2)
	case 'u':
		return readHex(rs, i, 4)
	}
	return r, nil
}

// readHex consumes exactly n hex digits after rs[*i].
func readHex(rs []rune, i *int, n int) (rune, error) {
	if *i+n >= len(rs) {
		return 0, errdef.New(errdef.CodeCurl, "invalid hex escape")
	}
	digits := string(rs[*i+1 : *i+1+n])
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, errdef.New(errdef.CodeCurl, "invalid hex escape \\%s", digits)
	}
	*i += n
	return rune(v), nil
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

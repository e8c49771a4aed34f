package curl

import (
	"strings"
)

// FirstCommand returns the first curl invocation found in src, joined across
// backslash continuations and open quotes. Text before it and any further
// commands are ignored.
func FirstCommand(src string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i := range lines {
		if !startsCommand(lines[i]) {
			continue
		}
		if cmd := joinCommand(lines[i:]); cmd != "" {
			return cmd, true
		}
	}
	return "", false
}

// joinCommand glues lines[0] to the lines that belong to it. Inside an open
// quote the newline is kept; after a continuation it becomes a space.
func joinCommand(lines []string) string {
	var (
		quotes TokenState
		out    strings.Builder
	)
	for n, line := range lines {
		quoted := quotes.Open()
		if n > 0 && !quoted && strings.TrimSpace(line) == "" {
			break
		}
		if !quoted {
			line = strings.TrimSpace(line)
		}
		more := lineContinues(line)
		if more {
			line = line[:len(line)-1]
		}

		switch {
		case out.Len() == 0:
		case quoted:
			out.WriteByte('\n')
		default:
			out.WriteByte(' ')
		}
		out.WriteString(line)
		feed(&quotes, line)

		if more {
			quotes.ResetEscape()
			continue
		}
		if !quotes.Open() {
			break
		}
	}
	return strings.TrimSpace(out.String())
}

func feed(st *TokenState, s string) {
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		_, _ = st.advance(rs, &i, tokenOptions{})
	}
}

func startsCommand(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	line = skipWrappers(stripPromptPrefix(line))
	word, _ := leadingWord(line)
	return isCurlWord(word)
}

// lineContinues reports a trailing unescaped backslash.
func lineContinues(v string) bool {
	trail := len(v) - len(strings.TrimRight(v, `\`))
	return trail%2 == 1
}

// skipWrappers drops shell wrappers (sudo, env VAR=x, time, ...) so a copied
// command line still starts at the curl word.
func skipWrappers(line string) string {
	for {
		word, rest := leadingWord(line)
		if word == "" {
			return ""
		}
		if !isWrapper(word) && !isAssign(word) {
			return strings.TrimLeft(line, " \t")
		}
		line = rest
	}
}

func isWrapper(word string) bool {
	switch strings.ToLower(word) {
	case cmdSudo, cmdEnv, cmdCommand, cmdTime, cmdNoGlob:
		return true
	}
	return false
}

// isAssign matches NAME=value prefixes. Flags and bare "=x" do not count.
func isAssign(word string) bool {
	name, _, ok := strings.Cut(word, "=")
	return ok && name != "" && !strings.HasPrefix(name, "-")
}

// leadingWord splits off the first shell word of line, unquoting it.
func leadingWord(line string) (string, string) {
	rs := []rune(strings.TrimLeft(line, " \t"))
	var (
		st   TokenState
		word strings.Builder
		i    int
	)
	for ; i < len(rs); i++ {
		r := rs[i]
		step, _ := st.advance(rs, &i, tokenOptions{})
		if step.handled {
			if step.emit {
				word.WriteRune(step.r)
			}
			continue
		}
		if isWhitespace(r) {
			break
		}
		word.WriteRune(r)
	}
	return word.String(), strings.TrimLeft(string(rs[i:]), " \t")
}

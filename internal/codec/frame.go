package codec

import (
	"strings"
)

// Frame is one inbound line split into its grammar parts:
//
//	[@tags] [:prefix] COMMAND [params...] [:trailing]
type Frame struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

// Nick returns the nick part of the prefix (before '!'), or the whole prefix
// when it has no user part.
func (f Frame) Nick() string {
	if i := strings.IndexByte(f.Prefix, '!'); i >= 0 {
		return f.Prefix[:i]
	}
	return f.Prefix
}

// Trailing returns the last param or "" when there are none.
func (f Frame) Trailing() string {
	if len(f.Params) == 0 {
		return ""
	}
	return f.Params[len(f.Params)-1]
}

// ParseFrame parses a single line. The line terminator is optional.
func ParseFrame(raw string) (Frame, error) {
	line := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Frame{}, ErrEmptyFrame
	}

	var f Frame
	if strings.HasPrefix(line, "@") {
		var tags string
		tags, line = cut(line[1:])
		f.Tags = parseTags(tags)
	}

	if strings.HasPrefix(line, ":") {
		f.Prefix, line = cut(line[1:])
	}

	f.Command, line = cut(line)
	if f.Command == "" {
		return Frame{}, ErrMissingCommand
	}
	f.Command = strings.ToUpper(f.Command)

	for line != "" {
		if line[0] == ':' {
			f.Params = append(f.Params, line[1:])
			break
		}
		var param string
		param, line = cut(line)
		f.Params = append(f.Params, param)
	}

	return f, nil
}

// cut returns the token before the first space and the rest with leading
// spaces removed.
func cut(s string) (token, rest string) {
	s = strings.TrimLeft(s, " ")
	token, rest, _ = strings.Cut(s, " ")
	return token, strings.TrimLeft(rest, " ")
}

func parseTags(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	tags := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		tags[key] = unescapeTag(value)
	}
	return tags
}

var tagUnescaper = strings.NewReplacer(
	`\:`, ";",
	`\s`, " ",
	`\\`, `\`,
	`\r`, "\r",
	`\n`, "\n",
)

func unescapeTag(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	return tagUnescaper.Replace(v)
}

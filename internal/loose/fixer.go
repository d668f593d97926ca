package loose

import (
	"regexp"
	"strconv"
	"strings"
)

// Repair names reported in FixResult.Repairs.
const (
	RepairLeadingText      = "leading_text"
	RepairTrailingText     = "trailing_text"
	RepairSingleQuotes     = "single_quotes"
	RepairUnquotedKey      = "unquoted_key"
	RepairUnquotedValue    = "unquoted_value"
	RepairPythonLiteral    = "python_literal"
	RepairTrailingComma    = "trailing_comma"
	RepairMissingComma     = "missing_comma"
	RepairMissingColon     = "missing_colon"
	RepairMissingValue     = "missing_value"
	RepairComment          = "comment"
	RepairControlChar      = "control_char"
	RepairInvalidEscape    = "invalid_escape"
	RepairUnterminatedStr  = "unterminated_string"
	RepairUnclosedBracket  = "unclosed_bracket"
	RepairMismatchedClose  = "mismatched_bracket"
	RepairStrayToken       = "stray_token"
	RepairNumberNormalized = "number_normalized"
)

// FixResult is the outcome of the fixing pass.
type FixResult struct {
	Text       string
	Repairs    []string
	Incomplete bool
}

type state int

const (
	expectKey state = iota
	expectColon
	expectValue
	afterValue
)

type container struct {
	object  bool
	state   state
	commaAt int
}

type fixer struct {
	in         string
	pos        int
	out        []byte
	stack      []container
	rootDone   bool
	repairs    []string
	incomplete bool
}

// Fix rewrites near-miss JSON into strict JSON. It starts at the first '{'
// or '[' and stops after the first complete top-level value. Running Fix on
// its own output returns that output unchanged.
func Fix(text string) (FixResult, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return FixResult{}, false
	}
	f := &fixer{in: text, pos: start}
	if strings.TrimSpace(text[:start]) != "" {
		f.repair(RepairLeadingText)
	}
	f.run()
	if !f.rootDone {
		return FixResult{}, false
	}
	return FixResult{Text: string(f.out), Repairs: f.repairs, Incomplete: f.incomplete}, true
}

func (f *fixer) repair(name string) {
	for _, r := range f.repairs {
		if r == name {
			return
		}
	}
	f.repairs = append(f.repairs, name)
}

func (f *fixer) top() *container {
	if len(f.stack) == 0 {
		return nil
	}
	return &f.stack[len(f.stack)-1]
}

func (f *fixer) run() {
	for f.pos < len(f.in) {
		if f.rootDone {
			if strings.TrimSpace(f.in[f.pos:]) != "" {
				f.repair(RepairTrailingText)
			}
			return
		}
		c := f.in[f.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			f.out = append(f.out, c)
			f.pos++
		case c == '/' && f.pos+1 < len(f.in) && (f.in[f.pos+1] == '/' || f.in[f.pos+1] == '*'):
			f.skipComment()
		case c == '{' || c == '[':
			if !f.beforeValue() {
				f.pos++
				continue
			}
			f.out = append(f.out, c)
			f.stack = append(f.stack, container{object: c == '{', state: initialState(c == '{'), commaAt: -1})
			f.pos++
		case c == '}' || c == ']':
			f.closeWith(c)
			f.pos++
		case c == ',':
			f.comma()
			f.pos++
		case c == ':':
			if t := f.top(); t != nil && t.object && t.state == expectColon {
				f.out = append(f.out, ':')
				t.state = expectValue
			} else {
				f.repair(RepairStrayToken)
			}
			f.pos++
		case c == '"' || c == '\'':
			f.quoted(c)
		default:
			f.bare()
		}
	}
	f.finish()
}

func initialState(object bool) state {
	if object {
		return expectKey
	}
	return expectValue
}

func (f *fixer) skipComment() {
	f.repair(RepairComment)
	if f.in[f.pos+1] == '/' {
		end := strings.IndexByte(f.in[f.pos:], '\n')
		if end < 0 {
			f.pos = len(f.in)
			return
		}
		f.pos += end
		return
	}
	end := strings.Index(f.in[f.pos+2:], "*/")
	if end < 0 {
		f.pos = len(f.in)
		return
	}
	f.pos += 2 + end + 2
}

// beforeValue prepares the current container for a value-position token.
// It returns false when the token cannot be placed and must be dropped.
func (f *fixer) beforeValue() bool {
	t := f.top()
	if t == nil {
		return !f.rootDone
	}
	switch t.state {
	case afterValue:
		f.insertComma(t)
		if t.object {
			// a container where a key belongs cannot be repaired in place
			f.repair(RepairStrayToken)
			return false
		}
	case expectKey:
		f.repair(RepairStrayToken)
		return false
	case expectColon:
		f.out = append(f.out, ':')
		f.repair(RepairMissingColon)
		t.state = expectValue
	}
	t.commaAt = -1
	return true
}

// beforeScalar places a string, number or bare word; it reports whether the
// token lands in key position.
func (f *fixer) beforeScalar() (isKey bool, ok bool) {
	t := f.top()
	if t == nil {
		return false, false
	}
	if t.state == afterValue {
		f.insertComma(t)
	}
	t.commaAt = -1
	switch t.state {
	case expectKey:
		return true, true
	case expectColon:
		f.out = append(f.out, ':')
		f.repair(RepairMissingColon)
		t.state = expectValue
	}
	return false, true
}

func (f *fixer) insertComma(t *container) {
	t.commaAt = len(f.out)
	f.out = append(f.out, ',')
	f.repair(RepairMissingComma)
	t.state = initialState(t.object)
}

func (f *fixer) valueDone() {
	t := f.top()
	if t == nil {
		f.rootDone = true
		return
	}
	t.state = afterValue
}

func (f *fixer) keyDone() {
	if t := f.top(); t != nil {
		t.state = expectColon
	}
}

func (f *fixer) comma() {
	t := f.top()
	if t == nil || t.state != afterValue {
		f.repair(RepairStrayToken)
		return
	}
	t.commaAt = len(f.out)
	f.out = append(f.out, ',')
	t.state = initialState(t.object)
}

// closeWith handles a closing bracket, repairing mismatches by closing the
// inner containers first.
func (f *fixer) closeWith(c byte) {
	want := c == '}'
	match := -1
	for i := len(f.stack) - 1; i >= 0; i-- {
		if f.stack[i].object == want {
			match = i
			break
		}
	}
	if match < 0 {
		f.repair(RepairStrayToken)
		return
	}
	for len(f.stack)-1 > match {
		f.repair(RepairMismatchedClose)
		f.closeTop()
	}
	f.closeTop()
}

func (f *fixer) closeTop() {
	t := f.top()
	if t.commaAt >= 0 && (t.state == expectKey || t.state == expectValue) {
		f.out = append(f.out[:t.commaAt], f.out[t.commaAt+1:]...)
		f.repair(RepairTrailingComma)
	}
	if t.object {
		switch t.state {
		case expectColon:
			f.out = append(f.out, ":null"...)
			f.repair(RepairMissingValue)
		case expectValue:
			f.out = append(f.out, "null"...)
			f.repair(RepairMissingValue)
		}
		f.out = append(f.out, '}')
	} else {
		f.out = append(f.out, ']')
	}
	f.stack = f.stack[:len(f.stack)-1]
	f.valueDone()
}

func (f *fixer) finish() {
	if len(f.stack) == 0 {
		return
	}
	f.incomplete = true
	f.repair(RepairUnclosedBracket)
	for len(f.stack) > 0 {
		f.closeTop()
	}
}

// quoted rewrites a single- or double-quoted string as a JSON string.
func (f *fixer) quoted(q byte) {
	isKey, ok := f.beforeScalar()
	if !ok {
		f.pos++
		return
	}
	if q == '\'' {
		f.repair(RepairSingleQuotes)
	}
	f.out = append(f.out, '"')
	j := f.pos + 1
	closed := false
	for j < len(f.in) {
		c := f.in[j]
		if c == '\\' && j+1 < len(f.in) {
			next := f.in[j+1]
			switch {
			case q == '\'' && next == '\'':
				f.out = append(f.out, '\'')
			case strings.IndexByte(`"\/bfnrt`, next) >= 0:
				f.out = append(f.out, c, next)
			case next == 'u' && j+5 < len(f.in) && isHex4(f.in[j+2:j+6]):
				f.out = append(f.out, f.in[j:j+6]...)
				j += 4
			default:
				f.out = append(f.out, '\\', '\\')
				f.repair(RepairInvalidEscape)
				j++
				continue
			}
			j += 2
			continue
		}
		if c == q {
			closed = true
			j++
			break
		}
		switch {
		case c == '"':
			f.out = append(f.out, '\\', '"')
		case c < 0x20:
			f.out = append(f.out, escapeControl(c)...)
			f.repair(RepairControlChar)
		default:
			f.out = append(f.out, c)
		}
		j++
	}
	f.out = append(f.out, '"')
	if !closed {
		f.repair(RepairUnterminatedStr)
		f.incomplete = true
	}
	f.pos = j
	if isKey {
		f.keyDone()
	} else {
		f.valueDone()
	}
}

func escapeControl(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	return `\u00` + strconv.FormatUint(uint64(c)>>4, 16) + strconv.FormatUint(uint64(c)&0xf, 16)
}

func isHex4(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return len(s) == 4
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

var pythonLiterals = map[string]string{
	"True": "true", "False": "false", "None": "null",
	"TRUE": "true", "FALSE": "false", "NULL": "null",
	"undefined": "null",
}

// bare handles keys, literals, numbers and unquoted words.
func (f *fixer) bare() {
	isKey, ok := f.beforeScalar()
	if !ok {
		f.pos++
		return
	}
	if isKey {
		end := f.pos
		for end < len(f.in) && strings.IndexByte(":,{}[]\"\n", f.in[end]) < 0 {
			end++
		}
		word := strings.TrimSpace(f.in[f.pos:end])
		f.pos = end
		if word == "" {
			f.pos++
			f.repair(RepairStrayToken)
			return
		}
		f.appendString(word)
		f.repair(RepairUnquotedKey)
		f.keyDone()
		return
	}

	c := f.in[f.pos]
	stops := ",}]\n"
	if isDigit(c) || c == '-' || c == '.' || c == '+' {
		stops = ",}] \t\r\n"
	}
	end := f.pos
	for end < len(f.in) && strings.IndexByte(stops, f.in[end]) < 0 {
		if f.in[end] == '/' && end+1 < len(f.in) && (f.in[end+1] == '/' || f.in[end+1] == '*') &&
			(end == f.pos || f.in[end-1] == ' ' || f.in[end-1] == '\t') {
			break
		}
		end++
	}
	word := strings.TrimSpace(f.in[f.pos:end])
	f.pos = end
	switch {
	case word == "true" || word == "false" || word == "null":
		f.out = append(f.out, word...)
	case pythonLiterals[word] != "":
		f.out = append(f.out, pythonLiterals[word]...)
		f.repair(RepairPythonLiteral)
	case jsonNumber.MatchString(word):
		f.out = append(f.out, word...)
	default:
		if n, err := strconv.ParseFloat(strings.ReplaceAll(word, "_", ""), 64); err == nil && isNumeric(word) {
			f.out = strconv.AppendFloat(f.out, n, 'g', -1, 64)
			f.repair(RepairNumberNormalized)
		} else {
			f.appendString(word)
			f.repair(RepairUnquotedValue)
		}
	}
	f.valueDone()
}

// isNumeric rejects words ParseFloat accepts but a model never means as
// numbers, such as "Inf" or "NaN".
func isNumeric(word string) bool {
	for i := 0; i < len(word); i++ {
		if strings.IndexByte("0123456789+-._eE", word[i]) < 0 {
			return false
		}
	}
	return true
}

func (f *fixer) appendString(s string) {
	f.out = append(f.out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			f.out = append(f.out, '\\', c)
		case c < 0x20:
			f.out = append(f.out, escapeControl(c)...)
		default:
			f.out = append(f.out, c)
		}
	}
	f.out = append(f.out, '"')
}

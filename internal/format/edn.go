package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// WriteEDN writes v as EDN. Values go through JSON first so json tags decide the
// keyword names; RFC3339 timestamps become #inst literals.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return err
	}

	e := &ednWriter{pretty: pretty}
	e.value(tree, 0)
	e.buf.WriteByte('\n')
	_, err = w.Write(e.buf.Bytes())
	return err
}

type ednWriter struct {
	buf    bytes.Buffer
	pretty bool
}

const ednIndent = "  "

func (e *ednWriter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("nil")
	case bool:
		e.buf.WriteString(strconv.FormatBool(t))
	case json.Number:
		e.buf.WriteString(t.String())
	case string:
		e.str(t)
	case []any:
		e.coll('[', ']', depth, len(t), func(i int) {
			e.value(t[i], depth+1)
		})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.coll('{', '}', depth, len(keys), func(i int) {
			e.buf.WriteByte(':')
			e.buf.WriteString(ednKeyword(keys[i]))
			e.buf.WriteByte(' ')
			e.value(t[keys[i]], depth+1)
		})
	default:
		e.str(fmt.Sprint(v))
	}
}

func (e *ednWriter) str(s string) {
	if strings.Contains(s, "T") {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			e.buf.WriteString("#inst ")
			e.buf.WriteString(strconv.Quote(ts.UTC().Format(time.RFC3339Nano)))
			return
		}
	}
	e.buf.WriteString(strconv.Quote(s))
}

// coll writes n elements between open and close. Pretty output puts one element per
// line, indented one level deeper than the brackets.
func (e *ednWriter) coll(open, close byte, depth, n int, elem func(i int)) {
	e.buf.WriteByte(open)
	if n == 0 {
		e.buf.WriteByte(close)
		return
	}
	sep := " "
	if e.pretty {
		sep = "\n" + strings.Repeat(ednIndent, depth+1)
		e.buf.WriteString(sep)
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf.WriteString(sep)
		}
		elem(i)
	}
	if e.pretty {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat(ednIndent, depth))
	}
	e.buf.WriteByte(close)
}

// ednKeyword turns a JSON field name into a kebab-case keyword: listId -> list-id,
// coverUrl -> cover-url. Lower-case ids (c1, card-x3) pass through unchanged.
func ednKeyword(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "-")
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

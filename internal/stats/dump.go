package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Dump is one table from an SQL dump: column names from the CREATE TABLE
// statement and one value slice per INSERT line.
type Dump struct {
	Table   string
	Columns []string
	Rows    [][]string
}

var (
	createRe = regexp.MustCompile("(?i)^CREATE TABLE(?: IF NOT EXISTS)?\\s+`?([A-Za-z0-9_]+)`?")
	columnRe = regexp.MustCompile("`([^`]+)`")
	insertRe = regexp.MustCompile("(?i)^INSERT INTO\\s+`?([A-Za-z0-9_]+)`?\\s+VALUES\\s*\\((.*)\\);$")
)

// ReadDumpFile parses the dump at path.
func ReadDumpFile(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ParseDump(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// ParseDump reads a dump with one INSERT statement per line. Lines that are
// neither part of the CREATE TABLE statement nor INSERTs are ignored.
func ParseDump(r io.Reader) (*Dump, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	d := &Dump{}
	var create strings.Builder
	inCreate := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if inCreate {
			create.WriteString(line)
			create.WriteByte('\n')
			if strings.Contains(line, ");") {
				inCreate = false
				d.Columns = parseColumns(create.String())
			}
			continue
		}

		if m := createRe.FindStringSubmatch(line); m != nil && d.Columns == nil {
			d.Table = m[1]
			create.WriteString(line)
			create.WriteByte('\n')
			if strings.Contains(line, ");") {
				d.Columns = parseColumns(create.String())
			} else {
				inCreate = true
			}
			continue
		}

		if m := insertRe.FindStringSubmatch(line); m != nil {
			if d.Table == "" {
				d.Table = m[1]
			}
			d.Rows = append(d.Rows, splitValues(m[2]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// parseColumns collects the backticked names inside the column list.
func parseColumns(stmt string) []string {
	open := strings.Index(stmt, "(")
	if open < 0 {
		return nil
	}
	var cols []string
	for _, m := range columnRe.FindAllStringSubmatch(stmt[open+1:], -1) {
		cols = append(cols, m[1])
	}
	return cols
}

// splitValues splits a VALUES tuple on commas outside single quotes.
// Quotes are removed, '' and \' unescape to a quote and a bare NULL becomes
// the empty string.
func splitValues(raw string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
		inStr  bool
	)
	flush := func() {
		v := strings.TrimSpace(cur.String())
		if !quoted && strings.EqualFold(v, "NULL") {
			v = ""
		}
		out = append(out, v)
		cur.Reset()
		quoted = false
	}

	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case inStr && c == '\\' && i+1 < len(rs):
			i++
			cur.WriteRune(rs[i])
		case inStr && c == '\'' && i+1 < len(rs) && rs[i+1] == '\'':
			i++
			cur.WriteRune('\'')
		case c == '\'':
			inStr = !inStr
			quoted = true
		case !inStr && c == ',':
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return out
}

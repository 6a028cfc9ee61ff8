package tables

import (
	"math"
	"strings"
)

// MinColumnRatio is the similarity a column name needs to match a lookup
const MinColumnRatio = 75

// Frame is the header/record view of a table: the first row names the
// columns and every following row is a record
type Frame struct {
	PageNumber int
	Columns    []string
	Records    [][]string
}

// NewFrame builds a frame from a table. Line breaks in column names become
// spaces and columns without a usable name are dropped. It returns false
// for tables with no records or with at most one named column.
func NewFrame(t *Table) (*Frame, bool) {
	texts := t.Texts()
	if len(texts) < 2 {
		return nil, false
	}

	var keep []int
	var columns []string
	for i, name := range texts[0] {
		name = strings.ReplaceAll(name, LineSeparator, " ")
		if strings.TrimSpace(name) == "" || strings.Contains(strings.ToLower(name), "unnamed") {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, name)
	}
	if len(columns) <= 1 {
		return nil, false
	}

	records := make([][]string, 0, len(texts)-1)
	for _, row := range texts[1:] {
		record := make([]string, len(keep))
		for j, i := range keep {
			record[j] = row[i]
		}
		records = append(records, record)
	}
	return &Frame{PageNumber: t.PageNumber, Columns: columns, Records: records}, true
}

// NewFrames builds the frames of tables, skipping tables that do not make a
// frame
func NewFrames(tables []*Table) []*Frame {
	var frames []*Frame
	for _, t := range tables {
		if f, ok := NewFrame(t); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Column returns the index of the column whose name is most similar to
// name, ignoring case, or -1 if none reaches MinColumnRatio
func (f *Frame) Column(name string) int {
	chosen, chosenRatio := -1, 0
	for i, column := range f.Columns {
		ratio := Ratio(strings.ToLower(column), strings.ToLower(name))
		if ratio >= MinColumnRatio && ratio > chosenRatio {
			chosen, chosenRatio = i, ratio
		}
	}
	return chosen
}

// Lookup returns the value of the fuzzily matched column in record line,
// or "" if no column matches or line is out of range
func (f *Frame) Lookup(column string, line int) string {
	i := f.Column(column)
	if i < 0 || line < 0 || line >= len(f.Records) {
		return ""
	}
	return f.Records[line][i]
}

// sameColumns reports whether both frames have the same column names
func (f *Frame) sameColumns(other *Frame) bool {
	if len(f.Columns) != len(other.Columns) {
		return false
	}
	names := make(map[string]bool, len(other.Columns))
	for _, c := range other.Columns {
		names[c] = true
	}
	for _, c := range f.Columns {
		if !names[c] {
			return false
		}
	}
	return true
}

// Ratio is a 0..100 similarity score: twice the longest common subsequence
// of runes over the total rune count, rounded half to even. Only insertions
// and deletions count, so a name with an added suffix ("Power cv" for
// "power") still scores high.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	ratio := 2 * float64(commonSubsequence(ra, rb)) / float64(total)
	return int(math.RoundToEven(100 * ratio))
}

// commonSubsequence returns the length of the longest common subsequence
func commonSubsequence(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := range a {
		for j := range b {
			switch {
			case a[i] == b[j]:
				cur[j+1] = prev[j] + 1
			case prev[j+1] >= cur[j]:
				cur[j+1] = prev[j+1]
			default:
				cur[j+1] = cur[j]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Catalog holds frames by group name
type Catalog struct {
	names  []string
	groups map[string][]*Frame
}

// GroupFrames assigns frames to groups in order. A frame joins the current
// group while it has the same column names as the previous frame there.
// A frame with the same number of columns but other names opens the next
// group. A frame with a different number of columns still joins the
// current group and closes it, so the frame after it opens the next group.
// Once the names run out every remaining frame joins the last group.
func GroupFrames(frames []*Frame, groupNames []string) *Catalog {
	c := &Catalog{
		names:  append([]string(nil), groupNames...),
		groups: make(map[string][]*Frame, len(groupNames)),
	}
	if len(groupNames) == 0 {
		return c
	}

	last := len(groupNames) - 1
	current := 0
	for _, f := range frames {
		group := groupNames[current]
		if members := c.groups[group]; len(members) > 0 {
			prev := members[len(members)-1]
			switch {
			case len(prev.Columns) != len(f.Columns):
				current = min(current+1, last)
			case !prev.sameColumns(f):
				current = min(current+1, last)
				group = groupNames[current]
			}
		}
		c.groups[group] = append(c.groups[group], f)
	}
	return c
}

// Names returns the group names in order
func (c *Catalog) Names() []string {
	return c.names
}

// Group returns the frames of a group
func (c *Catalog) Group(name string) []*Frame {
	return c.groups[name]
}

// Value looks up column at record line of the tableIndex-th frame of a
// group. Any miss returns "".
func (c *Catalog) Value(group string, tableIndex int, column string, line int) string {
	frames := c.groups[group]
	if tableIndex < 0 || tableIndex >= len(frames) {
		return ""
	}
	return frames[tableIndex].Lookup(column, line)
}

package runtime

import "strings"

// Record holds the current input record, its lazily-split fields, and
// the separators that govern both (spec §3 "Record/field state", §4.9).
type Record struct {
	line   string
	fields []string // fields[0] is unused; fields[i] is $i
	split  bool

	FS  string
	OFS string

	// Cache is the regex cache used when FS is a multi-byte pattern.
	// Left nil, splitFields falls back to a package-level default.
	Cache *RegexCache
}

// NewRecord returns a Record with awk's default separators.
func NewRecord() *Record {
	return &Record{FS: " ", OFS: " "}
}

// SetLine installs a new $0, invalidating the field cache (spec §3:
// "Whole-record assignment invalidates field cache").
func (r *Record) SetLine(line string) {
	r.line = line
	r.fields = nil
	r.split = false
}

// Line returns $0. SetField and SetNF rebuild it from the fields joined
// by OFS at assignment time, so the stored line is always current.
func (r *Record) Line() string {
	return r.line
}

// NF returns the current field count, splitting the record on first use.
func (r *Record) NF() int {
	r.ensureSplit()
	return len(r.fields) - 1
}

// Field returns $i (i==0 returns the whole record); indices beyond NF
// yield an empty string without creating a field slot (only assignment
// does that, via SetField).
func (r *Record) Field(i int) string {
	if i == 0 {
		return r.line
	}
	r.ensureSplit()
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// SetField assigns $i, extending the field vector with empty fields up
// to i-1 if needed, and rebuilds $0 from the fields joined by OFS (spec
// §4.9). i==0 is whole-record assignment (SetLine).
func (r *Record) SetField(i int, value string) {
	if i == 0 {
		r.SetLine(value)
		return
	}
	r.ensureSplit()
	for len(r.fields) <= i {
		r.fields = append(r.fields, "")
	}
	r.fields[i] = value
	r.rebuildLine()
}

// SetNF truncates or extends the field vector to n fields and rebuilds
// $0, implementing assignment to the NF special variable.
func (r *Record) SetNF(n int) {
	r.ensureSplit()
	if n < 0 {
		n = 0
	}
	if n+1 <= len(r.fields) {
		r.fields = r.fields[:n+1]
	} else {
		for len(r.fields) <= n {
			r.fields = append(r.fields, "")
		}
	}
	r.rebuildLine()
}

func (r *Record) rebuildLine() {
	r.line = strings.Join(r.fields[1:], r.OFS)
}

func (r *Record) ensureSplit() {
	if r.split {
		return
	}
	r.fields = splitFields(r.line, r.FS, r.Cache)
	r.split = true
}

// SplitWithRegex is the same as ensureSplit's internal logic but exposed
// for the split() builtin, which applies FS-style rules against an
// arbitrary string and an arbitrary destination array rather than the
// current record (spec §4.7 "split clears the target array...").
func SplitWithRegex(s, fs string, cache *RegexCache) []string {
	fields := splitFields(s, fs, cache)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// splitFields implements the three FS modes from spec §4.9. fields[0] is
// always an unused placeholder so 1-based indexing lines up with $i.
func splitFields(line, fs string, cache *RegexCache) []string {
	out := []string{""}
	if line == "" {
		return out
	}
	switch {
	case fs == " ":
		for _, f := range strings.Fields(line) {
			out = append(out, f)
		}
	case len(fs) == 1 && fs != " ":
		out = append(out, strings.Split(line, fs)...)
	default:
		if cache == nil {
			cache = defaultSplitCache
		}
		re, err := cache.Get(fs)
		if err != nil {
			out = append(out, line)
			break
		}
		out = append(out, re.Split(line, -1)...)
	}
	return out
}

// defaultSplitCache backs splitFields when no explicit cache is threaded
// through (e.g. from code paths that don't carry an executor reference);
// the executor's own record splitting always passes its own cache.
var defaultSplitCache = NewRegexCache()

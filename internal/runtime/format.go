package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprintf implements awk's printf/sprintf verb set (spec §4.5 "print/
// printf"): d i o x X u c s e E f F g G %, with -+0 space # flags and a
// literal (non-`*`) width/precision, translated to Go's fmt by
// retagging each verb with the Go-equivalent and coercing the matching
// argument via ToNumber/ToString. No pack example implements POSIX awk
// printf conversion — this is necessarily hand-rolled over the standard
// library's fmt (see DESIGN.md).
func Sprintf(format string, args []Value, convFmt string) string {
	var out strings.Builder
	argi := 0
	next := func() Value {
		if argi < len(args) {
			v := args[argi]
			argi++
			return v
		}
		return Value{}
	}

	i, n := 0, len(format)
	for i < n {
		c := format[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}
		start := i
		i++
		if i < n && format[i] == '%' {
			out.WriteByte('%')
			i++
			continue
		}
		for i < n && strings.ContainsRune("-+ 0#", rune(format[i])) {
			i++
		}
		for i < n && format[i] >= '0' && format[i] <= '9' {
			i++
		}
		if i < n && format[i] == '.' {
			i++
			for i < n && format[i] >= '0' && format[i] <= '9' {
				i++
			}
		}
		if i >= n {
			out.WriteString(format[start:i])
			break
		}
		verb := format[i]
		spec := format[start : i+1]
		i++

		switch verb {
		case 'd', 'i':
			goSpec := spec[:len(spec)-1] + "d"
			out.WriteString(fmt.Sprintf(goSpec, int64(next().ToNumber())))
		case 'o', 'x', 'X', 'u':
			goVerb := verb
			if verb == 'u' {
				goVerb = 'd'
			}
			goSpec := spec[:len(spec)-1] + string(goVerb)
			v := next().ToNumber()
			uv := uint64(int64(v))
			if goVerb == 'd' {
				out.WriteString(fmt.Sprintf(goSpec, int64(uv)))
			} else {
				out.WriteString(fmt.Sprintf(goSpec, uv))
			}
		case 'e', 'E', 'f', 'F', 'g', 'G':
			out.WriteString(fmt.Sprintf(spec, next().ToNumber()))
		case 'c':
			v := next()
			if v.Tag == TagNumber {
				out.WriteRune(rune(int64(v.Num)))
			} else {
				s := v.ToString(convFmt)
				if s == "" {
					break
				}
				out.WriteRune([]rune(s)[0])
			}
		case 's':
			out.WriteString(fmt.Sprintf(spec, next().ToString(convFmt)))
		default:
			out.WriteString(spec)
		}
	}
	return out.String()
}

// FormatInt is a small helper used by code that needs awk's integer
// rendering (e.g. RSTART/RLENGTH) without going through Value.
func FormatInt(i int) string {
	return strconv.Itoa(i)
}

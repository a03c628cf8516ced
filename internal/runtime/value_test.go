package runtime

import "testing"

func TestToNumberCoercion(t *testing.T) {
	cases := []struct {
		v    Value
		want float64
	}{
		{Number(3.5), 3.5},
		{String("abc"), 0},
		{StrNum("  42  "), 42},
		{StrNum("3.14e2"), 314},
		{StrNum("not a number"), 0},
	}
	for _, c := range cases {
		if got := c.v.ToNumber(); got != c.want {
			t.Errorf("ToNumber(%+v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestFormatNumberIntegerValued(t *testing.T) {
	if got := FormatNumber(117264507, "%.6g"); got != "117264507" {
		t.Errorf("FormatNumber(117264507) = %q, want %q", got, "117264507")
	}
	if got := FormatNumber(3.14159265, "%.6g"); got != "3.14159" {
		t.Errorf("FormatNumber(3.14159265) = %q, want %q", got, "3.14159")
	}
}

func TestTruthy(t *testing.T) {
	if Number(0).Truthy() {
		t.Error("Number(0) should be falsy")
	}
	if !String("0").Truthy() {
		t.Error("String(\"0\") should be truthy (non-empty string)")
	}
	if StrNum("0").Truthy() {
		t.Error("StrNum(\"0\") should be falsy (parses as numeric 0)")
	}
	if !StrNum("abc").Truthy() {
		t.Error("StrNum(\"abc\") should be truthy (non-numeric, non-empty)")
	}
}

func TestCompareNumericVsLexicographic(t *testing.T) {
	if Compare(Number(10), Number(9), "%.6g") <= 0 {
		t.Error("10 should compare greater than 9 numerically")
	}
	if Compare(String("10"), String("9"), "%.6g") >= 0 {
		t.Error("\"10\" should compare less than \"9\" lexicographically")
	}
	if Compare(StrNum("10"), StrNum("9"), "%.6g") <= 0 {
		t.Error("StrNum \"10\" vs \"9\" should compare numerically")
	}
}

func TestArrayAutoVivify(t *testing.T) {
	a := NewArray()
	if a.Has("k") {
		t.Fatal("fresh array should not have key k")
	}
	_ = a.Get("k")
	if !a.Has("k") {
		t.Error("reading a[k] should auto-vivify k")
	}
	a.Clear()
	if a.Len() != 0 {
		t.Error("Clear should empty the array")
	}
}

func TestRecordFieldSplitDefaultFS(t *testing.T) {
	r := NewRecord()
	r.SetLine("  a  b  c  ")
	if got := r.NF(); got != 3 {
		t.Fatalf("NF = %d, want 3", got)
	}
	if got := r.Field(2); got != "b" {
		t.Errorf("$2 = %q, want %q", got, "b")
	}
}

func TestRecordSetFieldExtendsAndRebuilds(t *testing.T) {
	r := NewRecord()
	r.SetLine("a b")
	r.SetField(4, "d")
	if got := r.NF(); got != 4 {
		t.Fatalf("NF = %d, want 4", got)
	}
	if got := r.Line(); got != "a b  d" {
		t.Errorf("$0 = %q, want %q", got, "a b  d")
	}
}

func TestRecordSingleByteFSPreservesEmptyFields(t *testing.T) {
	r := NewRecord()
	r.FS = ":"
	r.SetLine("a::b")
	if got := r.NF(); got != 3 {
		t.Fatalf("NF = %d, want 3", got)
	}
	if got := r.Field(2); got != "" {
		t.Errorf("$2 = %q, want empty", got)
	}
}

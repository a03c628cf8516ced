package bytecode

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/runtime"
)

// callBuiltin implements the fixed-arity builtins that get their own
// OpCallBuiltin dispatch (spec §4.5 "Builtins"). split, sub, and gsub
// have dedicated opcodes instead (by-reference array / lvalue target)
// and are handled directly in execChunk.
func (vm *VM) callBuiltin(f ast.BuiltinFunc, args []runtime.Value) (runtime.Value, error) {
	switch f {
	case ast.BuiltinLength:
		if len(args) == 0 {
			return runtime.Number(float64(len(vm.rec.Field(0)))), nil
		}
		return runtime.Number(float64(len(args[0].ToString(vm.convfmt)))), nil

	case ast.BuiltinSubstr:
		s := args[0].ToString(vm.convfmt)
		start := int(args[1].ToNumber())
		if len(args) >= 3 {
			return runtime.String(substr(s, start, int(args[2].ToNumber()), true)), nil
		}
		return runtime.String(substr(s, start, 0, false)), nil

	case ast.BuiltinIndex:
		s := args[0].ToString(vm.convfmt)
		t := args[1].ToString(vm.convfmt)
		return runtime.Number(float64(strings.Index(s, t) + 1)), nil

	case ast.BuiltinInt:
		return runtime.Number(math.Trunc(args[0].ToNumber())), nil
	case ast.BuiltinSin:
		return runtime.Number(math.Sin(args[0].ToNumber())), nil
	case ast.BuiltinCos:
		return runtime.Number(math.Cos(args[0].ToNumber())), nil
	case ast.BuiltinAtan2:
		return runtime.Number(math.Atan2(args[0].ToNumber(), args[1].ToNumber())), nil
	case ast.BuiltinLog:
		return runtime.Number(math.Log(args[0].ToNumber())), nil
	case ast.BuiltinExp:
		return runtime.Number(math.Exp(args[0].ToNumber())), nil
	case ast.BuiltinSqrt:
		return runtime.Number(math.Sqrt(args[0].ToNumber())), nil

	case ast.BuiltinRand:
		return runtime.Number(vm.rng.Float64()), nil
	case ast.BuiltinSrand:
		prev := vm.seed
		seed := float64(time.Now().UnixNano())
		if len(args) > 0 {
			seed = args[0].ToNumber()
		}
		vm.seed = seed
		vm.rng = rand.New(rand.NewSource(int64(seed)))
		return runtime.Number(prev), nil

	case ast.BuiltinTolower:
		return runtime.String(strings.ToLower(args[0].ToString(vm.convfmt))), nil
	case ast.BuiltinToupper:
		return runtime.String(strings.ToUpper(args[0].ToString(vm.convfmt))), nil

	case ast.BuiltinSprintf:
		format := args[0].ToString(vm.convfmt)
		return runtime.String(runtime.Sprintf(format, args[1:], vm.convfmt)), nil

	case ast.BuiltinMatch:
		s := args[0].ToString(vm.convfmt)
		pat := args[1].ToString(vm.convfmt)
		re, err := vm.regexCache.Get(pat)
		if err != nil {
			return runtime.Value{}, err
		}
		loc := re.FindStringIndex(s)
		if loc == nil {
			vm.rstart = 0
			vm.rlength = -1
			return runtime.Number(0), nil
		}
		vm.rstart = float64(loc[0] + 1)
		vm.rlength = float64(loc[1] - loc[0])
		return runtime.Number(vm.rstart), nil
	}
	return runtime.Value{}, &RuntimeError{Kind: KindFeature, Message: "unimplemented builtin"}
}

// substr implements 1-indexed, clamped substring extraction (POSIX
// awk's lenient out-of-range rule: a start before 1 or an end past the
// string length is clamped rather than an error).
func substr(s string, start, length int, hasLength bool) string {
	n := len(s)
	if !hasLength {
		if start < 1 {
			start = 1
		}
		if start > n {
			return ""
		}
		return s[start-1:]
	}
	end := start + length
	if start < 1 {
		start = 1
	}
	if end > n+1 {
		end = n + 1
	}
	if end <= start {
		return ""
	}
	return s[start-1 : end-1]
}

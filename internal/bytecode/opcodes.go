// Package bytecode lowers an analysed AST (internal/ast + internal/analysis)
// to a stack-oriented bytecode program and executes it (spec §4.5, §4.6).
package bytecode

import "github.com/rawklang/rawk/internal/ast"

// OpCode is a single bytecode instruction's operation.
type OpCode byte

const (
	// Constants and coercion. The var stack carries tagged runtime.Value
	// scalars; num and str are auxiliary typed stacks arithmetic and
	// concatenation operate on directly. Every expression subtree leaves
	// its result on the var stack; typed ops bridge to/from it with the
	// coercion opcodes rather than the analyser's ScalarType hint picking
	// a typed fast path per call site (§9 optimiser pass, out of scope
	// here).
	OpPushNum OpCode = iota // A: index into Chunk.NumConsts -> num stack
	OpPushStr                // A: index into Chunk.StrConsts -> str stack
	OpNumToVar               // num stack -> var stack (tag Number)
	OpStrToVar               // str stack -> var stack (tag String)
	OpVarToNum               // var stack -> num stack (ToNumber)
	OpVarToStr               // var stack -> str stack (ToString, CONVFMT)
	OpDupVar                 // duplicate top of var stack
	OpPop                    // discard top of var stack

	// Globals/locals. Locals are a running function's parameter slots;
	// AWK has no separate local-variable declarations (spec §4.3).
	OpLoadGlobalScalar  // A: global scalar id -> var stack
	OpStoreGlobalScalar // var stack -> global scalar id
	OpLoadLocalScalar   // A: param index -> var stack
	OpStoreLocalScalar  // var stack -> param index
	OpPushArrayGlobal   // A: global array id -> array stack (call ABI)
	OpPushArrayLocal    // A: param index -> array stack (call ABI)

	// Arithmetic (num stack).
	OpAddNum
	OpSubNum
	OpMulNum
	OpDivNum
	OpModNum
	OpPowNum
	OpNegNum

	// Comparison and match (var stack; StrNum-ness only survives on the
	// tagged representation, so these never go through the num/str
	// typed stacks).
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpCmpEq
	OpCmpNe
	OpMatch
	OpNotMatch
	OpNotVar // pop var, push Number(!Truthy)

	// String.
	OpConcat // A: n -> pops n from str stack, pushes joined str

	// Field/record. Index comes off the num stack (callers VarToNum it
	// first), result/value go through the var stack.
	OpGetField // num stack: index -> var stack: field value
	OpSetField // num stack: index; var stack: value -> (none)

	// Array (direct global/local forms carry the array identity so the
	// array stack is reserved for the call ABI). B: index count.
	OpArrayGetGlobal
	OpArrayGetLocal
	OpArraySetGlobal
	OpArraySetLocal
	OpArrayHasGlobal
	OpArrayHasLocal
	OpArrayDeleteGlobal // B==0: delete whole array
	OpArrayDeleteLocal
	OpIterBeginGlobal
	OpIterBeginLocal
	OpIterNext // A: jump target once the snapshot is exhausted

	// Control flow. JumpIfFalse/True peek (do not pop); every lowering
	// pairs them with an explicit Pop on both continuations (spec §4.5).
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	// Calls.
	OpCall   // A: function index, B: arg count
	OpRet    // var stack top is the return value
	OpNextLine
	OpNext // `next`: abort the running action, resume at the next record
	OpExit // `exit`: A==1 pops a num exit code, A==0 keeps the current one

	// Builtins: one shared opcode carrying the builtin's id and an
	// immediate argc, a simplification of spec §4.5's per-arity opcode
	// list; split and sub/gsub have their own opcodes.
	OpCallBuiltin      // A: ast.BuiltinFunc, B: argc
	OpSplitGlobal      // A: global array id, B: argc (1 or 2, excluding dest array)
	OpSplitLocal       // A: param index, B: argc
	OpSub              // A: 0 plain / 1 global ("gsub")

	// print/printf.
	OpPrint   // B: argc (0 means implicit $0)
	OpPrintf  // B: argc (format + args)
)

// opcodeNames is used by the disassembler.
var opcodeNames = map[OpCode]string{
	OpPushNum: "push_num", OpPushStr: "push_str",
	OpNumToVar: "num_to_var", OpStrToVar: "str_to_var",
	OpVarToNum: "var_to_num", OpVarToStr: "var_to_str",
	OpDupVar: "dup", OpPop: "pop",
	OpGetField: "get_field", OpSetField: "set_field",
	OpLoadGlobalScalar: "load_gscalar", OpStoreGlobalScalar: "store_gscalar",
	OpLoadLocalScalar: "load_lscalar", OpStoreLocalScalar: "store_lscalar",
	OpPushArrayGlobal: "push_garray", OpPushArrayLocal: "push_larray",
	OpAddNum: "add", OpSubNum: "sub", OpMulNum: "mul", OpDivNum: "div",
	OpModNum: "mod", OpPowNum: "pow", OpNegNum: "neg",
	OpCmpLt: "lt", OpCmpLe: "le", OpCmpGt: "gt", OpCmpGe: "ge",
	OpCmpEq: "eq", OpCmpNe: "ne", OpMatch: "match", OpNotMatch: "not_match",
	OpNotVar: "not", OpConcat: "concat",
	OpArrayGetGlobal: "arr_get_g", OpArrayGetLocal: "arr_get_l",
	OpArraySetGlobal: "arr_set_g", OpArraySetLocal: "arr_set_l",
	OpArrayHasGlobal: "arr_has_g", OpArrayHasLocal: "arr_has_l",
	OpArrayDeleteGlobal: "arr_del_g", OpArrayDeleteLocal: "arr_del_l",
	OpIterBeginGlobal: "iter_begin_g", OpIterBeginLocal: "iter_begin_l",
	OpIterNext: "iter_next",
	OpJump: "jump", OpJumpIfFalse: "jump_if_false", OpJumpIfTrue: "jump_if_true",
	OpCall: "call", OpRet: "ret", OpNextLine: "next_line",
	OpNext: "next", OpExit: "exit",
	OpCallBuiltin: "call_builtin", OpSplitGlobal: "split_g", OpSplitLocal: "split_l",
	OpSub: "sub_re",
	OpPrint: "print", OpPrintf: "printf",
}

func (op OpCode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "unknown"
}

// builtinNames is used by the disassembler and error messages.
var builtinNames = map[ast.BuiltinFunc]string{
	ast.BuiltinLength: "length", ast.BuiltinSubstr: "substr",
	ast.BuiltinSplit: "split", ast.BuiltinIndex: "index",
	ast.BuiltinInt: "int", ast.BuiltinSin: "sin", ast.BuiltinCos: "cos",
	ast.BuiltinAtan2: "atan2", ast.BuiltinLog: "log", ast.BuiltinExp: "exp",
	ast.BuiltinSqrt: "sqrt", ast.BuiltinRand: "rand", ast.BuiltinSrand: "srand",
	ast.BuiltinTolower: "tolower", ast.BuiltinToupper: "toupper",
	ast.BuiltinSprintf: "sprintf", ast.BuiltinMatch: "match",
}

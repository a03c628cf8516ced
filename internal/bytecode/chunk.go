package bytecode

// Instruction is one bytecode op plus up to two immediate operands. Unlike
// the packed 32-bit [opcode|A|B] layout a C-derived VM needs to keep
// instructions machine-word sized, a Go struct has no such width pressure,
// so operands are plain ints and jump targets are absolute instruction
// indices rather than signed relative offsets (see DESIGN.md).
type Instruction struct {
	Op OpCode
	A  int
	B  int
}

// Chunk is one function's (or the synthesised main driver's) compiled
// bytecode: a linear instruction vector plus the constant pools referenced
// by OpPushNum/OpPushStr (spec §4.5).
type Chunk struct {
	Name      string
	Code      []Instruction
	Lines     []int
	NumConsts []float64
	StrConsts []string

	numIndex map[float64]int
	strIndex map[string]int
}

// NewChunk returns an empty chunk named name (used in --debug listings).
func NewChunk(name string) *Chunk {
	return &Chunk{
		Name:     name,
		numIndex: make(map[float64]int),
		strIndex: make(map[string]int),
	}
}

// Emit appends an instruction at line and returns its index.
func (c *Chunk) Emit(op OpCode, a, b int, line int) int {
	idx := len(c.Code)
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b})
	c.Lines = append(c.Lines, line)
	return idx
}

// Patch overwrites operand A of the instruction at idx, used to back-patch
// jump targets once the following code's length is known.
func (c *Chunk) Patch(idx, a int) {
	c.Code[idx].A = a
}

// Here returns the index the next Emit call will use, the natural jump
// target for "patch to here".
func (c *Chunk) Here() int {
	return len(c.Code)
}

// AddNumConst interns f into the chunk's numeric constant pool.
func (c *Chunk) AddNumConst(f float64) int {
	if idx, ok := c.numIndex[f]; ok {
		return idx
	}
	idx := len(c.NumConsts)
	c.NumConsts = append(c.NumConsts, f)
	c.numIndex[f] = idx
	return idx
}

// AddStrConst interns s into the chunk's string constant pool.
func (c *Chunk) AddStrConst(s string) int {
	if idx, ok := c.strIndex[s]; ok {
		return idx
	}
	idx := len(c.StrConsts)
	c.StrConsts = append(c.StrConsts, s)
	c.strIndex[s] = idx
	return idx
}

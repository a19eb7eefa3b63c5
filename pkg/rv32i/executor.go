package rv32i

import (
	"encoding/binary"
	"fmt"
)

// execTracker records the pre-instruction value of every register,
// memory byte, and CSR touched during one Execute or Apply call, the
// first time (and only the first time) each is touched. Building a
// StateDelta from this dirty set costs O(bytes actually written) rather
// than O(memory size), which a full before/after memory clone would cost.
type execTracker struct {
	cpu      *CPU
	oldPC    uint32
	mnemonic string

	regOld   map[Register]uint32
	regOrder []Register

	memOld   map[uint32]byte
	memOrder []uint32

	csrOld   map[uint16]uint32
	csrOrder []uint16
}

func newExecTracker(cpu *CPU) *execTracker {
	return &execTracker{
		cpu:    cpu,
		oldPC:  cpu.PC(),
		regOld: make(map[Register]uint32),
		memOld: make(map[uint32]byte),
		csrOld: make(map[uint16]uint32),
	}
}

func (t *execTracker) setReg(r Register, value uint32) {
	if r == X0 || r == PC {
		return
	}
	if _, seen := t.regOld[r]; !seen {
		t.regOld[r] = t.cpu.GetRegister(r)
		t.regOrder = append(t.regOrder, r)
	}
	t.cpu.SetRegister(r, value)
}

func (t *execTracker) writeByte(addr uint32, value byte) {
	if _, seen := t.memOld[addr]; !seen {
		t.memOld[addr] = t.cpu.mem[addr]
		t.memOrder = append(t.memOrder, addr)
	}
	t.cpu.mem[addr] = value
}

func (t *execTracker) writeBytes(addr uint32, data []byte) {
	for i, b := range data {
		t.writeByte(addr+uint32(i), b)
	}
}

func (t *execTracker) writeCSR(addr uint16, value uint32) {
	if _, seen := t.csrOld[addr]; !seen {
		t.csrOld[addr] = t.cpu.csr.Get(addr)
		t.csrOrder = append(t.csrOrder, addr)
	}
	t.cpu.csr.set(addr, value)
}

// finish assembles a StateDelta from every touched item whose value
// actually changed; no-op writes are filtered, as the data model requires.
func (t *execTracker) finish() StateDelta {
	var d StateDelta
	for _, r := range t.regOrder {
		old, newV := t.regOld[r], t.cpu.GetRegister(r)
		if old != newV {
			d.RegisterChanges = append(d.RegisterChanges, RegisterChange{Reg: r, Old: old, New: newV})
		}
	}
	for _, a := range t.memOrder {
		old, newV := t.memOld[a], t.cpu.mem[a]
		if old != newV {
			d.MemoryChanges = append(d.MemoryChanges, MemoryDelta{
				Addr: a, OldData: []byte{old}, NewData: []byte{newV},
			})
		}
	}
	for _, a := range t.csrOrder {
		old, newV := t.csrOld[a], t.cpu.csr.Get(a)
		if old != newV {
			d.CSRChanges = append(d.CSRChanges, CSRChange{Addr: a, Old: old, New: newV})
		}
	}
	d.PCChange = PCChange{Old: t.oldPC, New: t.cpu.PC()}
	d.Mnemonic = t.mnemonic
	return d
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Execute runs one instruction to completion, returning the resulting
// StateDelta. On error no register, memory, or CSR write is observable:
// every trap condition is detected and returned before any commit.
func (c *CPU) Execute(in Instruction) (StateDelta, error) {
	t := newExecTracker(c)
	t.mnemonic = in.Mnemonic()

	switch in.Op {
	case OpNOP, OpFENCE:
		// no architectural effect beyond the PC advance below.

	case OpADD:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)+c.GetRegister(in.Rs2))
	case OpSUB:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)-c.GetRegister(in.Rs2))
	case OpAND:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)&c.GetRegister(in.Rs2))
	case OpOR:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)|c.GetRegister(in.Rs2))
	case OpXOR:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)^c.GetRegister(in.Rs2))
	case OpSLL:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)<<(c.GetRegister(in.Rs2)&0x1F))
	case OpSRL:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)>>(c.GetRegister(in.Rs2)&0x1F))
	case OpSRA:
		shamt := c.GetRegister(in.Rs2) & 0x1F
		t.setReg(in.Rd, uint32(int32(c.GetRegister(in.Rs1))>>shamt))
	case OpSLT:
		t.setReg(in.Rd, boolToU32(int32(c.GetRegister(in.Rs1)) < int32(c.GetRegister(in.Rs2))))
	case OpSLTU:
		t.setReg(in.Rd, boolToU32(c.GetRegister(in.Rs1) < c.GetRegister(in.Rs2)))

	case OpADDI:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)+in.Imm.AsU32())
	case OpANDI:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)&in.Imm.AsU32())
	case OpORI:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)|in.Imm.AsU32())
	case OpXORI:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)^in.Imm.AsU32())
	case OpSLTI:
		t.setReg(in.Rd, boolToU32(int32(c.GetRegister(in.Rs1)) < in.Imm.AsI32()))
	case OpSLTIU:
		t.setReg(in.Rd, boolToU32(c.GetRegister(in.Rs1) < in.Imm.AsU32()))

	case OpSLLI:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)<<(in.Imm.AsU32()&0x1F))
	case OpSRLI:
		t.setReg(in.Rd, c.GetRegister(in.Rs1)>>(in.Imm.AsU32()&0x1F))
	case OpSRAI:
		shamt := in.Imm.AsU32() & 0x1F
		t.setReg(in.Rd, uint32(int32(c.GetRegister(in.Rs1))>>shamt))

	case OpLB, OpLBU, OpLH, OpLHU, OpLW:
		if err := c.executeLoad(t, in); err != nil {
			return StateDelta{}, err
		}

	case OpSB, OpSH, OpSW:
		if err := c.executeStore(t, in); err != nil {
			return StateDelta{}, err
		}

	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		c.executeBranch(t, in)
		return t.finish(), nil

	case OpJAL:
		if err := c.executeJAL(t, in); err != nil {
			return StateDelta{}, err
		}
		return t.finish(), nil

	case OpJALR:
		if err := c.executeJALR(t, in); err != nil {
			return StateDelta{}, err
		}
		return t.finish(), nil

	case OpLUI:
		t.setReg(in.Rd, in.Imm.AsU32()<<12)
	case OpAUIPC:
		t.setReg(in.Rd, c.PC()+(in.Imm.AsU32()<<12))

	case OpECALL:
		return StateDelta{}, &CpuError{Kind: EnvironmentCall}
	case OpEBREAK:
		return StateDelta{}, &CpuError{Kind: Breakpoint}

	case OpCSRRW, OpCSRRS, OpCSRRC, OpCSRRWI, OpCSRRSI, OpCSRRCI:
		if err := c.executeCSR(t, in); err != nil {
			return StateDelta{}, err
		}

	default:
		return StateDelta{}, newIllegalInstruction(fmt.Sprintf("unrecognized op %d", in.Op))
	}

	c.SetPC(t.oldPC + EncodedLength)
	return t.finish(), nil
}

// executeLoad handles LB/LBU/LH/LHU/LW: compute and bounds-check the
// effective address before touching rd.
func (c *CPU) executeLoad(t *execTracker, in Instruction) error {
	ea := c.GetRegister(in.Rs1) + in.Imm.AsU32()
	var n uint32
	switch in.Op {
	case OpLB, OpLBU:
		n = 1
	case OpLH, OpLHU:
		n = 2
	case OpLW:
		n = 4
	}
	if !c.inBounds(ea, n) {
		return newAccessViolation(ea)
	}
	data := c.readBytes(ea, n)

	var value uint32
	switch in.Op {
	case OpLB:
		value = uint32(int32(int8(data[0])))
	case OpLBU:
		value = uint32(data[0])
	case OpLH:
		value = uint32(int32(int16(binary.LittleEndian.Uint16(data))))
	case OpLHU:
		value = uint32(binary.LittleEndian.Uint16(data))
	case OpLW:
		value = binary.LittleEndian.Uint32(data)
	}
	t.setReg(in.Rd, value)
	return nil
}

// executeStore handles SB/SH/SW: compute and bounds-check the effective
// address before any byte is written.
func (c *CPU) executeStore(t *execTracker, in Instruction) error {
	ea := c.GetRegister(in.Rs1) + in.Imm.AsU32()
	val := c.GetRegister(in.Rs2)

	var data []byte
	switch in.Op {
	case OpSB:
		data = []byte{byte(val)}
	case OpSH:
		data = make([]byte, 2)
		binary.LittleEndian.PutUint16(data, uint16(val))
	case OpSW:
		data = make([]byte, 4)
		binary.LittleEndian.PutUint32(data, val)
	}
	if !c.inBounds(ea, uint32(len(data))) {
		return newAccessViolation(ea)
	}
	t.writeBytes(ea, data)
	return nil
}

// executeBranch handles BEQ/BNE/BLT/BGE/BLTU/BGEU. Branches never trap:
// the validator already guarantees an even, in-range offset at parse time.
func (c *CPU) executeBranch(t *execTracker, in Instruction) {
	rs1, rs2 := c.GetRegister(in.Rs1), c.GetRegister(in.Rs2)
	var taken bool
	switch in.Op {
	case OpBEQ:
		taken = rs1 == rs2
	case OpBNE:
		taken = rs1 != rs2
	case OpBLT:
		taken = int32(rs1) < int32(rs2)
	case OpBGE:
		taken = int32(rs1) >= int32(rs2)
	case OpBLTU:
		taken = rs1 < rs2
	case OpBGEU:
		taken = rs1 >= rs2
	}
	if taken {
		c.SetPC(t.oldPC + uint32(in.Imm.AsI32()*2))
	} else {
		c.SetPC(t.oldPC + EncodedLength)
	}
}

// executeJAL computes the target and checks 4-byte alignment before
// writing rd or PC.
func (c *CPU) executeJAL(t *execTracker, in Instruction) error {
	target := t.oldPC + uint32(in.Imm.AsI32()*2)
	if target%4 != 0 {
		return newMisalignedJump(target)
	}
	t.setReg(in.Rd, t.oldPC+EncodedLength)
	c.SetPC(target)
	return nil
}

// executeJALR forces bit 0 of the target to 0, then checks 4-byte
// alignment before writing rd or PC.
func (c *CPU) executeJALR(t *execTracker, in Instruction) error {
	target := (c.GetRegister(in.Rs1) + in.Imm.AsU32()) &^ 1
	if target%4 != 0 {
		return newMisalignedJump(target)
	}
	t.setReg(in.Rd, t.oldPC+EncodedLength)
	c.SetPC(target)
	return nil
}

// executeCSR implements the Zicsr atomic read-modify-write table: a
// write is attempted only when the source operand is nonzero (for the
// set/clear forms) or unconditionally (for the swap forms), and a
// would-be write to an absent or read-only CSR traps before rd or the
// CSR value changes.
func (c *CPU) executeCSR(t *execTracker, in Instruction) error {
	addr := in.CSRAddr & 0xFFF
	old := c.csr.Get(addr)

	var newVal uint32
	var mustWrite bool
	switch in.Op {
	case OpCSRRW:
		newVal = c.GetRegister(in.Rs1)
		mustWrite = true
	case OpCSRRWI:
		newVal = in.CSRUimm()
		mustWrite = true
	case OpCSRRS:
		rs1 := c.GetRegister(in.Rs1)
		newVal = old | rs1
		mustWrite = rs1 != 0
	case OpCSRRC:
		rs1 := c.GetRegister(in.Rs1)
		newVal = old &^ rs1
		mustWrite = rs1 != 0
	case OpCSRRSI:
		uimm := in.CSRUimm()
		newVal = old | uimm
		mustWrite = uimm != 0
	case OpCSRRCI:
		uimm := in.CSRUimm()
		newVal = old &^ uimm
		mustWrite = uimm != 0
	}

	if mustWrite && (!c.csr.Present(addr) || c.csr.ReadOnly(addr)) {
		return newIllegalInstruction(fmt.Sprintf("CSR 0x%03X is not writable", addr))
	}

	t.setReg(in.Rd, old)
	if mustWrite {
		t.writeCSR(addr, newVal)
	}
	return nil
}

// Apply performs the writes described by m atomically: every memory
// range is checked against memory bounds and every CSR address against
// presence before any write happens. Unlike Execute, Apply never enforces
// CSR read-only status; it is the privileged path history navigation
// uses to revert or reapply recorded deltas, including to CSRs that are
// read-only from the executor's perspective.
func (c *CPU) Apply(m Modify) (StateDelta, error) {
	for _, mv := range m.MemoryChanges {
		if !c.inBounds(mv.Addr, uint32(len(mv.Data))) {
			return StateDelta{}, newAccessViolation(mv.Addr)
		}
	}
	for _, cv := range m.CSRChanges {
		if !c.csr.Present(cv.Addr) {
			return StateDelta{}, newIllegalInstruction(fmt.Sprintf("CSR 0x%03X does not exist", cv.Addr))
		}
	}

	t := newExecTracker(c)
	for _, rv := range m.RegisterChanges {
		t.setReg(rv.Reg, rv.Value)
	}
	for _, mv := range m.MemoryChanges {
		t.writeBytes(mv.Addr, mv.Data)
	}
	for _, cv := range m.CSRChanges {
		t.writeCSR(cv.Addr, cv.Value)
	}
	if m.PCChange != nil {
		c.SetPC(*m.PCChange)
	}
	return t.finish(), nil
}

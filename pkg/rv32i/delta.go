package rv32i

// RegisterChange records one register's value before and after an
// instruction or Modify. X0 never appears here (see CPU.SetRegister).
type RegisterChange struct {
	Reg      Register
	Old, New uint32
}

// CSRChange records one CSR's value before and after.
type CSRChange struct {
	Addr     uint16
	Old, New uint32
}

// PCChange records the program counter before and after. Present on
// every StateDelta, even when PC is unchanged (Old == New).
type PCChange struct {
	Old, New uint32
}

// MemoryDelta records a contiguous memory region's bytes before and
// after. OldData and NewData always have equal length.
type MemoryDelta struct {
	Addr             uint32
	OldData, NewData []byte
}

// StateDelta is the observation of everything one instruction changed.
// Only actually-changed items appear; a register write that happens to
// store the value already present is not recorded.
type StateDelta struct {
	RegisterChanges []RegisterChange
	MemoryChanges   []MemoryDelta
	CSRChanges      []CSRChange
	PCChange        PCChange
	// Mnemonic names the instruction that produced this delta, for
	// interpreter-level history labeling. Set by Execute; empty on a
	// delta produced by Apply, since a Modify carries no instruction
	// identity (history replay, not a fresh decode).
	Mnemonic string
}

// RegisterValue is a register write command for Modify.
type RegisterValue struct {
	Reg   Register
	Value uint32
}

// CSRValue is a CSR write command for Modify.
type CSRValue struct {
	Addr  uint16
	Value uint32
}

// MemoryValue is a memory write command for Modify.
type MemoryValue struct {
	Addr uint32
	Data []byte
}

// Modify is a command: apply these writes atomically. Built from a
// StateDelta via ToReverseModify/ToForwardModify for history navigation,
// or constructed directly by a caller that wants the privileged Apply
// path (bypassing executor-level legality checks like CSR read-only).
type Modify struct {
	RegisterChanges []RegisterValue
	MemoryChanges   []MemoryValue
	CSRChanges      []CSRValue
	PCChange        *uint32
}

// ToReverseModify yields a Modify whose writes restore every changed
// item to its pre-instruction value, including PC.
func (d StateDelta) ToReverseModify() Modify {
	m := Modify{
		RegisterChanges: make([]RegisterValue, len(d.RegisterChanges)),
		MemoryChanges:   make([]MemoryValue, len(d.MemoryChanges)),
		CSRChanges:      make([]CSRValue, len(d.CSRChanges)),
	}
	for i, rc := range d.RegisterChanges {
		m.RegisterChanges[i] = RegisterValue{Reg: rc.Reg, Value: rc.Old}
	}
	for i, md := range d.MemoryChanges {
		m.MemoryChanges[i] = MemoryValue{Addr: md.Addr, Data: md.OldData}
	}
	for i, cc := range d.CSRChanges {
		m.CSRChanges[i] = CSRValue{Addr: cc.Addr, Value: cc.Old}
	}
	old := d.PCChange.Old
	m.PCChange = &old
	return m
}

// ToForwardModify yields a Modify whose writes restore every changed
// item to its post-instruction value, including PC.
func (d StateDelta) ToForwardModify() Modify {
	m := Modify{
		RegisterChanges: make([]RegisterValue, len(d.RegisterChanges)),
		MemoryChanges:   make([]MemoryValue, len(d.MemoryChanges)),
		CSRChanges:      make([]CSRValue, len(d.CSRChanges)),
	}
	for i, rc := range d.RegisterChanges {
		m.RegisterChanges[i] = RegisterValue{Reg: rc.Reg, Value: rc.New}
	}
	for i, md := range d.MemoryChanges {
		m.MemoryChanges[i] = MemoryValue{Addr: md.Addr, Data: md.NewData}
	}
	for i, cc := range d.CSRChanges {
		m.CSRChanges[i] = CSRValue{Addr: cc.Addr, Value: cc.New}
	}
	newPC := d.PCChange.New
	m.PCChange = &newPC
	return m
}

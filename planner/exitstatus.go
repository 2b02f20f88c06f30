package planner

// ExitStatus is plan's per-tick result (§6 Exit semantics).
type ExitStatus int

const (
	// WAITFORROSMSG means required inputs have not arrived yet; non-fatal, retry next tick
	// (§7 "Input-not-ready").
	WAITFORROSMSG ExitStatus = iota
	SUCCESS
	INITTRAJGENERATIONFAIL
	CONSTRAINTGENERATIONFAIL
	QPFAIL
)

func (s ExitStatus) String() string {
	switch s {
	case WAITFORROSMSG:
		return "WAITFORROSMSG"
	case SUCCESS:
		return "SUCCESS"
	case INITTRAJGENERATIONFAIL:
		return "INITTRAJGENERATIONFAIL"
	case CONSTRAINTGENERATIONFAIL:
		return "CONSTRAINTGENERATIONFAIL"
	case QPFAIL:
		return "QPFAIL"
	default:
		return "UNKNOWN"
	}
}

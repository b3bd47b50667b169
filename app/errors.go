package app

// Stage names the init step that failed.
type Stage uint8

const (
	StageDisplayEnable Stage = iota + 1
	StageDriverInit
	StageContextInit
	StageTimer
)

func (s Stage) String() string {
	switch s {
	case StageDisplayEnable:
		return "display enable"
	case StageDriverInit:
		return "display driver init"
	case StageContextInit:
		return "drawing context init"
	case StageTimer:
		return "timer setup"
	default:
		return "unknown"
	}
}

// InitError is returned by App.Init. Nothing after the failed stage ran.
type InitError struct {
	Stage Stage
	Err   error
}

func (e *InitError) Error() string {
	return "init: " + e.Stage.String() + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

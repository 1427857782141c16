package dram

import (
	"fmt"

	"go.uber.org/zap"
)

// logger is the package-wide diagnostic sink for contract violations.
// It defaults to a production zap logger; callers that want abort
// diagnostics routed elsewhere (e.g. into a CLI's own logger tree)
// should call SetLogger during setup.
var logger = func() *zap.SugaredLogger {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		// zap's production config only fails to build on a broken
		// encoder registration, which never happens with defaults.
		panic(err)
	}
	return l.Sugar()
}()

// SetLogger replaces the package-wide logger used for contract-violation
// diagnostics. Passing nil installs a no-op logger (useful in tests
// that intentionally exercise the abort path).
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l
}

// ContractViolation is the error type raised by Abort: it represents a
// simulator bug (an illegal state transition, an issue_command call
// when IsReady is false, or an unrecognized command kind), never a
// modeled hardware fault. Per spec §7 there is no runtime recovery: the
// caller is expected to terminate the simulation.
type ContractViolation struct {
	Msg string
}

func (e *ContractViolation) Error() string {
	return "dram: contract violation: " + e.Msg
}

// Abort logs a structured diagnostic (the logger's caller annotation
// supplies file:line) and panics with a *ContractViolation. Simulation
// drivers are expected to let this propagate and terminate the run;
// it is not meant to be recovered and retried.
func Abort(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Errorw("dram: contract violation", "detail", msg)
	panic(&ContractViolation{Msg: msg})
}

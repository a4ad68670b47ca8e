package capture

import "testing"

func TestHostDiagnosticsDoesNotPanic(t *testing.T) {
	diag := hostDiagnostics()
	// hostDiagnostics must degrade to a zero value rather than erroring when
	// gopsutil can't read host info (e.g. a sandboxed or minimal container);
	// the only real assertion is that it returns at all.
	_ = diag.OS
}

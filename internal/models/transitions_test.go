package models

import "testing"

func TestAlertTransitionsForwardOnly(t *testing.T) {
	allowed := []struct{ from, to AlertStatus }{
		{AlertTriggered, AlertAcknowledged},
		{AlertTriggered, AlertResolved},
		{AlertTriggered, AlertSuppressed},
		{AlertAcknowledged, AlertResolved},
		{AlertAcknowledged, AlertSuppressed},
	}
	for _, tc := range allowed {
		if !CanTransitionAlert(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to AlertStatus }{
		{AlertResolved, AlertTriggered},
		{AlertResolved, AlertAcknowledged},
		{AlertAcknowledged, AlertTriggered},
		{AlertSuppressed, AlertResolved},
		{AlertTriggered, AlertTriggered},
	}
	for _, tc := range denied {
		if CanTransitionAlert(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
		if err := TransitionAlert(tc.from, tc.to); err == nil {
			t.Errorf("expected error for %s -> %s", tc.from, tc.to)
		}
	}
}

func TestOtaPipelineOrder(t *testing.T) {
	chain := []OtaStatus{OtaPending, OtaDownloading, OtaVerifying, OtaApplying, OtaSuccess}
	for i := 0; i < len(chain)-1; i++ {
		if err := TransitionOta(chain[i], chain[i+1]); err != nil {
			t.Fatalf("pipeline step %s -> %s rejected: %v", chain[i], chain[i+1], err)
		}
	}

	// No step may run backwards.
	for i := 1; i < len(chain); i++ {
		if CanTransitionOta(chain[i], chain[i-1]) {
			t.Errorf("regression %s -> %s should be denied", chain[i], chain[i-1])
		}
	}

	if !CanTransitionOta(OtaFailed, OtaRollback) {
		t.Error("Failed -> Rollback should be allowed")
	}
	if CanTransitionOta(OtaSuccess, OtaPending) {
		t.Error("Success is terminal")
	}
	if !TerminalOta(OtaSuccess) || TerminalOta(OtaFailed) {
		t.Error("TerminalOta misclassifies statuses")
	}
}

func TestCommandTransitions(t *testing.T) {
	if !CanTransitionCommand(CmdPending, CmdExecuting) {
		t.Error("Pending -> Executing should be allowed")
	}
	if !CanTransitionCommand(CmdPending, CmdCancelled) {
		t.Error("Pending -> Cancelled should be allowed")
	}
	if CanTransitionCommand(CmdPending, CmdSuccess) {
		t.Error("Pending -> Success skips Executing")
	}
	for _, s := range []CommandStatus{CmdSuccess, CmdFailed, CmdTimeout, CmdCancelled} {
		if !TerminalCommand(s) {
			t.Errorf("%s should be terminal", s)
		}
		if CanTransitionCommand(s, CmdExecuting) {
			t.Errorf("%s -> Executing should be denied", s)
		}
	}
}

func TestHealthStateFor(t *testing.T) {
	cases := []struct {
		name string
		r    ResourceUsage
		want HealthState
	}{
		{"idle", ResourceUsage{CPUPercent: 20, MemoryPercent: 30, DiskPercent: 40, TemperatureC: 45}, HealthOk},
		{"busy", ResourceUsage{CPUPercent: 70, MemoryPercent: 30, DiskPercent: 40, TemperatureC: 45}, HealthDegraded},
		{"hot", ResourceUsage{CPUPercent: 20, MemoryPercent: 30, DiskPercent: 40, TemperatureC: 70}, HealthWarning},
		{"pegged", ResourceUsage{CPUPercent: 95, MemoryPercent: 30, DiskPercent: 40, TemperatureC: 45}, HealthCritical},
		{"disk full", ResourceUsage{CPUPercent: 20, MemoryPercent: 30, DiskPercent: 95, TemperatureC: 45}, HealthCritical},
	}
	for _, tc := range cases {
		if got := HealthStateFor(tc.r); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClamps(t *testing.T) {
	if Clamp01(1.4) != 1 || Clamp01(-0.2) != 0 || Clamp01(0.5) != 0.5 {
		t.Error("Clamp01 out of contract")
	}
	if ClampPercent(120) != 100 || ClampPercent(-3) != 0 || ClampPercent(42) != 42 {
		t.Error("ClampPercent out of contract")
	}
}

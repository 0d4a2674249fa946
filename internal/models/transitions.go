package models

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// The status graphs below are declared once as looplab/fsm event tables and
// consulted everywhere a status change is requested: the transition handlers,
// the controllers' optimistic mutations, and event-bus merges. Each event is
// named after its destination status, so "can we move from A to B" is just
// "is event B fireable from state A".

var alertEvents = fsm.Events{
	{Name: string(AlertAcknowledged), Src: []string{string(AlertTriggered)}, Dst: string(AlertAcknowledged)},
	{Name: string(AlertResolved), Src: []string{string(AlertTriggered), string(AlertAcknowledged)}, Dst: string(AlertResolved)},
	{Name: string(AlertSuppressed), Src: []string{string(AlertTriggered), string(AlertAcknowledged)}, Dst: string(AlertSuppressed)},
}

var otaEvents = fsm.Events{
	{Name: string(OtaDownloading), Src: []string{string(OtaPending)}, Dst: string(OtaDownloading)},
	{Name: string(OtaVerifying), Src: []string{string(OtaDownloading)}, Dst: string(OtaVerifying)},
	{Name: string(OtaApplying), Src: []string{string(OtaVerifying)}, Dst: string(OtaApplying)},
	{Name: string(OtaSuccess), Src: []string{string(OtaApplying)}, Dst: string(OtaSuccess)},
	{Name: string(OtaFailed), Src: []string{string(OtaDownloading), string(OtaVerifying), string(OtaApplying)}, Dst: string(OtaFailed)},
	{Name: string(OtaRollback), Src: []string{string(OtaApplying), string(OtaFailed)}, Dst: string(OtaRollback)},
}

var commandEvents = fsm.Events{
	{Name: string(CmdExecuting), Src: []string{string(CmdPending)}, Dst: string(CmdExecuting)},
	{Name: string(CmdSuccess), Src: []string{string(CmdExecuting)}, Dst: string(CmdSuccess)},
	{Name: string(CmdFailed), Src: []string{string(CmdExecuting)}, Dst: string(CmdFailed)},
	{Name: string(CmdTimeout), Src: []string{string(CmdPending), string(CmdExecuting)}, Dst: string(CmdTimeout)},
	{Name: string(CmdCancelled), Src: []string{string(CmdPending), string(CmdExecuting)}, Dst: string(CmdCancelled)},
}

func canTransition(events fsm.Events, from, to string) bool {
	if from == to {
		return false
	}
	m := fsm.NewFSM(from, events, fsm.Callbacks{})
	return m.Can(to)
}

func transition(events fsm.Events, from, to string) error {
	m := fsm.NewFSM(from, events, fsm.Callbacks{})
	if err := m.Event(context.Background(), to); err != nil {
		return fmt.Errorf("invalid transition %s -> %s: %w", from, to, err)
	}
	return nil
}

// CanTransitionAlert reports whether an alert may move from one status to
// another along the declared graph.
func CanTransitionAlert(from, to AlertStatus) bool {
	return canTransition(alertEvents, string(from), string(to))
}

// TransitionAlert validates an alert status change, returning an error for
// any move the graph does not allow (including regressions and self-moves).
func TransitionAlert(from, to AlertStatus) error {
	return transition(alertEvents, string(from), string(to))
}

// CanTransitionOta reports whether an OTA update may move between statuses.
func CanTransitionOta(from, to OtaStatus) bool {
	return canTransition(otaEvents, string(from), string(to))
}

// TransitionOta validates an OTA status change.
func TransitionOta(from, to OtaStatus) error {
	return transition(otaEvents, string(from), string(to))
}

// CanTransitionCommand reports whether a remote command may move between
// statuses.
func CanTransitionCommand(from, to CommandStatus) bool {
	return canTransition(commandEvents, string(from), string(to))
}

// TransitionCommand validates a remote-command status change.
func TransitionCommand(from, to CommandStatus) error {
	return transition(commandEvents, string(from), string(to))
}

// TerminalOta reports whether a status has no outgoing transitions.
func TerminalOta(s OtaStatus) bool {
	return s == OtaSuccess || s == OtaRollback
}

// TerminalCommand reports whether a status has no outgoing transitions.
func TerminalCommand(s CommandStatus) bool {
	switch s {
	case CmdSuccess, CmdFailed, CmdTimeout, CmdCancelled:
		return true
	}
	return false
}

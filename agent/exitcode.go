package agent

// Process exit codes, per the Lifecycle state machine. The only place that
// calls os.Exit is the cmd/ bootstrap binary; Lifecycle.Run returns one of
// these instead, so the state machine itself stays testable.
const (
	// ExitClean is returned after a clean drain: bounded-run completion or
	// a stop signal observed at a cycle boundary.
	ExitClean = 0

	// ExitTransportFailure is returned when a cycle fails transport-
	// terminally (the retried control-plane call still fails).
	ExitTransportFailure = 1

	// ExitInitializationFailure is returned when setup fails before the
	// loop ever starts (missing configuration, unresolvable stop signal).
	ExitInitializationFailure = 2
)

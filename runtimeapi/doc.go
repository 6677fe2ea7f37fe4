// Package runtimeapi implements the HTTP control-plane client: the three
// operations (next, respond, reportError) a cloud function container's
// runtime API exposes to the in-process agent, plus the init-error report
// issued when startup fails before any invocation.
//
// One *http.Client with MaxIdleConnsPerHost: 1 maintains a single reused
// keep-alive connection to the control plane; on any transport failure the
// idle connection is discarded so the next call dials fresh.
package runtimeapi

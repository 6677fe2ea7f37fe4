// Package async supplies the Future[T] oneshot primitive and the bounded
// Pool worker pool that together let a Safe handler trampoline user code
// onto the offload tier while the networking scheduler awaits completion
// without ever blocking a thread on user code.
package async

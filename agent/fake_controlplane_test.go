package agent

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/fnruntime/runtimeapi"
)

// envelopeFixture describes one envelope the fake control plane serves.
type envelopeFixture struct {
	requestID string
	body      string
	deadline  time.Time
}

type respondRecord struct {
	requestID string
	body      []byte
}

type errorRecord struct {
	requestID string
	body      runtimeapi.ErrorBody
}

// fakeControlPlane stands in for the cloud provider's runtime API, modeled
// on the queue package's httptest.Server-backed worker tests.
type fakeControlPlane struct {
	mu         sync.Mutex
	envelopes  []envelopeFixture
	idx        int
	nextStatus int // non-zero forces every /next call to fail with this status
	nextCalls  atomic.Int32

	responds     []respondRecord
	reportErrors []errorRecord

	// onRespond is called synchronously after recording a respond, useful
	// for triggering a signal mid-test without a race.
	onRespond func()

	server *httptest.Server
}

func newFakeControlPlane() *fakeControlPlane {
	f := &fakeControlPlane{}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeControlPlane) endpoint() string {
	return strings.TrimPrefix(f.server.URL, "http://")
}

func (f *fakeControlPlane) close() { f.server.Close() }

func (f *fakeControlPlane) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/runtime/invocation/next"):
		f.handleNext(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/response"):
		f.handleRespond(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/error"):
		f.handleError(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeControlPlane) handleNext(w http.ResponseWriter, r *http.Request) {
	f.nextCalls.Add(1)

	f.mu.Lock()
	status := f.nextStatus
	f.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	f.mu.Lock()
	if f.idx >= len(f.envelopes) {
		f.mu.Unlock()
		// No more fixtures: block until the client gives up (context
		// cancellation), simulating the long-poll holding the connection.
		<-r.Context().Done()
		return
	}
	env := f.envelopes[f.idx]
	f.idx++
	f.mu.Unlock()

	w.Header().Set("Lambda-Runtime-Aws-Request-Id", env.requestID)
	if !env.deadline.IsZero() {
		w.Header().Set("Lambda-Runtime-Deadline-Ms", strconv.FormatInt(env.deadline.UnixMilli(), 10))
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(env.body))
}

func (f *fakeControlPlane) handleRespond(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromPath(r.URL.Path, "response")
	body := readAll(r)

	f.mu.Lock()
	f.responds = append(f.responds, respondRecord{requestID: requestID, body: body})
	cb := f.onRespond
	f.mu.Unlock()

	w.WriteHeader(http.StatusAccepted)
	if cb != nil {
		cb()
	}
}

func (f *fakeControlPlane) handleError(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromPath(r.URL.Path, "error")
	var body runtimeapi.ErrorBody
	_ = json.Unmarshal(readAll(r), &body)

	f.mu.Lock()
	f.reportErrors = append(f.reportErrors, errorRecord{requestID: requestID, body: body})
	f.mu.Unlock()

	w.WriteHeader(http.StatusAccepted)
}

func requestIDFromPath(path, suffix string) string {
	path = strings.TrimSuffix(path, "/"+suffix)
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

func readAll(r *http.Request) []byte {
	defer r.Body.Close()
	body, _ := io.ReadAll(r.Body)
	return body
}

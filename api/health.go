package api

import "net/http"

// healthz reports liveness. No dependencies are probed: a process that can
// answer is alive, and storage failures surface per-request as 5xx.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/attention/internal/runner"
)

// EventSource is the part of the run manager the stream needs.
type EventSource interface {
	Events(id string) (<-chan runner.Event, bool)
}

// StreamRunEvents relays a run's progress events as server-sent events until
// the run finishes or the client goes away.
//
// A run has a single event channel, so it supports one subscriber. Concurrent
// streams for the same run split the events between them.
func StreamRunEvents(source EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		events, ok := source.Events(id)
		if !ok {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}

				data, _ := json.Marshal(ev)
				w.Write([]byte("data: "))
				w.Write(data)
				w.Write([]byte("\n\n"))

				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}

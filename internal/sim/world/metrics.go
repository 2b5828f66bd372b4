package world

import "time"

type WorldMetrics struct {
	Tick         uint64      `json:"tick"`
	Sessions     int         `json:"sessions"`
	Snapshots    int         `json:"snapshots"`
	StoredChunks int         `json:"stored_chunks"`
	Structures   int         `json:"structures"`
	Tokens       int         `json:"tokens"`
	LoadedChunks int         `json:"loaded_chunks"`
	QueueDepths  QueueDepths `json:"queue_depths"`
	StepMS       float64     `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// Metrics returns the figures published at the end of the last tick. Safe from any goroutine.
func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	m, _ := w.metrics.Load().(WorldMetrics)
	return m
}

func (w *World) storeMetrics(nextTick uint64, took time.Duration) {
	st := w.snaps.Stats()
	loaded := 0
	for _, cs := range w.dims {
		loaded += len(cs.Chunks)
	}
	w.metrics.Store(WorldMetrics{
		Tick:         nextTick,
		Sessions:     len(w.sessions),
		Snapshots:    st.Snapshots,
		StoredChunks: st.Chunks,
		Structures:   w.prim.Len(),
		Tokens:       w.tokens.Live(),
		LoadedChunks: loaded,
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: float64(took.Microseconds()) / 1000.0,
	})
}

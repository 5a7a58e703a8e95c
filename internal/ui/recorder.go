package ui

import "sync"

// Notice is one message shown through a Recorder.
type Notice struct {
	Kind string // "success", "error" or "prompt"
	Msg  string
}

// Recorder is a Notifier that keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) add(kind, msg string) {
	r.mu.Lock()
	r.notices = append(r.notices, Notice{Kind: kind, Msg: msg})
	r.mu.Unlock()
}

func (r *Recorder) Success(msg string) { r.add("success", msg) }
func (r *Recorder) Error(msg string)   { r.add("error", msg) }
func (r *Recorder) Prompt(msg string)  { r.add("prompt", msg) }

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Kinds returns only the notices of one kind.
func (r *Recorder) Kinds(kind string) []string {
	var out []string
	for _, n := range r.Notices() {
		if n.Kind == kind {
			out = append(out, n.Msg)
		}
	}
	return out
}

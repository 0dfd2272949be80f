package pull

import (
	"sync"
	"time"

	"quill/internal/editor"
)

// documentScheduler coalesces rapid edits on individual documents: each
// qualifying edit adds the document to the pending set and pushes the
// deadline out again. On expiry every collected document gets a non-sweep
// pull.
type documentScheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending map[editor.DocumentID]struct{}
	flush   func([]editor.DocumentID)
}

func newDocumentScheduler(delay time.Duration, flush func([]editor.DocumentID)) *documentScheduler {
	return &documentScheduler{
		delay:   delay,
		pending: make(map[editor.DocumentID]struct{}),
		flush:   flush,
	}
}

func (s *documentScheduler) enqueue(id editor.DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = struct{}{}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *documentScheduler) fire() {
	s.mu.Lock()
	ids := make([]editor.DocumentID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.pending = make(map[editor.DocumentID]struct{})
	s.timer = nil
	s.mu.Unlock()

	if len(ids) > 0 {
		s.flush(ids)
	}
}

// sweepScheduler coalesces the global sweep: any qualifying event re-arms
// the deadline, no payload is accumulated. On expiry every open document
// gets a sweep-mode pull.
type sweepScheduler struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	flush func()
}

func newSweepScheduler(delay time.Duration, flush func()) *sweepScheduler {
	return &sweepScheduler{delay: delay, flush: flush}
}

func (s *sweepScheduler) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *sweepScheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	s.mu.Unlock()

	s.flush()
}

func (e *Engine) flushDocuments(ids []editor.DocumentID) {
	e.jobs.Dispatch(func(ed *editor.Editor) {
		for _, id := range ids {
			e.RequestDocumentDiagnostics(ed, id, false)
		}
	})
}

func (e *Engine) flushSweep() {
	e.jobs.Dispatch(func(ed *editor.Editor) {
		for _, doc := range ed.Documents() {
			e.RequestDocumentDiagnostics(ed, doc.ID(), true)
		}
	})
}

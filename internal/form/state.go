package form

import (
	"context"
	"errors"
	"sync"

	"github.com/jcaMx/company-extractor-web/internal/client"
	"github.com/jcaMx/company-extractor-web/internal/model"
)

// ErrEmptyURL is returned when Submit is called without a URL. Nothing is
// dispatched and the state is left untouched.
var ErrEmptyURL = errors.New("url is required")

// Snapshot is a copy of the form state at one instant.
type Snapshot struct {
	URL     string
	Result  *model.ExtractionResult
	Loading bool
	Error   *string
}

// HasError reports whether an error message is set.
func (s Snapshot) HasError() bool { return s.Error != nil }

// ErrorText returns the error message or "".
func (s Snapshot) ErrorText() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// State is one form session. Concurrent submissions are allowed and are not
// cancelled; whichever settles last determines result, error and loading.
type State struct {
	mu      sync.Mutex
	url     string
	result  *model.ExtractionResult
	loading bool
	err     *string

	// OnChange, if set, is called with a snapshot after every transition.
	OnChange func(Snapshot)
}

// New returns an empty state.
func New() *State { return &State{} }

// SetURL records the field value.
func (s *State) SetURL(url string) {
	s.mu.Lock()
	s.url = url
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{URL: s.url, Result: s.result, Loading: s.loading}
	if s.err != nil {
		msg := *s.err
		snap.Error = &msg
	}
	return snap
}

func (s *State) notify(snap Snapshot) {
	if s.OnChange != nil {
		s.OnChange(snap)
	}
}

func (s *State) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Submit dispatches the current URL and walks the state through
// start, success or failure, then finally. It returns the settled snapshot.
func (s *State) Submit(ctx context.Context, d client.Dispatcher) (Snapshot, error) {
	s.mu.Lock()
	url := s.url
	s.mu.Unlock()
	if url == "" {
		return s.Snapshot(), ErrEmptyURL
	}

	s.update(func() {
		s.loading = true
		s.err = nil
	})

	res, err := d.Extract(ctx, url)

	s.update(func() {
		if err != nil {
			msg := client.MessageOf(err)
			s.err = &msg
		} else {
			s.result = res
			s.err = nil
		}
		s.loading = false
	})
	return s.Snapshot(), err
}

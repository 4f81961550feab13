package form

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcaMx/company-extractor-web/internal/client"
	"github.com/jcaMx/company-extractor-web/internal/model"
)

type blockingDispatcher struct {
	mu      sync.Mutex
	urls    []string
	started chan struct{}
	release chan struct{}
	result  *model.ExtractionResult
	err     error
}

func newBlocking(res *model.ExtractionResult, err error) *blockingDispatcher {
	return &blockingDispatcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  res,
		err:     err,
	}
}

func (d *blockingDispatcher) Extract(ctx context.Context, url string) (*model.ExtractionResult, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	d.mu.Unlock()
	d.started <- struct{}{}
	<-d.release
	return d.result, d.err
}

func acme() *model.ExtractionResult {
	res := &model.ExtractionResult{Company: "Acme"}
	res.Summaries.Set("about", model.Section{Summary: "Anvils.", URL: "https://acme.com/about"})
	return res
}

func TestSubmit_LoadingOnlyWhileInFlight(t *testing.T) {
	for name, d := range map[string]*blockingDispatcher{
		"success": newBlocking(acme(), nil),
		"failure": newBlocking(nil, &client.Error{Message: "bad input"}),
	} {
		t.Run(name, func(t *testing.T) {
			s := New()
			s.SetURL("https://acme.com")
			assert.False(t, s.Snapshot().Loading)

			done := make(chan Snapshot)
			go func() {
				snap, _ := s.Submit(context.Background(), d)
				done <- snap
			}()
			<-d.started
			assert.True(t, s.Snapshot().Loading)
			close(d.release)
			settled := <-done
			assert.False(t, settled.Loading)
			assert.False(t, s.Snapshot().Loading)
			assert.Equal(t, []string{"https://acme.com"}, d.urls)
		})
	}
}

func TestSubmit_SuccessSetsResult(t *testing.T) {
	d := newBlocking(acme(), nil)
	close(d.release)
	s := New()
	s.SetURL("https://acme.com")
	snap, err := s.Submit(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, snap.Result)
	assert.Same(t, d.result, snap.Result)
	assert.False(t, snap.HasError())
}

func TestSubmit_FailureKeepsPreviousResult(t *testing.T) {
	s := New()
	s.SetURL("https://acme.com")
	ok := newBlocking(acme(), nil)
	close(ok.release)
	_, err := s.Submit(context.Background(), ok)
	require.NoError(t, err)

	bad := newBlocking(nil, &client.Error{Message: "bad input"})
	close(bad.release)
	snap, err := s.Submit(context.Background(), bad)
	require.Error(t, err)
	assert.Equal(t, "bad input", snap.ErrorText())
	require.NotNil(t, snap.Result)
	assert.Equal(t, "Acme", snap.Result.Company)
}

func TestSubmit_UnstructuredErrorUsesFallback(t *testing.T) {
	d := newBlocking(nil, context.DeadlineExceeded)
	close(d.release)
	s := New()
	s.SetURL("https://acme.com")
	snap, _ := s.Submit(context.Background(), d)
	assert.Equal(t, client.FallbackMessage, snap.ErrorText())
}

func TestSubmit_NextSubmitClearsError(t *testing.T) {
	s := New()
	s.SetURL("https://acme.com")
	bad := newBlocking(nil, &client.Error{Message: "bad input"})
	close(bad.release)
	_, _ = s.Submit(context.Background(), bad)

	var seen []Snapshot
	s.OnChange = func(snap Snapshot) { seen = append(seen, snap) }
	ok := newBlocking(acme(), nil)
	close(ok.release)
	_, err := s.Submit(context.Background(), ok)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[0].HasError())
	assert.False(t, seen[1].Loading)
}

func TestSubmit_EmptyURLDispatchesNothing(t *testing.T) {
	d := newBlocking(acme(), nil)
	s := New()
	_, err := s.Submit(context.Background(), d)
	assert.ErrorIs(t, err, ErrEmptyURL)
	assert.Empty(t, d.urls)
	assert.False(t, s.Snapshot().Loading)
}

func TestSubmit_WhitespaceURLIsDispatched(t *testing.T) {
	d := newBlocking(acme(), nil)
	close(d.release)
	s := New()
	s.SetURL("   ")
	_, err := s.Submit(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"   "}, d.urls)
}

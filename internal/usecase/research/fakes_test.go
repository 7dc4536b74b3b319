package research

import (
	"context"
	"errors"
	"sync"
	"time"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
)

var errNotUsed = errors.New("not used by research")

type fakeBrowser struct {
	mu sync.Mutex

	tab       entity.TabID
	createErr error
	reads     []entity.Result
	readErrs  []error
	closeErr  error

	created    []string
	createdBg  []bool
	readCalls  int
	closed     []entity.TabID
	closeCtxOK []bool
}

func (b *fakeBrowser) CreateTab(_ context.Context, url string, active bool) (entity.TabID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, url)
	b.createdBg = append(b.createdBg, !active)
	if b.createErr != nil {
		return "", b.createErr
	}
	return b.tab, nil
}

func (b *fakeBrowser) ReadPage(_ context.Context, tab *entity.TabID) (entity.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.readCalls
	b.readCalls++
	if i < len(b.readErrs) && b.readErrs[i] != nil {
		return entity.FailureResult(b.readErrs[i].Error()), b.readErrs[i]
	}
	if len(b.reads) == 0 {
		return entity.TimeoutResult(), nil
	}
	if i >= len(b.reads) {
		i = len(b.reads) - 1
	}
	return b.reads[i], nil
}

func (b *fakeBrowser) CloseTab(ctx context.Context, tab entity.TabID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, tab)
	b.closeCtxOK = append(b.closeCtxOK, ctx.Err() == nil)
	return b.closeErr
}

func (b *fakeBrowser) Navigate(context.Context, string, *entity.TabID) (entity.Result, error) {
	return entity.Result{}, errNotUsed
}

func (b *fakeBrowser) MuteTab(context.Context, entity.TabID, bool) error {
	return errNotUsed
}

func (b *fakeBrowser) Click(context.Context, entity.Selector, *entity.TabID) (entity.Result, error) {
	return entity.Result{}, errNotUsed
}

func (b *fakeBrowser) Type(context.Context, entity.Selector, string, *entity.TabID) (entity.Result, error) {
	return entity.Result{}, errNotUsed
}

func (b *fakeBrowser) PressKey(context.Context, entity.Selector, string, *entity.TabID) (entity.Result, error) {
	return entity.Result{}, errNotUsed
}

func (b *fakeBrowser) Scroll(context.Context, string, *entity.TabID) (entity.Result, error) {
	return entity.Result{}, errNotUsed
}

func (b *fakeBrowser) ScanPage(context.Context, *entity.TabID) (entity.Result, error) {
	return entity.Result{}, errNotUsed
}

type fakeFetcher struct {
	page *entity.FetchedPage
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*entity.FetchedPage, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type fakeLLM struct {
	answer string
	err    error
	reqs   []output.ChatRequest
}

func (l *fakeLLM) Chat(_ context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	l.reqs = append(l.reqs, req)
	if l.err != nil {
		return nil, l.err
	}
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: l.answer}}, nil
}

func (l *fakeLLM) userPrompt() string {
	if len(l.reqs) == 0 {
		return ""
	}
	msgs := l.reqs[len(l.reqs)-1].Messages
	return msgs[len(msgs)-1].Content
}

type fakeProbe struct {
	running bool
	asked   []string
}

func (p *fakeProbe) IsRunning(_ context.Context, name string) bool {
	p.asked = append(p.asked, name)
	return p.running
}

type recordingMetrics struct {
	mu        sync.Mutex
	attempts  []string
	completed []string
}

func (m *recordingMetrics) CommandSent(context.Context, string, string) {}

func (m *recordingMetrics) ReplyWait(context.Context, string, time.Duration, bool) {}

func (m *recordingMetrics) ResearchAttempt(_ context.Context, strategy, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, strategy+"/"+outcome)
}

func (m *recordingMetrics) ResearchCompleted(_ context.Context, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, outcome)
}

package handler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autofilter-be/internal/config"
	"autofilter-be/internal/dto"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

type recordingTransport struct {
	mu      sync.Mutex
	Sent    []string
	Answers []string
}

func (t *recordingTransport) SendMessage(ctx context.Context, chatID int64, text string, buttons [][]transport.Button) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent = append(t.Sent, text)
	return 1, nil
}

func (t *recordingTransport) EditMessage(ctx context.Context, chatID, messageID int64, text string, buttons [][]transport.Button) error {
	return nil
}

func (t *recordingTransport) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return nil
}

func (t *recordingTransport) SendFile(ctx context.Context, chatID int64, fileRef, caption string) error {
	return nil
}

func (t *recordingTransport) AnswerCallback(ctx context.Context, callbackID, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Answers = append(t.Answers, text)
	return nil
}

type fakeSearchService struct {
	mu         sync.Mutex
	started    []string
	callbacks  []dto.CallbackAction
	active     atomic.Int32
	maxActive  atomic.Int32
	startDelay time.Duration
}

func (s *fakeSearchService) StartSearch(ctx context.Context, msg *dto.IncomingMessage) error {
	cur := s.active.Add(1)
	for {
		old := s.maxActive.Load()
		if cur <= old || s.maxActive.CompareAndSwap(old, cur) {
			break
		}
	}
	if s.startDelay > 0 {
		time.Sleep(s.startDelay)
	}
	s.mu.Lock()
	s.started = append(s.started, msg.Text)
	s.mu.Unlock()
	s.active.Add(-1)
	return nil
}

func (s *fakeSearchService) HandleCallback(ctx context.Context, cb *dto.IncomingCallback, action dto.CallbackAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, action)
	return nil
}

type fakeDownloadService struct {
	mu        sync.Mutex
	downloads []string
	balances  []int64
}

func (s *fakeDownloadService) HandleDownload(ctx context.Context, cb *dto.IncomingCallback, fileRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads = append(s.downloads, fileRef)
	return nil
}

func (s *fakeDownloadService) Balance(ctx context.Context, msg *dto.IncomingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = append(s.balances, msg.UserID)
	return nil
}

type fakeVerificationService struct {
	mu     sync.Mutex
	issued []int64
}

func (s *fakeVerificationService) Issue(ctx context.Context, msg *dto.IncomingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = append(s.issued, msg.UserID)
	return nil
}

func (s *fakeVerificationService) Redeem(ctx context.Context, token string) (int64, error) {
	return 0, nil
}

type fakeStatsService struct {
	statsCalls atomic.Int32
	broadcasts []string
	mu         sync.Mutex
}

func (s *fakeStatsService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	s.statsCalls.Add(1)
	return &dto.StatsResponse{TotalFiles: 3, TotalUsers: 2}, nil
}

func (s *fakeStatsService) Broadcast(ctx context.Context, text string) (*dto.BroadcastResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, text)
	return &dto.BroadcastResult{Sent: 2}, nil
}

type fakeIndexService struct {
	mu       sync.Mutex
	enqueued []*dto.ChannelFile
	admin    []bool
}

func (s *fakeIndexService) Enqueue(ctx context.Context, file *dto.ChannelFile, adminForward bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, file)
	s.admin = append(s.admin, adminForward)
	return nil
}

func (s *fakeIndexService) Consume(ctx context.Context) error { return nil }

type handlerFixture struct {
	handler      *UpdateHandler
	search       *fakeSearchService
	download     *fakeDownloadService
	verification *fakeVerificationService
	stats        *fakeStatsService
	index        *fakeIndexService
	bot          *recordingTransport
}

func newHandlerFixture() *handlerFixture {
	cfg := &config.Config{}
	cfg.Bot.AdminIDs = []int64{99}
	cfg.Bot.IndexChannelID = -100
	cfg.Bot.MinQueryLength = 3

	f := &handlerFixture{
		search:       &fakeSearchService{},
		download:     &fakeDownloadService{},
		verification: &fakeVerificationService{},
		stats:        &fakeStatsService{},
		index:        &fakeIndexService{},
		bot:          &recordingTransport{},
	}
	f.handler = NewUpdateHandler(
		cfg,
		unitofwork.NewRepositoryFactory(nil),
		f.search,
		f.download,
		f.verification,
		f.stats,
		f.index,
		f.bot,
		nopLogger{},
	)
	return f
}

func TestCommandRouting(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 1, ChatID: 1, Text: "/balance"}})
	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 1, ChatID: 1, Text: "/verify"}})

	assert.Equal(t, []int64{1}, f.download.balances)
	assert.Equal(t, []int64{1}, f.verification.issued)
	assert.Empty(t, f.search.started)
}

func TestHelpCommand(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 1, ChatID: 1, Text: "/help"}})
	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 99, ChatID: 99, Text: "/help"}})

	require.Len(t, f.bot.Sent, 2)
	assert.Contains(t, f.bot.Sent[0], "/verify")
	assert.NotContains(t, f.bot.Sent[0], "/broadcast")
	assert.Contains(t, f.bot.Sent[1], "/broadcast")
	assert.Contains(t, f.bot.Sent[1], "/stats")
}

func TestAdminCommandsRejectNonAdmins(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 1, ChatID: 1, Text: "/stats"}})
	assert.Zero(t, f.stats.statsCalls.Load())

	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 99, ChatID: 99, Text: "/stats"}})
	assert.Equal(t, int32(1), f.stats.statsCalls.Load())
}

func TestBroadcastCommand(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	f.handler.Handle(ctx, &dto.Update{Message: &dto.IncomingMessage{UserID: 99, ChatID: 99, Text: "/broadcast hello everyone"}})

	require.Len(t, f.stats.broadcasts, 1)
	assert.Equal(t, "hello everyone", f.stats.broadcasts[0])
}

func TestPlainTextGoesToSearch(t *testing.T) {
	f := newHandlerFixture()

	f.handler.Handle(context.Background(), &dto.Update{Message: &dto.IncomingMessage{UserID: 1, ChatID: 1, Text: "naruto"}})

	assert.Equal(t, []string{"naruto"}, f.search.started)
}

func TestCallbackRouting(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	f.handler.Handle(ctx, &dto.Update{Callback: &dto.IncomingCallback{UserID: 1, Data: "dl_ref-1"}})
	f.handler.Handle(ctx, &dto.Update{Callback: &dto.IncomingCallback{UserID: 1, Data: "pg_next"}})
	f.handler.Handle(ctx, &dto.Update{Callback: &dto.IncomingCallback{UserID: 1, Data: "garbage"}})

	assert.Equal(t, []string{"ref-1"}, f.download.downloads)
	require.Len(t, f.search.callbacks, 1)
	assert.Equal(t, dto.ActionPageNext, f.search.callbacks[0].Kind)
	require.Len(t, f.bot.Answers, 1)
	assert.Contains(t, f.bot.Answers[0], "no longer valid")
}

func TestChannelFileRouting(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	// Post in the configured index channel
	f.handler.Handle(ctx, &dto.Update{ChannelFile: &dto.ChannelFile{ChannelID: -100, FileRef: "ref-1"}})
	// Post in some other channel
	f.handler.Handle(ctx, &dto.Update{ChannelFile: &dto.ChannelFile{ChannelID: -200, FileRef: "ref-2"}})
	// Forwarded by a non-admin
	f.handler.Handle(ctx, &dto.Update{ChannelFile: &dto.ChannelFile{ChannelID: 1, FileRef: "ref-3", ForwardedBy: 1}})
	// Forwarded by an admin
	f.handler.Handle(ctx, &dto.Update{ChannelFile: &dto.ChannelFile{ChannelID: 99, FileRef: "ref-4", ForwardedBy: 99}})

	require.Len(t, f.index.enqueued, 2)
	assert.Equal(t, "ref-1", f.index.enqueued[0].FileRef)
	assert.False(t, f.index.admin[0])
	assert.Equal(t, "ref-4", f.index.enqueued[1].FileRef)
	assert.True(t, f.index.admin[1])
}

func TestPerUserEventsAreSerialized(t *testing.T) {
	f := newHandlerFixture()
	f.search.startDelay = 5 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.handler.Handle(context.Background(), &dto.Update{
				Message: &dto.IncomingMessage{UserID: 1, ChatID: 1, Text: "naruto"},
			})
		}()
	}
	wg.Wait()

	assert.Len(t, f.search.started, 10)
	assert.Equal(t, int32(1), f.search.maxActive.Load(),
		"events for one user must never run concurrently")
}

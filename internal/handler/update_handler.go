package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"autofilter-be/internal/config"
	"autofilter-be/internal/dto"
	"autofilter-be/internal/entity"
	"autofilter-be/internal/pkg/logger"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/service"
	"autofilter-be/internal/transport"
)

// UpdateHandler decodes transport updates and dispatches them to the
// services. All of one user's events run under that user's mutex, so
// rapid clicks apply in arrival order while different users proceed
// concurrently.
type UpdateHandler struct {
	cfg                 *config.Config
	uowFactory          unitofwork.RepositoryFactory
	searchService       service.ISearchService
	downloadService     service.IDownloadService
	verificationService service.IVerificationService
	statsService        service.IStatsService
	indexService        service.IIndexService
	bot                 transport.Transport
	logger              logger.ILogger

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewUpdateHandler(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	searchService service.ISearchService,
	downloadService service.IDownloadService,
	verificationService service.IVerificationService,
	statsService service.IStatsService,
	indexService service.IIndexService,
	bot transport.Transport,
	log logger.ILogger,
) *UpdateHandler {
	return &UpdateHandler{
		cfg:                 cfg,
		uowFactory:          uowFactory,
		searchService:       searchService,
		downloadService:     downloadService,
		verificationService: verificationService,
		statsService:        statsService,
		indexService:        indexService,
		bot:                 bot,
		logger:              log,
		userLocks:           make(map[int64]*sync.Mutex),
	}
}

func (h *UpdateHandler) lockFor(userID int64) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		h.userLocks[userID] = lock
	}
	return lock
}

// Handle processes one inbound update. Errors are logged, never
// propagated back to the transport.
func (h *UpdateHandler) Handle(ctx context.Context, update *dto.Update) {
	switch {
	case update.ChannelFile != nil:
		h.handleChannelFile(ctx, update.ChannelFile)
	case update.Message != nil:
		lock := h.lockFor(update.Message.UserID)
		lock.Lock()
		defer lock.Unlock()
		h.handleMessage(ctx, update.Message)
	case update.Callback != nil:
		lock := h.lockFor(update.Callback.UserID)
		lock.Lock()
		defer lock.Unlock()
		h.handleCallback(ctx, update.Callback)
	}
}

func (h *UpdateHandler) handleChannelFile(ctx context.Context, file *dto.ChannelFile) {
	if file.ForwardedBy != 0 {
		// Manual index path: only admins may forward files for ingestion
		if !h.cfg.IsAdmin(file.ForwardedBy) {
			return
		}
		if err := h.indexService.Enqueue(ctx, file, true); err != nil {
			h.logger.Error("update_handler", "failed to enqueue forwarded file", map[string]interface{}{
				"file_ref": file.FileRef,
				"error":    err.Error(),
			})
		}
		return
	}

	if file.ChannelID != h.cfg.Bot.IndexChannelID {
		return
	}
	if err := h.indexService.Enqueue(ctx, file, false); err != nil {
		h.logger.Error("update_handler", "failed to enqueue channel file", map[string]interface{}{
			"file_ref": file.FileRef,
			"error":    err.Error(),
		})
	}
}

func (h *UpdateHandler) handleMessage(ctx context.Context, msg *dto.IncomingMessage) {
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, msg, text)
		return
	}

	if err := h.searchService.StartSearch(ctx, msg); err != nil {
		h.logger.Error("update_handler", "search failed", map[string]interface{}{
			"user_id": msg.UserID,
			"error":   err.Error(),
		})
		h.apologize(ctx, msg.ChatID)
	}
}

func (h *UpdateHandler) handleCommand(ctx context.Context, msg *dto.IncomingMessage, text string) {
	command, args, _ := strings.Cut(text, " ")

	var err error
	switch command {
	case "/start":
		err = h.welcome(ctx, msg)
	case "/help":
		err = h.help(ctx, msg)
	case "/balance":
		err = h.downloadService.Balance(ctx, msg)
	case "/verify":
		err = h.verificationService.Issue(ctx, msg)
	case "/stats":
		if !h.cfg.IsAdmin(msg.UserID) {
			return
		}
		err = h.sendStats(ctx, msg.ChatID)
	case "/broadcast":
		if !h.cfg.IsAdmin(msg.UserID) {
			return
		}
		err = h.broadcast(ctx, msg.ChatID, strings.TrimSpace(args))
	default:
		// Unknown commands are ignored, same as sub-minimum queries
	}

	if err != nil {
		h.logger.Error("update_handler", "command failed", map[string]interface{}{
			"user_id": msg.UserID,
			"command": command,
			"error":   err.Error(),
		})
		h.apologize(ctx, msg.ChatID)
	}
}

func (h *UpdateHandler) handleCallback(ctx context.Context, cb *dto.IncomingCallback) {
	action := dto.ParseCallback(cb.Data)

	var err error
	switch action.Kind {
	case dto.ActionDownload:
		err = h.downloadService.HandleDownload(ctx, cb, action.FileRef)
	case dto.ActionUnknown:
		err = h.bot.AnswerCallback(ctx, cb.CallbackID, "This button is no longer valid.")
	default:
		err = h.searchService.HandleCallback(ctx, cb, action)
	}

	if err != nil {
		h.logger.Error("update_handler", "callback failed", map[string]interface{}{
			"user_id": cb.UserID,
			"data":    cb.Data,
			"error":   err.Error(),
		})
		if aerr := h.bot.AnswerCallback(ctx, cb.CallbackID, "Something went wrong. Please try again."); aerr != nil {
			h.logger.Warn("update_handler", "failed to answer callback", map[string]interface{}{
				"error": aerr.Error(),
			})
		}
	}
}

func (h *UpdateHandler) welcome(ctx context.Context, msg *dto.IncomingMessage) error {
	uow := h.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().EnsureExists(ctx, &entity.UserAccount{
		UserId:    msg.UserID,
		Username:  msg.Username,
		FirstName: msg.FirstName,
		JoinedAt:  time.Now(),
	}); err != nil {
		return err
	}

	text := "Hi! Send me a title (3+ characters) and I'll search the catalog for you.\n" +
		"/balance shows your tokens, /verify earns more. /help lists everything."
	_, err := h.bot.SendMessage(ctx, msg.ChatID, text, nil)
	return err
}

func (h *UpdateHandler) help(ctx context.Context, msg *dto.IncomingMessage) error {
	var sb strings.Builder
	sb.WriteString("Send a title (3+ characters) to search the catalog.\n\n")
	sb.WriteString("/start - register and show the welcome message\n")
	sb.WriteString("/balance - show your token balance\n")
	sb.WriteString("/verify - get a link that earns you tokens\n")
	sb.WriteString("/help - this message")

	if h.cfg.IsAdmin(msg.UserID) {
		sb.WriteString("\n\nAdmin:\n")
		sb.WriteString("/stats - catalog and user totals\n")
		sb.WriteString("/broadcast <text> - message every known user\n")
		sb.WriteString("Forward a media file to the bot to index it.")
	}

	_, err := h.bot.SendMessage(ctx, msg.ChatID, sb.String(), nil)
	return err
}

func (h *UpdateHandler) sendStats(ctx context.Context, chatID int64) error {
	stats, err := h.statsService.Stats(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Catalog: %d files\nUsers: %d", stats.TotalFiles, stats.TotalUsers)
	_, err = h.bot.SendMessage(ctx, chatID, text, nil)
	return err
}

func (h *UpdateHandler) broadcast(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		_, err := h.bot.SendMessage(ctx, chatID, "Usage: /broadcast <message>", nil)
		return err
	}
	result, err := h.statsService.Broadcast(ctx, text)
	if err != nil {
		return err
	}
	summary := fmt.Sprintf("Broadcast done: %d sent, %d failed", result.Sent, result.Failed)
	_, err = h.bot.SendMessage(ctx, chatID, summary, nil)
	return err
}

func (h *UpdateHandler) apologize(ctx context.Context, chatID int64) {
	if _, err := h.bot.SendMessage(ctx, chatID, "Something went wrong. Please try again later.", nil); err != nil {
		h.logger.Warn("update_handler", "failed to send apology", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}

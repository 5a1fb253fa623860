package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autofilter-be/internal/dto"
	"autofilter-be/internal/entity"
	"autofilter-be/internal/pkg/logger"
	"autofilter-be/internal/repository/contract"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/transport"
	"autofilter-be/pkg/events"
	pktNats "autofilter-be/pkg/nats"
)

type IDownloadService interface {
	// HandleDownload runs the debit, deliver, refund-on-failure protocol
	// for one file request.
	HandleDownload(ctx context.Context, cb *dto.IncomingCallback, fileRef string) error

	// Balance replies to the user with their current token balance.
	Balance(ctx context.Context, msg *dto.IncomingMessage) error
}

type downloadService struct {
	uowFactory     unitofwork.RepositoryFactory
	bot            transport.Transport
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	costPerFile    int
	logChannelID   int64
}

func NewDownloadService(
	uowFactory unitofwork.RepositoryFactory,
	bot transport.Transport,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	costPerFile int,
	logChannelID int64,
) IDownloadService {
	return &downloadService{
		uowFactory:     uowFactory,
		bot:            bot,
		eventPublisher: eventPublisher,
		logger:         log,
		costPerFile:    costPerFile,
		logChannelID:   logChannelID,
	}
}

func (s *downloadService) HandleDownload(ctx context.Context, cb *dto.IncomingCallback, fileRef string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()

	file, err := uow.FileRepository().FindByFileRef(ctx, fileRef)
	if err != nil {
		return err
	}
	if file == nil {
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "This file is no longer available.")
	}

	if err := users.EnsureExists(ctx, &entity.UserAccount{
		UserId:   cb.UserID,
		JoinedAt: time.Now(),
	}); err != nil {
		return err
	}

	err = users.Debit(ctx, cb.UserID, s.costPerFile)
	if errors.Is(err, contract.ErrInsufficientTokens) {
		balance := 0
		if account, ferr := users.FindByUserId(ctx, cb.UserID); ferr == nil && account != nil {
			balance = account.Tokens
		}
		return s.bot.AnswerCallback(ctx, cb.CallbackID,
			fmt.Sprintf("Not enough tokens (balance: %d). Use /verify to earn more.", balance))
	}
	if err != nil {
		return err
	}

	if err := s.bot.SendFile(ctx, cb.ChatID, file.FileRef, file.FileName); err != nil {
		// Compensating credit. A crash before this point leaves the debit
		// in place; accepted best-effort behavior, not a rollback.
		if refundErr := users.Credit(ctx, cb.UserID, s.costPerFile); refundErr != nil {
			s.logger.Error("download", "refund failed after delivery error", map[string]interface{}{
				"user_id":  cb.UserID,
				"file_ref": fileRef,
				"error":    refundErr.Error(),
			})
		}
		s.logger.Warn("download", "delivery failed, tokens refunded", map[string]interface{}{
			"user_id":  cb.UserID,
			"file_ref": fileRef,
			"error":    err.Error(),
		})
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "Delivery failed, tokens refunded. Please try again.")
	}

	s.logger.Info("download", "file delivered", map[string]interface{}{
		"user_id":  cb.UserID,
		"file_ref": fileRef,
		"cost":     s.costPerFile,
	})

	if s.logChannelID != 0 {
		text := fmt.Sprintf("#download user %d fetched %s", cb.UserID, file.FileName)
		if _, err := s.bot.SendMessage(ctx, s.logChannelID, text, nil); err != nil {
			s.logger.Warn("download", "failed to notify log channel", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewFileDownloaded(fileRef, cb.UserID, s.costPerFile)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("download", "failed to publish audit event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return s.bot.AnswerCallback(ctx, cb.CallbackID, "")
}

func (s *downloadService) Balance(ctx context.Context, msg *dto.IncomingMessage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()

	if err := users.EnsureExists(ctx, &entity.UserAccount{
		UserId:    msg.UserID,
		Username:  msg.Username,
		FirstName: msg.FirstName,
		JoinedAt:  time.Now(),
	}); err != nil {
		return err
	}

	account, err := users.FindByUserId(ctx, msg.UserID)
	if err != nil {
		return err
	}
	balance := 0
	if account != nil {
		balance = account.Tokens
	}

	text := fmt.Sprintf("You have %d token(s). Each download costs %d. Use /verify to earn more.",
		balance, s.costPerFile)
	_, err = s.bot.SendMessage(ctx, msg.ChatID, text, nil)
	return err
}

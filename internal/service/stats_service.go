package service

import (
	"context"

	"autofilter-be/internal/dto"
	"autofilter-be/internal/pkg/logger"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/transport"
	"autofilter-be/pkg/events"
	pktNats "autofilter-be/pkg/nats"
)

type IStatsService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)

	// Broadcast PMs every known user. Per-user failures are logged and
	// skipped; the result carries both tallies.
	Broadcast(ctx context.Context, text string) (*dto.BroadcastResult, error)
}

type statsService struct {
	uowFactory     unitofwork.RepositoryFactory
	bot            transport.Transport
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewStatsService(
	uowFactory unitofwork.RepositoryFactory,
	bot transport.Transport,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IStatsService {
	return &statsService{
		uowFactory:     uowFactory,
		bot:            bot,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *statsService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	totalFiles, err := uow.FileRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		TotalFiles: totalFiles,
		TotalUsers: totalUsers,
	}, nil
}

func (s *statsService) Broadcast(ctx context.Context, text string) (*dto.BroadcastResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	ids, err := uow.UserRepository().AllUserIds(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.BroadcastResult{}
	for _, id := range ids {
		if _, err := s.bot.SendMessage(ctx, id, text, nil); err != nil {
			s.logger.Warn("broadcast", "failed to reach user", map[string]interface{}{
				"user_id": id,
				"error":   err.Error(),
			})
			result.Failed++
			continue
		}
		result.Sent++
	}

	s.logger.Info("broadcast", "broadcast finished", map[string]interface{}{
		"sent":   result.Sent,
		"failed": result.Failed,
	})

	if s.eventPublisher != nil {
		evt := events.NewBroadcastSent(result.Sent, result.Failed)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("broadcast", "failed to publish audit event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return result, nil
}

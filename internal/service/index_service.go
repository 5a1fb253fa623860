package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"autofilter-be/internal/dto"
	"autofilter-be/internal/entity"
	"autofilter-be/internal/pkg/logger"
	"autofilter-be/internal/repository/contract"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/transport"
	"autofilter-be/pkg/events"
	"autofilter-be/pkg/mediainfo"
	pktNats "autofilter-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IIndexService interface {
	// Enqueue publishes a file event to the ingest topic.
	Enqueue(ctx context.Context, file *dto.ChannelFile, adminForward bool) error

	// Consume starts the ingest worker. It returns after subscribing;
	// processing runs until ctx is done.
	Consume(ctx context.Context) error
}

type indexService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	publisherService IPublisherService
	uowFactory       unitofwork.RepositoryFactory
	bot              transport.Transport
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
	logChannelID     int64
}

func NewIndexService(
	pubSub *gochannel.GoChannel,
	topicName string,
	publisherService IPublisherService,
	uowFactory unitofwork.RepositoryFactory,
	bot transport.Transport,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	logChannelID int64,
) IIndexService {
	return &indexService{
		pubSub:           pubSub,
		topicName:        topicName,
		publisherService: publisherService,
		uowFactory:       uowFactory,
		bot:              bot,
		eventPublisher:   eventPublisher,
		logger:           log,
		logChannelID:     logChannelID,
	}
}

func (s *indexService) Enqueue(ctx context.Context, file *dto.ChannelFile, adminForward bool) error {
	payload := dto.PublishIndexFileMessage{
		ChannelID: file.ChannelID,
		MessageID: file.MessageID,
		FileRef:   file.FileRef,
		FileName:  file.FileName,
		Caption:   file.Caption,
		MimeType:  file.MimeType,
		Size:      file.Size,
	}
	if adminForward {
		payload.AdminForward = true
		payload.AdminChatID = file.ForwardedBy
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func (s *indexService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexFileMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("index_consumer", "failed to unmarshal file event", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed payloads can never succeed; Ack to stop the retry loop
		msg.Ack()
		return
	}

	record := buildFileRecord(&payload)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.FileRepository().Create(ctx, record)
	if errors.Is(err, contract.ErrDuplicateFileRef) {
		s.logger.Info("index_consumer", "file already indexed, skipping", map[string]interface{}{
			"file_ref": payload.FileRef,
		})
		if payload.AdminForward {
			s.reply(ctx, payload.AdminChatID, fmt.Sprintf("Already indexed: %s", payload.FileName))
		}
		msg.Ack()
		return
	}
	if err != nil {
		s.logger.Error("index_consumer", "failed to store file record", map[string]interface{}{
			"file_ref": payload.FileRef,
			"error":    err.Error(),
		})
		// Store errors are assumed transient; Nack for redelivery
		msg.Nack()
		return
	}

	s.logger.Info("index_consumer", "file indexed", map[string]interface{}{
		"file_ref":    record.FileRef,
		"series_name": record.Tags.SeriesName,
	})

	if payload.AdminForward {
		s.reply(ctx, payload.AdminChatID, fmt.Sprintf("Indexed: %s", payload.FileName))
	}

	if s.logChannelID != 0 {
		s.reply(ctx, s.logChannelID, fmt.Sprintf("#indexed %s (%s)", record.FileName, record.Tags.SeriesName))
	}

	if s.eventPublisher != nil {
		evt := events.NewFileIndexed(record.FileRef, record.Tags.SeriesName, record.OriginChannelId)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("index_consumer", "failed to publish audit event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}

func (s *indexService) reply(ctx context.Context, chatID int64, text string) {
	if _, err := s.bot.SendMessage(ctx, chatID, text, nil); err != nil {
		s.logger.Warn("index_consumer", "failed to send message", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}

func buildFileRecord(payload *dto.PublishIndexFileMessage) *entity.FileRecord {
	fromName := mediainfo.Extract(payload.FileName)
	fromCaption := mediainfo.Extract(payload.Caption)
	tags := mediainfo.Merge(fromName, fromCaption)

	return &entity.FileRecord{
		Id:              uuid.New(),
		FileRef:         payload.FileRef,
		FileName:        payload.FileName,
		FileNameNorm:    strings.ToLower(payload.FileName),
		Caption:         payload.Caption,
		CaptionNorm:     strings.ToLower(payload.Caption),
		Category:        categoryFromMime(payload.MimeType),
		Size:            payload.Size,
		OriginChannelId: payload.ChannelID,
		OriginMessageId: payload.MessageID,
		Tags: entity.MediaTags{
			SeriesName: tags.SeriesName,
			Season:     tags.Season,
			Episode:    tags.Episode,
			Quality:    tags.Quality,
			Language:   tags.Language,
		},
		IndexedAt: time.Now(),
	}
}

func categoryFromMime(mimeType string) entity.FileCategory {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return entity.FileCategoryVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return entity.FileCategoryAudio
	default:
		return entity.FileCategoryDocument
	}
}

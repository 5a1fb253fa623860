package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
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
	"autofilter-be/pkg/shortener"
)

type IVerificationService interface {
	// Issue creates a single-use token and sends the user a (shortened)
	// verification link.
	Issue(ctx context.Context, msg *dto.IncomingMessage) error

	// Redeem consumes a token and credits the reward. Returns the owning
	// user id, or 0 when the token is unknown, used or expired; the
	// caller cannot tell which.
	Redeem(ctx context.Context, token string) (int64, error)
}

type verificationService struct {
	uowFactory       unitofwork.RepositoryFactory
	verificationRepo contract.VerificationRepository
	shortener        *shortener.Client
	bot              transport.Transport
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger

	baseURL          string
	callbackEndpoint string
	ttl              time.Duration
	reward           int
}

func NewVerificationService(
	uowFactory unitofwork.RepositoryFactory,
	verificationRepo contract.VerificationRepository,
	shortenerClient *shortener.Client,
	bot transport.Transport,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	baseURL string,
	callbackEndpoint string,
	ttl time.Duration,
	reward int,
) IVerificationService {
	return &verificationService{
		uowFactory:       uowFactory,
		verificationRepo: verificationRepo,
		shortener:        shortenerClient,
		bot:              bot,
		eventPublisher:   eventPublisher,
		logger:           log,
		baseURL:          baseURL,
		callbackEndpoint: callbackEndpoint,
		ttl:              ttl,
		reward:           reward,
	}
}

func (s *verificationService) Issue(ctx context.Context, msg *dto.IncomingMessage) error {
	if s.baseURL == "" {
		_, err := s.bot.SendMessage(ctx, msg.ChatID,
			"Verification is not configured on this bot. Contact an admin.", nil)
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().EnsureExists(ctx, &entity.UserAccount{
		UserId:    msg.UserID,
		Username:  msg.Username,
		FirstName: msg.FirstName,
		JoinedAt:  time.Now(),
	}); err != nil {
		return err
	}

	token, err := newToken()
	if err != nil {
		return err
	}

	now := time.Now()
	vt := &entity.VerificationToken{
		Token:     token,
		UserId:    msg.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.verificationRepo.Save(ctx, vt, s.ttl); err != nil {
		return err
	}

	rawURL := fmt.Sprintf("%s%s?token=%s", s.baseURL, s.callbackEndpoint, token)

	link := rawURL
	if s.shortener != nil {
		short, err := s.shortener.Shorten(ctx, rawURL)
		if err != nil {
			// Degraded but functional: hand out the raw link
			s.logger.Warn("verification", "shortener failed, using raw url", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			link = short
		}
	}

	text := fmt.Sprintf("Open this link to earn %d tokens (valid for %s):\n%s",
		s.reward, s.ttl, link)
	_, err = s.bot.SendMessage(ctx, msg.ChatID, text, nil)
	return err
}

func (s *verificationService) Redeem(ctx context.Context, token string) (int64, error) {
	vt, err := s.verificationRepo.Take(ctx, token)
	if err != nil {
		return 0, err
	}
	if vt == nil {
		return 0, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()

	if err := users.EnsureExists(ctx, &entity.UserAccount{
		UserId:   vt.UserId,
		JoinedAt: time.Now(),
	}); err != nil {
		return 0, err
	}
	if err := users.Credit(ctx, vt.UserId, s.reward); err != nil {
		return 0, err
	}

	s.logger.Info("verification", "token redeemed", map[string]interface{}{
		"user_id": vt.UserId,
		"reward":  s.reward,
	})

	text := fmt.Sprintf("Verification complete! %d tokens were added to your balance.", s.reward)
	if _, err := s.bot.SendMessage(ctx, vt.UserId, text, nil); err != nil {
		s.logger.Warn("verification", "failed to notify user", map[string]interface{}{
			"user_id": vt.UserId,
			"error":   err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.NewTokensCredited(vt.UserId, s.reward)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("verification", "failed to publish audit event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return vt.UserId, nil
}

func newToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

package shortener

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/serroba/shortify/internal/codec"
	"go.uber.org/zap"
)

// SaveResult describes the outcome of Service.Save.
type SaveResult struct {
	Link *ShortLink
	// Created is false when an existing link for the same long URL was returned.
	Created bool
}

// Code returns the short code of the saved link.
func (r SaveResult) Code() Code {
	return r.Link.EffectiveCode()
}

// Service saves long URLs and resolves short codes through a read-through cache.
type Service struct {
	links  Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a shortening service.
func NewService(links Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		links:  links,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Save returns the code for longURL, creating a link owned by ownerID when none exists.
// The first save of a long URL wins; later saves by any owner get the same code.
func (s *Service) Save(ctx context.Context, longURL string, ownerID int64) (SaveResult, error) {
	if strings.TrimSpace(longURL) == "" {
		return SaveResult{}, ErrEmptyURL
	}

	if len(longURL) > MaxURLLength {
		return SaveResult{}, ErrURLTooLong
	}

	exists, err := s.links.ExistsByLongURL(ctx, longURL)
	if err != nil {
		return SaveResult{}, fmt.Errorf("lookup long url: %w", err)
	}

	if exists {
		existing, err := s.links.GetByLongURL(ctx, longURL)
		if err != nil {
			return SaveResult{}, fmt.Errorf("load existing link: %w", err)
		}

		return SaveResult{Link: existing}, nil
	}

	link := &ShortLink{
		LongURL:   longURL,
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, ErrDuplicateURL) {
			return s.afterLostRace(ctx, longURL)
		}

		return SaveResult{}, fmt.Errorf("create link: %w", err)
	}

	link.Code = Code(codec.Encode(uint64(link.ID)))

	if err := s.links.AssignCode(ctx, link.ID, link.Code); err != nil {
		return SaveResult{}, fmt.Errorf("assign code: %w", err)
	}

	s.logger.Info("link created",
		zap.Int64("linkId", link.ID),
		zap.String("code", string(link.Code)),
		zap.Int64("ownerId", ownerID),
	)

	return SaveResult{Link: link, Created: true}, nil
}

// afterLostRace handles a concurrent save that inserted the same long URL first.
func (s *Service) afterLostRace(ctx context.Context, longURL string) (SaveResult, error) {
	winner, err := s.links.GetByLongURL(ctx, longURL)
	if err != nil {
		return SaveResult{}, fmt.Errorf("lookup after duplicate insert: %w", err)
	}

	s.logger.Debug("concurrent save resolved to existing link",
		zap.Int64("linkId", winner.ID),
	)

	return SaveResult{Link: winner}, nil
}

// Resolve returns the link for code. Cache hits never touch storage.
// Malformed codes yield ErrInvalidCode; everything else that cannot be resolved,
// storage faults included, yields ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code string) (*ShortLink, error) {
	key := Code(code)

	if link, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache lookup failed", zap.String("code", code), zap.Error(err))
	} else if ok {
		return link, nil
	}

	id, err := codec.Decode(code)
	if err != nil {
		return nil, ErrInvalidCode
	}

	// Aliases with leading zero symbols would each take a cache slot for the same link.
	if codec.Encode(id) != code || id > math.MaxInt64 {
		return nil, ErrNotFound
	}

	link, err := s.links.GetByID(ctx, int64(id))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("link lookup failed", zap.String("code", code), zap.Error(err))
		}

		return nil, ErrNotFound
	}

	if err := s.cache.Put(ctx, key, link); err != nil {
		s.logger.Warn("cache populate failed", zap.String("code", code), zap.Error(err))
	}

	return link, nil
}

// Count returns the number of stored links.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.links.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}

	return n, nil
}

// ListByOwner returns the links created by ownerID, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*ShortLink, error) {
	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	return links, nil
}

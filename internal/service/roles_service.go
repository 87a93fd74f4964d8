package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/events"
	"github.com/reshla/blacklist-service/internal/repository"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

const (
	rolesCacheKey = "roles:doc"
	rolesCacheTTL = 30 * time.Second
)

// RolesService manages the shared role document. Reads go through a short
// redis cache; writes carry an optimistic version precondition and always
// leave an audit entry.
type RolesService struct {
	roles      repository.RolesRepository
	cache      *redis.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewRolesService constructs the service. cache may be nil.
func NewRolesService(rolesRepo repository.RolesRepository, cache *redis.Client, dispatcher events.Dispatcher, logger *zap.Logger) *RolesService {
	return &RolesService{roles: rolesRepo, cache: cache, dispatcher: dispatcher, logger: logger}
}

type cachedRoles struct {
	Admins     []string  `json:"admins"`
	Moderators []string  `json:"moderators"`
	Version    int       `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Get returns the current role document.
func (s *RolesService) Get(ctx context.Context) (*domain.Roles, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, rolesCacheKey).Bytes(); err == nil {
			var cached cachedRoles
			if json.Unmarshal(raw, &cached) == nil {
				return &domain.Roles{
					Admins:     cached.Admins,
					Moderators: cached.Moderators,
					Version:    cached.Version,
					UpdatedAt:  cached.UpdatedAt,
				}, nil
			}
		}
	}

	roles, err := s.roles.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.fillCache(ctx, roles)
	return roles, nil
}

// Update replaces the roles document when expectedVersion still matches,
// records an audit entry and invalidates the cache.
func (s *RolesService) Update(ctx context.Context, actor string, admins, moderators []string, expectedVersion int) (*domain.Roles, error) {
	current, err := s.roles.Get(ctx)
	if err != nil {
		return nil, err
	}

	next := &domain.Roles{Admins: dedupe(admins), Moderators: dedupe(moderators)}
	if err := s.roles.Update(ctx, next, expectedVersion); err != nil {
		return nil, err
	}

	entry := &domain.RoleAuditEntry{
		Actor:    actor,
		OldRoles: *current,
		NewRoles: *next,
	}
	if err := s.roles.AppendAudit(ctx, entry); err != nil {
		s.logger.Warn("failed to append role audit entry", zap.Error(err))
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, rolesCacheKey).Err(); err != nil {
			s.logger.Warn("failed to invalidate roles cache", zap.Error(err))
		}
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventRolesChanged,
			ActorID:   actor,
			Timestamp: time.Now(),
			Payload: events.RolesChangedPayload{
				Admins:     next.Admins,
				Moderators: next.Moderators,
				Version:    next.Version,
			},
		})
	}
	return next, nil
}

// IsModerator reports whether the username may act on the moderation queue.
// Admins are implicitly moderators.
func (s *RolesService) IsModerator(ctx context.Context, username string) (bool, error) {
	roles, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return roles.IsModerator(username), nil
}

// IsAdmin reports whether the username is an admin.
func (s *RolesService) IsAdmin(ctx context.Context, username string) (bool, error) {
	roles, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return roles.IsAdmin(username), nil
}

// RequireModerator returns FORBIDDEN unless the username is a moderator.
func (s *RolesService) RequireModerator(ctx context.Context, username string) error {
	allowed, err := s.IsModerator(ctx, username)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbidden("moderator role required")
	}
	return nil
}

func (s *RolesService) fillCache(ctx context.Context, roles *domain.Roles) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedRoles{
		Admins:     roles.Admins,
		Moderators: roles.Moderators,
		Version:    roles.Version,
		UpdatedAt:  roles.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, rolesCacheKey, raw, rolesCacheTTL).Err(); err != nil {
		s.logger.Debug("failed to fill roles cache", zap.Error(err))
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

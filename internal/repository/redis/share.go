package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"

	goredis "github.com/redis/go-redis/v9"
)

// ShareRepository stores share tokens as JSON values whose Redis TTL matches the
// token's expiry, so expired tokens disappear without a sweeper.
type ShareRepository struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// NewShareRepository creates a share repository; keys are namespaced by prefix.
func NewShareRepository(client *goredis.Client, prefix string) collectionRepo.ShareRepository {
	return &ShareRepository{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *ShareRepository) key(id string) string {
	return r.prefix + "share:" + id
}

// Create stores the token with SET NX so an existing id is never overwritten
func (r *ShareRepository) Create(ctx context.Context, share *models.ShareToken) error {
	var ttl time.Duration
	if share.ExpiresAt != nil {
		ttl = share.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return &domain.ValidationError{Message: "share expiry must be in the future"}
		}
	}

	payload, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("encode share: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(share.ID), payload, ttl).Result()
	if err != nil {
		return wrapError("create share", err)
	}
	if !ok {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("share %s already exists", share.ID),
			ResourceType: "share",
			ResourceID:   share.ID,
		}
	}

	return nil
}

// Get returns the token; unknown and expired tokens are NotFound
func (r *ShareRepository) Get(ctx context.Context, id string) (*models.ShareToken, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.NewNotFound("share", id)
		}
		return nil, wrapError("get share", err)
	}

	var share models.ShareToken
	if err := json.Unmarshal(payload, &share); err != nil {
		return nil, fmt.Errorf("decode share %s: %w", id, err)
	}

	// Expiry is also checked locally against this process's clock
	if share.Expired(r.now()) {
		return nil, domain.NewNotFound("share", id)
	}

	return &share, nil
}

// Delete removes the token
func (r *ShareRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return wrapError("delete share", err)
	}
	return nil
}

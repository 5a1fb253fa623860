package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autofilter-be/internal/entity"
	"autofilter-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

type VerificationRepositoryImpl struct {
	rdb *redis.Client
}

func NewVerificationRepository(rdb *redis.Client) contract.VerificationRepository {
	return &VerificationRepositoryImpl{
		rdb: rdb,
	}
}

func verificationKey(token string) string {
	return fmt.Sprintf("verify:%s", token)
}

func (r *VerificationRepositoryImpl) Save(ctx context.Context, token *entity.VerificationToken, ttl time.Duration) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, verificationKey(token.Token), data, ttl).Err()
}

// Take uses GETDEL so two concurrent redemptions of the same token
// cannot both succeed. The stored deadline is re-checked on top of the
// store's own expiry.
func (r *VerificationRepositoryImpl) Take(ctx context.Context, token string) (*entity.VerificationToken, error) {
	data, err := r.rdb.GetDel(ctx, verificationKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var vt entity.VerificationToken
	if err := json.Unmarshal(data, &vt); err != nil {
		return nil, err
	}

	if time.Now().After(vt.ExpiresAt) {
		return nil, nil
	}

	return &vt, nil
}

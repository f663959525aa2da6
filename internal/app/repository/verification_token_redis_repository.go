package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gorm.io/gorm"
)

const verificationKeyPrefix = "verification:"

// Deletes the hash only while it still holds the presented token.
var compareAndDelete = redis.NewScript(`
if redis.call("HGET", KEYS[1], "token") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// verificationTokenRedisRepository keeps one hash per identifier:
// verification:<identifier> -> {token, expires, created_at}.
// Keys outlive their validity by retention so that expiry stays observable.
type verificationTokenRedisRepository struct {
	client    *redis.Client
	retention time.Duration
	timeout   time.Duration
}

func NewVerificationTokenRedisRepository(client *redis.Client, retention time.Duration) VerificationTokenRepository {
	return &verificationTokenRedisRepository{
		client:    client,
		retention: retention,
		timeout:   3 * time.Second,
	}
}

func verificationKey(identifier string) string {
	return verificationKeyPrefix + identifier
}

func (r *verificationTokenRedisRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *verificationTokenRedisRepository) ttl(expires time.Time) time.Duration {
	ttl := time.Until(expires) + r.retention
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// Create overwrites any token stored under the identifier; a slot holds one value.
func (r *verificationTokenRedisRepository) Create(token *model.VerificationToken) error {
	return r.Replace(token)
}

func (r *verificationTokenRedisRepository) Replace(token *model.VerificationToken) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	key := verificationKey(token.Identifier)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"token", token.Token,
			"expires", strconv.FormatInt(token.Expires.UnixNano(), 10),
			"created_at", strconv.FormatInt(token.CreatedAt.UnixNano(), 10),
		)
		pipe.PExpire(ctx, key, r.ttl(token.Expires))
		return nil
	})
	if err != nil {
		logger.Error("Failed to store verification token in redis", err, map[string]interface{}{
			"identifier": token.Identifier,
		})
		return err
	}

	logger.Debug("Verification token stored in redis", map[string]interface{}{
		"identifier": token.Identifier,
	})
	return nil
}

func (r *verificationTokenRedisRepository) DeleteByIdentifier(identifier string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.Del(ctx, verificationKey(identifier)).Err(); err != nil {
		logger.Error("Failed to delete verification token from redis", err, map[string]interface{}{
			"identifier": identifier,
		})
		return err
	}
	return nil
}

func (r *verificationTokenRedisRepository) Find(identifier, token string) (*model.VerificationToken, error) {
	record, err := r.FindByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if record.Token != token {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *verificationTokenRedisRepository) FindByIdentifier(identifier string) (*model.VerificationToken, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	fields, err := r.client.HGetAll(ctx, verificationKey(identifier)).Result()
	if err != nil {
		logger.Error("Failed to read verification token from redis", err, map[string]interface{}{
			"identifier": identifier,
		})
		return nil, err
	}
	if len(fields) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return decodeVerificationToken(identifier, fields)
}

func (r *verificationTokenRedisRepository) Delete(identifier, token string) (bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	removed, err := compareAndDelete.Run(ctx, r.client, []string{verificationKey(identifier)}, token).Int64()
	if err != nil {
		logger.Error("Failed to delete verification token from redis", err, map[string]interface{}{
			"identifier": identifier,
		})
		return false, err
	}
	return removed > 0, nil
}

// DeleteExpired scans the keyspace; redis TTLs remove the rest after retention.
func (r *verificationTokenRedisRepository) DeleteExpired(before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*r.timeout)
	defer cancel()

	var deleted int64
	iter := r.client.Scan(ctx, 0, verificationKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.HGet(ctx, key, "expires").Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return deleted, err
		}

		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || time.Unix(0, nanos).Before(before) {
			n, err := r.client.Del(ctx, key).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
	}
	if err := iter.Err(); err != nil {
		logger.Error("Failed to scan verification tokens in redis", err)
		return deleted, err
	}

	logger.Debug("Expired verification tokens deleted from redis", map[string]interface{}{
		"count": deleted,
	})
	return deleted, nil
}

func decodeVerificationToken(identifier string, fields map[string]string) (*model.VerificationToken, error) {
	expires, err := strconv.ParseInt(fields["expires"], 10, 64)
	if err != nil {
		return nil, err
	}
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)

	return &model.VerificationToken{
		Identifier: identifier,
		Token:      fields["token"],
		Expires:    time.Unix(0, expires),
		CreatedAt:  time.Unix(0, created),
	}, nil
}

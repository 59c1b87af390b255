package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pagecast/pagecast/internal/transfer"
	"github.com/pagecast/pagecast/pkg/utils"
)

// DiscoveryTTL bounds how long a discovery result stays selectable. A user who
// walks away from the selection dialog has to reconnect.
const DiscoveryTTL = 15 * time.Minute

// DiscoveryCache holds discovery results between the OAuth callback and the
// selection submit. Token material is encrypted before it reaches Redis.
type DiscoveryCache struct {
	client    *redis.Client
	secretKey []byte
}

func NewDiscoveryCache(client *redis.Client, secretKey string) *DiscoveryCache {
	return &DiscoveryCache{
		client:    client,
		secretKey: []byte(secretKey),
	}
}

func discoveryKey(userID int64) string {
	return fmt.Sprintf("discovery:%d", userID)
}

func (c *DiscoveryCache) Save(ctx context.Context, userID int64, result *transfer.DiscoveryResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	sealed, err := utils.Encrypt(payload, c.secretKey)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, discoveryKey(userID), sealed, DiscoveryTTL).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (c *DiscoveryCache) Get(ctx context.Context, userID int64) (*transfer.DiscoveryResult, bool, error) {
	sealed, err := c.client.Get(ctx, discoveryKey(userID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, false, err
	}

	payload, err := utils.Decrypt(sealed, c.secretKey)
	if err != nil {
		return nil, false, err
	}

	var result transfer.DiscoveryResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		slog.Info(err.Error())
		return nil, false, err
	}

	return &result, true, nil
}

func (c *DiscoveryCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, discoveryKey(userID)).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

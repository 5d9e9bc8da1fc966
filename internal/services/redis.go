package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// messageEventsChannel carries new chat message events between API instances.
const messageEventsChannel = "message:events"

const conversationCacheTTL = 30 * time.Second

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// PublishMessageEvent publishes a new chat message event to Redis pub/sub
func PublishMessageEvent(ctx context.Context, event NewMessageEvent) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, messageEventsChannel, data).Err()
}

// SubscribeMessageEvents forwards published message events into the hub's
// parcel rooms. Runs until the context is cancelled.
func SubscribeMessageEvents(ctx context.Context, hub *Hub) {
	if RedisClient == nil {
		return
	}

	pubsub := RedisClient.Subscribe(ctx, messageEventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event NewMessageEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Error unmarshaling message event: %v", err)
			continue
		}
		hub.SendNewMessage(event)
	}
}

// SetCachedConversations stores a user's conversation list for a short window
func SetCachedConversations(ctx context.Context, userID uint, conversations interface{}) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(conversations)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("conversations:%d", userID)
	return RedisClient.Set(ctx, key, data, conversationCacheTTL).Err()
}

// GetCachedConversations retrieves a user's cached conversation list
func GetCachedConversations(ctx context.Context, userID uint) (json.RawMessage, error) {
	if RedisClient == nil {
		return nil, redis.Nil
	}

	key := fmt.Sprintf("conversations:%d", userID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// InvalidateConversationCache drops the cached conversation lists for both
// parties after a message is created or marked read.
func InvalidateConversationCache(ctx context.Context, userIDs ...uint) {
	if RedisClient == nil {
		return
	}
	for _, userID := range userIDs {
		key := fmt.Sprintf("conversations:%d", userID)
		if err := RedisClient.Del(ctx, key).Err(); err != nil {
			log.Printf("Failed to invalidate conversation cache for user %d: %v", userID, err)
		}
	}
}

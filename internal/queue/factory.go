package queue

import (
	"fmt"
	"strings"

	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/utils"
)

// NewQueue creates a new Queue instance based on configuration.
// An empty type or "none" yields a queue that drops every message.
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))

	switch queueType {
	case "", utils.QueueTypeNone:
		return nopQueue{}, nil

	case utils.QueueTypeNATS:
		return newNATSQueue(cfg.URL)

	case utils.QueueTypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})

	case utils.QueueTypeKafka:
		return newKafkaQueue(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
		})

	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: none, memory, nats, redis, kafka)", queueType)
	}
}

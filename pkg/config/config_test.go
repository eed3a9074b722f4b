package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Grades.TaskTermFilter)
	assert.Equal(t, 10*time.Minute, cfg.Grades.WeightsCacheTTL)
	assert.Equal(t, PublisherGoChannel, cfg.Events.Publisher)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, StorageLocal, cfg.Exports.Storage)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("GRADES_TASK_TERM_FILTER", false)
	v.Set("EVENTS_PUBLISHER", "KAFKA")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	v.Set("RECAP_CACHE_TTL", "90s")

	cfg := fromViper(v)
	assert.False(t, cfg.Grades.TaskTermFilter)
	assert.Equal(t, PublisherKafka, cfg.Events.Publisher)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.Recaps.CacheTTL)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,, b"))
}

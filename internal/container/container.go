package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-ecommerce/config"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional integrations
// (GCS, Elasticsearch, RabbitMQ) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	hasher     *helpers.BcryptHasher

	imageStore *helpers.ProductImageStore
	emailQueue *helpers.RabbitQueue
	esClient   *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return helpers.NewDiscardLogger()
}
func SetPGPool(p *pgxpool.Pool)        { pgPool = p }
func GetPGPool() *pgxpool.Pool         { return pgPool }
func SetRedis(r *redis.Client)         { redisClient = r }
func GetRedis() *redis.Client          { return redisClient }
func SetJWT(m *helpers.JWTManager)     { jwtManager = m }
func GetJWT() *helpers.JWTManager      { return jwtManager }
func SetHasher(h *helpers.BcryptHasher) { hasher = h }
func GetHasher() *helpers.BcryptHasher {
	if hasher != nil {
		return hasher
	}
	return helpers.NewBcryptHasher(0)
}

func SetImageStore(s *helpers.ProductImageStore) { imageStore = s }
func GetImageStore() *helpers.ProductImageStore  { return imageStore }
func SetEmailQueue(q *helpers.RabbitQueue)       { emailQueue = q }
func GetEmailQueue() *helpers.RabbitQueue        { return emailQueue }
func SetES(c *elasticsearch.Client)              { esClient = c }
func GetES() *elasticsearch.Client               { return esClient }

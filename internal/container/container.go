package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oktaviandi/auth-portal/config"
	"github.com/oktaviandi/auth-portal/internal/oauth"
	"github.com/oktaviandi/auth-portal/internal/session"
	"github.com/oktaviandi/auth-portal/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	rabbitPub   *helpers.RabbitPublisher
	esClient    *elasticsearch.Client

	sessions    *session.Manager
	google      *oauth.GoogleProvider
	stateSigner *oauth.StateSigner
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetSessions(m *session.Manager) { sessions = m }
func GetSessions() *session.Manager  { return sessions }

func SetGoogle(p *oauth.GoogleProvider) { google = p }
func GetGoogle() *oauth.GoogleProvider  { return google }

func SetStateSigner(s *oauth.StateSigner) { stateSigner = s }
func GetStateSigner() *oauth.StateSigner  { return stateSigner }

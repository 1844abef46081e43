package appcontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/config"
	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/producer"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/realtime"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/ordertracker/internal/metrics"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
	"github.com/RoyceAzure/rj/api/token"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ApplicationContext struct {
	Cf          *config.Config
	Logger      zerolog.Logger
	LogWriter   *producer.KafkaLogWriter
	Metrics     *metrics.Metrics
	Permissions *config.PermissionConfig
	DbDao       *db.DbDao
	RedisClient *redis.Client
	TokenMaker  token.Maker[uuid.UUID]
	Limiter     ratelimit.ILimiter
	Cache       cache.Cache
	OrderCache  redis_repo.IOrderCacheRepository
	Publisher   producer.IOrderEventPublisher
	Hub         *realtime.Hub
	Broadcaster *realtime.RedisBroadcaster
	Notifier    realtime.Notifier

	UserService    service.IUserService
	AuthService    service.IAuthService
	ProductService service.IProductService
	OrderService   service.IOrderService

	// 背景工作 (redis 重連, broadcaster 訂閱) 的生命週期
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	v := reflect.ValueOf(*cf)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldName := t.Field(i).Name
		if strings.Contains(fieldName, "Pas") || strings.Contains(fieldName, "Key") {
			continue
		}
		fmt.Printf("  \"%s\": \"%v\",\n", fieldName, v.Field(i).Interface())
	}
	app.bgCtx, app.bgCancel = context.WithCancel(context.Background())

	if err := app.Init(); err != nil {
		app.bgCancel()
		return nil, err
	}

	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpMetrics,
		app.setUpPermissions,
		app.setUpDbDao,
		app.setUpRedis,
		app.setUpCache,
		app.setUpLimiter,
		app.setUpPublisher,
		app.setUpRealtime,
		app.setTokenMaker,
		app.setUpServices,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	log.Printf("Start setup logger")
	level, err := zerolog.ParseLevel(app.Cf.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if constants.ENV(app.Cf.Env) == constants.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	// 有設定 KAFKA_LOG_TOPIC 時同時送一份到 kafka
	// kafka writer 本身的錯誤只寫 stdout, 避免寫入失敗又產生 log
	if len(app.Cf.KafkaBrokers) > 0 && app.Cf.KafkaLogTopic != "" {
		stdoutLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		app.LogWriter = producer.NewKafkaLogWriter(producer.NewKafkaWriter(producer.Config{
			Brokers:      app.Cf.KafkaBrokers,
			Topic:        app.Cf.KafkaLogTopic,
			BatchSize:    500,
			BatchTimeout: 100 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
			MaxAttempts:  3,
		}, stdoutLogger))
		out = zerolog.MultiLevelWriter(out, app.LogWriter)
	}

	app.Logger = zerolog.New(out).Level(level).With().Timestamp().Str("service", "ordertracker").Logger()
	log.Printf("Finish setup logger")
	return nil
}

func (app *ApplicationContext) setUpMetrics() error {
	log.Printf("Start setup metrics")
	app.Metrics = metrics.NewMetrics()
	log.Printf("Finish setup metrics")
	return nil
}

func (app *ApplicationContext) setUpPermissions() error {
	log.Printf("Start setup permission config")
	permissions, err := config.LoadPermissionConfig(app.Cf.PermissionFile)
	if err != nil {
		return err
	}
	app.Permissions = permissions
	log.Printf("Finish setup permission config")
	return nil
}

func (app *ApplicationContext) setUpDbDao() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	app.DbDao = db.NewDbDao(conn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Printf("Finish setup database connection")
	return nil
}

// setUpRedis 不等待連線成功, 背景持續重試
func (app *ApplicationContext) setUpRedis() error {
	log.Printf("Start setup redis client")
	app.RedisClient = cache.NewRedisClient(app.Cf.RedisAddr,
		cache.WithPassword(app.Cf.RedisPassword),
		cache.WithDB(app.Cf.RedisDB),
	)
	go func() {
		if err := cache.WaitForConnection(app.bgCtx, app.RedisClient, app.Cf.RedisRetryDelay, app.Logger); err != nil && !errors.Is(err, context.Canceled) {
			app.Logger.Error().Err(err).Msg("redis connection loop stopped")
		}
	}()
	log.Printf("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setUpCache() error {
	log.Printf("Start setup order cache")
	app.Cache = cache.NewRedisCache(app.RedisClient, constants.OrderCachePrefix)
	app.OrderCache = redis_repo.NewOrderCacheRepo(
		app.Cache,
		cache.NewRedisCache(app.RedisClient, constants.UserOrdersCachePrefix),
		app.Cf.CacheTTL(),
	)
	log.Printf("Finish setup order cache")
	return nil
}

func (app *ApplicationContext) setUpLimiter() error {
	log.Printf("Start setup rate limiter")
	limiterConfig := ratelimit.GetDefaultLimiterConfig()
	if app.Cf.RateLimitCapacity > 0 {
		limiterConfig.Capacity = app.Cf.RateLimitCapacity
	}
	if app.Cf.RateLimitRatePS > 0 {
		limiterConfig.RatePS = app.Cf.RateLimitRatePS
	}
	app.Limiter = ratelimit.NewRsTokenBucket(app.RedisClient, &limiterConfig)
	log.Printf("Finish setup rate limiter")
	return nil
}

// setUpPublisher 沒有設定 broker 時不送出訂單事件
func (app *ApplicationContext) setUpPublisher() error {
	log.Printf("Start setup order event publisher")
	if len(app.Cf.KafkaBrokers) == 0 {
		app.Publisher = producer.NopPublisher{}
		log.Printf("Finish setup order event publisher (disabled)")
		return nil
	}

	writer := producer.NewKafkaWriter(producer.Config{
		Brokers:      app.Cf.KafkaBrokers,
		Topic:        app.Cf.KafkaOrderTopic,
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		MaxAttempts:  3,
	}, app.Logger)
	app.Publisher = producer.NewOrderEventProducer(writer)
	log.Printf("Finish setup order event publisher")
	return nil
}

func (app *ApplicationContext) setUpRealtime() error {
	log.Printf("Start setup realtime hub")
	app.Hub = realtime.NewHub(app.Logger, realtime.WithMetrics(app.Metrics))
	app.Notifier = app.Hub

	if app.Cf.RealtimeBroadcast == constants.RealtimeBroadcastRedis {
		app.Broadcaster = realtime.NewRedisBroadcaster(app.RedisClient, constants.RealtimeChannel, app.Hub, app.Logger)
		app.Notifier = app.Broadcaster
		// 訂閱失敗持續重試, 直到成功或 shutdown
		go func() {
			err := app.Broadcaster.StartWithRetry(app.bgCtx, app.Cf.RedisRetryDelay)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, realtime.ErrBroadcasterClosed) {
				app.Logger.Error().Err(err).Msg("redis broadcaster start failed")
			}
		}()
	}
	log.Printf("Finish setup realtime hub")
	return nil
}

func (app *ApplicationContext) setTokenMaker() error {
	log.Printf("Start setup token maker")
	tokenMaker, err := token.NewPasetoMaker[uuid.UUID](app.Cf.AuthTokenKey)
	if err != nil {
		return fmt.Errorf("create token maker: %w", err)
	}
	app.TokenMaker = tokenMaker
	log.Printf("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	log.Printf("Start setup services")
	productRepo := db.NewProductRepo(app.DbDao)
	app.UserService = service.NewUserService(db.NewUserRepo(app.DbDao))
	app.AuthService = service.NewAuthService(app.UserService, app.TokenMaker, app.Logger)
	app.ProductService = service.NewProductService(productRepo)
	app.OrderService = service.NewOrderService(
		db.NewOrderRepo(app.DbDao),
		productRepo,
		app.OrderCache,
		app.Notifier,
		app.Publisher,
		app.Metrics,
		app.Logger,
	)
	log.Printf("Finish setup services")
	return nil
}

// Shutdown 需在 http server 關閉之後呼叫
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		var errList []error
		app.bgCancel()

		if app.Broadcaster != nil {
			log.Printf("Closing redis broadcaster...")
			errList = append(errList, app.Broadcaster.Close())
		}
		if app.Hub != nil {
			log.Printf("Closing realtime hub...")
			app.Hub.Close()
		}
		if app.Publisher != nil {
			log.Printf("Closing order event publisher...")
			errList = append(errList, app.Publisher.Close())
		}
		if app.RedisClient != nil {
			log.Printf("Closing redis client...")
			errList = append(errList, app.RedisClient.Close())
		}
		if app.DbDao != nil {
			log.Printf("Closing database connection...")
			errList = append(errList, app.DbDao.Close())
		}
		if app.LogWriter != nil {
			log.Printf("Closing kafka log writer...")
			errList = append(errList, app.LogWriter.Close())
		}

		log.Printf("Application shutdown complete")
		done <- errors.Join(errList...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}

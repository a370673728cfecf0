package appcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
	"github.com/RoyceAzure/lab/storefront/internal/infra/media"
	"github.com/RoyceAzure/lab/storefront/internal/infra/payment"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/redis_client"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/mongo_repo"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type ApplicationContext struct {
	Cf      *config.Config
	Logger  *logger.Logger
	Metrics *metrics.Metrics

	Store         *repository.Store
	RedisClient   *redis.Client
	CartRepo      repository.ICartRepository
	KafkaProducer kafka.Producer
	EventProducer producer.IOrderEventProducer

	TokenVerifier  identity.ITokenVerifier
	SellerConfig   *config.SellerConfig
	PaymentGateway payment.IPaymentGateway
	MediaStore     media.IMediaStore
	Limiter        ratelimit.ILimiter

	ProductService     service.IProductService
	OrderService       *service.OrderService
	SellerOrderService service.ISellerOrderService
	PaymentService     service.IPaymentService
	UserService        service.IUserService
	AddressService     service.IAddressService
	CartService        service.ICartService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}

	err := app.Init()
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpMetrics,
		app.setUpStore,
		app.setUpRedis,
		app.setUpProductCache,
		app.setUpEventProducer,
		app.setUpTokenVerifier,
		app.setUpSellerConfig,
		app.setUpPaymentGateway,
		app.setUpMediaStore,
		app.setUpLimiter,
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
	l, err := logger.New(logger.Config{
		ServiceName:  app.Cf.ServiceName,
		Level:        app.Cf.LogLevel,
		FilePath:     app.Cf.LogFile,
		KafkaBrokers: app.Cf.Brokers(),
		KafkaTopic:   app.Cf.LogKafkaTopic,
	})
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	app.Logger = l
	log.Info().Str("env", app.Cf.Env).Str("db_driver", app.Cf.DbDriver).Msg("Finish setup logger")
	return nil
}

func (app *ApplicationContext) setUpMetrics() error {
	app.Metrics = metrics.New(app.Cf.ServiceName)
	log.Info().Msg("Finish setup metrics")
	return nil
}

func (app *ApplicationContext) setUpStore() error {
	log.Info().Msg("Start setup store")

	switch constants.DbDriver(app.Cf.DbDriver) {
	case constants.DbDriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := mongo_repo.GetMongoClient(ctx, app.Cf.MongoURI)
		if err != nil {
			return err
		}
		if err := mongo_repo.EnsureIndexes(ctx, client.Database(app.Cf.MongoDb)); err != nil {
			return err
		}
		app.Store = mongo_repo.NewStore(client, app.Cf.MongoDb, app.Cf.MongoUseTransaction)
	case constants.DbDriverPostgres:
		err := db.RunDBMigration(app.Cf.MigrationURL,
			db.GetMigrateURL(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas))
		if err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
		conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
		if err != nil {
			return err
		}
		app.Store = db.NewStore(db.NewDbDao(conn))
	default:
		return fmt.Errorf("unsupported db driver %q", app.Cf.DbDriver)
	}

	log.Info().Msg("Finish setup store")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Info().Msg("Start setup redis")
	client, err := redis_client.GetRedisClient(app.Cf.RedisAddr,
		redis_client.WithPassword(app.Cf.RedisPassword),
		redis_client.WithDB(app.Cf.RedisDb),
	)
	if err != nil {
		return err
	}
	app.RedisClient = client
	app.CartRepo = redis_repo.NewCartRepo(client)
	log.Info().Msg("Finish setup redis")
	return nil
}

// setUpProductCache TTL <= 0 表示不快取
func (app *ApplicationContext) setUpProductCache() error {
	if app.Cf.ProductCacheTTLSec <= 0 {
		log.Info().Msg("product cache disabled")
		return nil
	}
	app.Store = redis_decorator.WrapStore(app.Store, app.RedisClient, time.Duration(app.Cf.ProductCacheTTLSec)*time.Second)
	log.Info().Int("ttl_sec", app.Cf.ProductCacheTTLSec).Msg("Finish setup product cache")
	return nil
}

func (app *ApplicationContext) setUpEventProducer() error {
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 || app.Cf.OrderEventTopic == "" {
		log.Warn().Msg("kafka not configured, order events are discarded")
		app.EventProducer = producer.NoopOrderEventProducer{}
		return nil
	}

	p, err := kafka.NewProducer(kafka.DefaultConfig(brokers, app.Cf.OrderEventTopic))
	if err != nil {
		return fmt.Errorf("setup kafka producer: %w", err)
	}
	app.KafkaProducer = p
	app.EventProducer = producer.NewOrderEventProducer(p)
	log.Info().Strs("brokers", brokers).Str("topic", app.Cf.OrderEventTopic).Msg("Finish setup order event producer")
	return nil
}

func (app *ApplicationContext) setUpTokenVerifier() error {
	var opts []identity.Option
	if app.Cf.IdentityIssuer != "" {
		opts = append(opts, identity.WithIssuer(app.Cf.IdentityIssuer))
	}
	verifier, err := identity.NewJWTVerifier(app.Cf.IdentityJwtSecret, app.Cf.IdentityPublicKey, opts...)
	if err != nil {
		return fmt.Errorf("setup token verifier: %w", err)
	}
	app.TokenVerifier = verifier
	log.Info().Msg("Finish setup token verifier")
	return nil
}

func (app *ApplicationContext) setUpSellerConfig() error {
	if app.Cf.SellerConfigPath == "" {
		app.SellerConfig = config.NewSellerConfig()
		return nil
	}
	sellers, err := config.LoadSellerConfig(app.Cf.SellerConfigPath)
	if err != nil {
		return fmt.Errorf("load seller config: %w", err)
	}
	app.SellerConfig = sellers
	log.Info().Int("sellers", len(sellers.Sellers)).Msg("Finish setup seller config")
	return nil
}

func (app *ApplicationContext) setUpPaymentGateway() error {
	if app.Cf.RazorpayKeyID == "" || app.Cf.RazorpayKeySecret == "" {
		log.Warn().Msg("razorpay not configured, payment routes are unavailable")
		return nil
	}
	app.PaymentGateway = payment.NewRazorpayGateway(app.Cf.RazorpayKeyID, app.Cf.RazorpayKeySecret)
	log.Info().Msg("Finish setup payment gateway")
	return nil
}

func (app *ApplicationContext) setUpMediaStore() error {
	if app.Cf.CloudinaryCloudName == "" {
		log.Warn().Msg("cloudinary not configured, product uploads are unavailable")
		return nil
	}
	store, err := media.NewCloudinaryStore(app.Cf.CloudinaryCloudName, app.Cf.CloudinaryApiKey, app.Cf.CloudinaryApiSecret)
	if err != nil {
		return err
	}
	app.MediaStore = store
	log.Info().Msg("Finish setup media store")
	return nil
}

func (app *ApplicationContext) setUpLimiter() error {
	alg, err := ratelimit.ParseAlgorithm(app.Cf.RateLimitAlgorithm)
	if err != nil {
		return err
	}
	var scripter redis.Scripter
	if app.RedisClient != nil {
		scripter = app.RedisClient
	}
	limiter, err := ratelimit.NewLimiter(alg, ratelimit.LimiterConfig{
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitRate,
		Window:   time.Duration(app.Cf.RateLimitWindowSec) * time.Second,
	}, scripter)
	if err != nil {
		return err
	}
	app.Limiter = limiter
	log.Info().Str("algorithm", string(alg)).Msg("Finish setup rate limiter")
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	log.Info().Msg("Start setup services")
	app.ProductService = service.NewProductService(app.Store.Products, app.MediaStore)
	app.OrderService = service.NewOrderService(app.Store, app.CartRepo, app.EventProducer, app.Metrics)
	app.SellerOrderService = service.NewSellerOrderService(app.Store)
	app.PaymentService = service.NewPaymentService(app.Store.Orders, app.PaymentGateway, app.Cf.PaymentCurrency)
	app.UserService = service.NewUserService(app.Store.Users, app.CartRepo)
	app.AddressService = service.NewAddressService(app.Store.Addresses)
	app.CartService = service.NewCartService(app.CartRepo, app.Store.Products)
	log.Info().Msg("Finish setup services")
	return nil
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		var errs []error

		// 先等待尚未送出的訂單事件
		if app.OrderService != nil {
			app.OrderService.Wait()
		}
		if app.Limiter != nil {
			app.Limiter.Stop()
		}
		if app.KafkaProducer != nil {
			log.Info().Msg("Closing kafka producer...")
			if err := app.KafkaProducer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
			}
		}
		if app.Store != nil {
			log.Info().Msg("Closing database connection...")
			if err := app.Store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close store: %w", err))
			}
		}
		if err := redis_client.CloseAll(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}

		log.Info().Msg("Application shutdown complete")
		// logger 最後關閉
		if app.Logger != nil {
			if err := app.Logger.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close logger: %w", err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

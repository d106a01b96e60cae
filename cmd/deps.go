package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/donation-management/internal"
	"github.com/frahmantamala/donation-management/internal/core/events"
	"github.com/frahmantamala/donation-management/internal/donation"
	donationPostgres "github.com/frahmantamala/donation-management/internal/donation/postgres"
	donationRedis "github.com/frahmantamala/donation-management/internal/donation/redis"
	"github.com/frahmantamala/donation-management/internal/paymentgateway"
	"github.com/frahmantamala/donation-management/internal/program"
	programPostgres "github.com/frahmantamala/donation-management/internal/program/postgres"
	"github.com/frahmantamala/donation-management/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dependencies is everything the commands share: connections, the gateway
// client, the event bus and the services built on top of them.
type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    goredis.UniversalClient
	Gateway  *paymentgateway.Client
	EventBus *events.EventBus
	Relay    *events.KafkaRelay
	Logger   *slog.Logger

	DonationRepo        donation.RepositoryAPI
	ProgramService      *program.Service
	DonationService     *donation.Service
	NotificationService *donation.NotificationService
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gormDB,
		Logger:   lg,
		EventBus: events.NewEventBus(lg),
		Gateway: paymentgateway.NewClient(paymentgateway.Config{
			ServerKey:    config.Payment.ServerKey,
			IsProduction: config.Payment.IsProduction,
			IsSanitized:  config.Payment.IsSanitized,
			Is3DS:        config.Payment.Is3DS,
			SnapURL:      config.Payment.SnapURL,
			APIURL:       config.Payment.APIURL,
			Timeout:      config.Payment.Timeout,
		}, lg),
	}

	var cache donation.StatusCache
	if config.Cache.Enabled {
		deps.Redis = donationRedis.NewClient(config.Cache.Addrs, config.Cache.Password, config.Cache.UseCluster)
		cache = donationRedis.NewStatusCache(deps.Redis, config.Cache.TerminalTTL)
		lg.Info("status cache enabled", "addrs", config.Cache.Addrs, "cluster", config.Cache.UseCluster)
	}

	if config.Events.KafkaEnabled {
		writer := events.NewKafkaWriter(config.Events.Brokers, config.Events.Topic, config.Events.WriteTimeout, lg)
		deps.Relay = events.NewKafkaRelay(writer, config.Events.WriteTimeout, lg)
		deps.Relay.Register(deps.EventBus,
			events.EventTypeDonationPaid,
			events.EventTypeDonationFailed,
			events.EventTypeDonationNotificationUnrecognized)
		lg.Info("kafka relay enabled", "brokers", config.Events.Brokers, "topic", config.Events.Topic)
	}

	deps.DonationRepo = donationPostgres.NewDonationRepository(gormDB)
	deps.ProgramService = program.NewService(programPostgres.NewProgramRepository(db), lg)
	deps.DonationService = donation.NewService(
		deps.DonationRepo,
		deps.ProgramService,
		deps.Gateway,
		cache,
		donation.Config{
			MinimumDonation: decimal.NewFromInt(config.Payment.MinimumDonation),
			Fees:            donation.NewFeeTable(config.Payment.Fees),
			GatewayTimeout:  config.Payment.Timeout,
		},
		lg,
	)
	deps.NotificationService = donation.NewNotificationService(deps.DonationRepo, deps.Gateway, deps.EventBus, cache, lg)

	return deps, nil
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() {
	if d.Relay != nil {
		if err := d.Relay.Close(); err != nil {
			d.Logger.Error("kafka relay close error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm opens GORM on the pool sqlx already manages.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
}

package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/sneakers/config"
	"github.com/niksmo/sneakers/internal/adapter"
	"github.com/niksmo/sneakers/internal/adapter/catalog"
	"github.com/niksmo/sneakers/internal/adapter/httphandler"
	"github.com/niksmo/sneakers/internal/adapter/kafka"
	"github.com/niksmo/sneakers/internal/adapter/metrics"
	"github.com/niksmo/sneakers/internal/adapter/storage"
	"github.com/niksmo/sneakers/internal/core/service"
	"github.com/niksmo/sneakers/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type outbound struct {
	slot     storage.Slot
	producer *kafka.OrdersProducer
	metrics  *metrics.Metrics
}

type coreService struct {
	catalog  service.Catalog
	pricing  service.Pricing
	cart     *service.CartStore
	checkout *service.Checkout
}

type App struct {
	ctx         context.Context
	cfg         config.Config
	outbound    outbound
	service     coreService
	unsubscribe func()
	handler     http.Handler
	httpServer  httphandler.HTTPServer
}

// New wires the storefront and panics if a dependency is unavailable.
func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg, unsubscribe: func() {}}

	app.initLogger()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	slot, err := storage.Open(app.ctx, storageOptions(app.cfg))
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.slot = slot

	if app.cfg.Metrics.Enabled {
		app.outbound.metrics = metrics.New()
	}

	app.initOrdersProducer()
}

func (app *App) initOrdersProducer() {
	const op = "App.initOrdersProducer"
	b := app.cfg.Broker

	if len(b.SeedBrokers) == 0 {
		slog.Info("no seed brokers, placed orders are not published", "op", op)
		return
	}

	tlsConfig, err := app.brokerTLS()
	if err != nil {
		app.fallDown(op, err)
	}

	srOpts := []sr.ClientOpt{sr.URLs(b.SchemaRegistryURLs...)}
	if tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeOrderPlacedV1(
		app.ctx,
		schema.SubjectOpt(b.OrdersTopic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewOrdersProducer(
		kafka.ProducerClientOpt(app.ctx, kafka.ClientConfig{
			SeedBrokers: b.SeedBrokers,
			Topic:       b.OrdersTopic,
			TLS:         tlsConfig,
		}),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.producer = &producer
}

func (app *App) brokerTLS() (*tls.Config, error) {
	t := app.cfg.Broker.TLS
	if t.CAFile == "" {
		return nil, nil
	}
	return adapter.MakeTLSConfig(t.CAFile, t.CertFile, t.KeyFile)
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	products, err := app.loadCatalog()
	if err != nil {
		app.fallDown(op, err)
	}
	app.service.catalog = service.NewCatalog(products)
	app.service.pricing = service.NewPricing(app.cfg.PricingRule())

	repo := storage.NewCartRepository(
		app.outbound.slot, app.service.catalog, app.cfg.Cart.Storage.Key,
	)
	cart, err := service.NewCartStore(app.ctx, service.WithCartPersister(repo))
	if err != nil {
		app.fallDown(op, err)
	}
	app.service.cart = cart

	opts := []service.CheckoutOpt{
		service.CheckoutCartOpt(cart),
		service.CheckoutPricerOpt(app.service.pricing),
		service.CheckoutDelayOpt(app.cfg.Checkout.Delay),
	}
	if p := app.outbound.producer; p != nil {
		opts = append(opts, service.CheckoutPublisherOpt(p))
	}
	if m := app.outbound.metrics; m != nil {
		opts = append(opts, service.CheckoutObserverOpt(m))
		m.ObserveCart(cart.Snapshot())
		app.unsubscribe = m.Subscribe(cart)
	}

	checkout, err := service.NewCheckout(opts...)
	if err != nil {
		app.fallDown(op, err)
	}
	app.service.checkout = checkout
}

func (app *App) loadCatalog() (*catalog.Static, error) {
	if app.cfg.Catalog.File == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(app.cfg.Catalog.File)
}

func (app *App) initInboundAdapters() {
	s := app.service

	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, s.catalog)
	httphandler.RegisterCart(mux, s.cart, s.catalog, s.pricing)
	httphandler.RegisterCheckout(mux, s.cart, s.checkout)
	if m := app.outbound.metrics; m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	app.handler = httphandler.LogRequests(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTP.Addr, app.handler, app.cfg.HTTP.HandlerTimeout,
	)
}

// Handler is the routed API without the server timeout.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.unsubscribe()
	if p := app.outbound.producer; p != nil {
		p.Close()
	}
	if err := app.outbound.slot.Close(); err != nil {
		slog.Error("failed to close cart storage", "err", err)
	}

	slog.Info("application is closed")
}

func storageOptions(cfg config.Config) storage.Options {
	s := cfg.Cart.Storage
	return storage.Options{
		Driver: s.Driver,
		Dir:    s.Dir,
		DSN:    s.DSN,
		Redis: storage.RedisOptions{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			TTL:      s.Redis.TTL,
		},
		S3: storage.S3Options{
			Bucket:          s.S3.Bucket,
			Region:          s.S3.Region,
			Endpoint:        s.S3.Endpoint,
			PathStyle:       s.S3.PathStyle,
			Prefix:          s.S3.Prefix,
			AccessKeyID:     s.S3.AccessKeyID,
			SecretAccessKey: s.S3.SecretAccessKey,
		},
		Ping: storage.DefaultPingPolicy(),
	}
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}

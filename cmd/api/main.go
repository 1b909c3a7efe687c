package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudclutches/storefront/internal/auth"
	"github.com/cloudclutches/storefront/internal/catalog"
	"github.com/cloudclutches/storefront/internal/config"
	"github.com/cloudclutches/storefront/internal/httpx"
	kafkax "github.com/cloudclutches/storefront/internal/kafka"
	"github.com/cloudclutches/storefront/internal/orders"
	"github.com/cloudclutches/storefront/internal/postgres"
	"github.com/cloudclutches/storefront/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	policy, err := orders.ParsePolicy(cfg.StatusPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}

	users := &auth.UserRepo{DB: db}
	if created, err := auth.SeedAdmin(ctx, users, cfg.AdminUsername, cfg.AdminPassword, cfg.Production()); err != nil {
		log.Fatalf("seed admin: %v", err)
	} else if created {
		log.Printf("seeded admin user %s", cfg.AdminUsername)
	}
	products := &catalog.Repo{DB: db}
	if n, err := catalog.SeedIfEmpty(ctx, products); err != nil {
		log.Fatalf("seed products: %v", err)
	} else if n > 0 {
		log.Printf("seeded %d products", n)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, or nothing when no brokers are configured
	var pub kafkax.Publisher = kafkax.Discard{}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		pub = prod
	} else {
		log.Println("KAFKA_BROKERS empty, order events disabled")
	}

	// Handlers
	router := httpx.NewRouter(cfg.CORSOrigins)
	ah := &httpx.AuthHandler{
		Auth: &auth.Service{
			Users:    users,
			Sessions: &auth.RedisSessions{RDB: rdb, TTL: cfg.SessionTTL},
		},
		Cookies: auth.Cookies{Production: cfg.Production(), TTL: cfg.SessionTTL},
		Timeout: cfg.DBTimeout,
	}
	ah.Register(router)
	ph := &httpx.ProductsHandler{Store: products, Timeout: cfg.DBTimeout}
	ph.Register(router, ah.RequireAuth)
	oh := &httpx.OrdersHandler{
		Store:    &orders.Repo{DB: db, Policy: policy},
		History:  &orders.HistoryRepo{DB: db},
		Producer: pub,
		Redis:    rdb,
		Service:  cfg.ServiceName,
		Timeout:  cfg.DBTimeout,
	}
	oh.Register(router, ah.RequireAuth)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s (status policy %s)", cfg.HTTPAddr, cfg.StatusPolicy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
	cancel()
}

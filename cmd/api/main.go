package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/makolahq/makola-backend/internal/modules/auth"
	"github.com/makolahq/makola-backend/internal/modules/catalog"
	"github.com/makolahq/makola-backend/internal/modules/currency"
	"github.com/makolahq/makola-backend/internal/modules/inventory"
	"github.com/makolahq/makola-backend/internal/modules/notification"
	"github.com/makolahq/makola-backend/internal/modules/order"
	"github.com/makolahq/makola-backend/internal/modules/payment"
	"github.com/makolahq/makola-backend/internal/modules/user"
	"github.com/makolahq/makola-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Catalog & Inventory ─────────────────────────────────
	converter := currency.NewStaticConverter()

	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService, converter).RegisterRoutes(router)

	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ── Notifications (fire-and-forget) ─────────────────────
	var notifier order.Notifier
	var kafkaNotifier *notification.KafkaNotifier
	if brokers := splitCSV(os.Getenv("KAFKA_BROKERS")); len(brokers) > 0 {
		kafkaNotifier = notification.NewKafkaNotifier(brokers, 1024)
		kafkaNotifier.Start(ctx)
		notifier = kafkaNotifier
	} else {
		notifier = notification.NewLogNotifier()
	}

	// ── Payments (best-effort settlement) ───────────────────
	gateways := payment.GatewayRegistry{
		payment.ProviderCard: payment.NewCardGateway(
			os.Getenv("CARD_API_KEY"),
			os.Getenv("CARD_BASE_URL"),
		),
		payment.ProviderMobileMoney: payment.NewMobileMoneyGateway(
			os.Getenv("MOMO_API_KEY"),
			os.Getenv("MOMO_API_SECRET"),
			os.Getenv("MOMO_BASE_URL"),
		),
		payment.ProviderCOD: payment.NewCODGateway(),
	}
	payments := payment.NewDispatcher(gateways, "USD")

	// ── Orders & Checkout ───────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)

	var trackingCache *order.TrackingCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redisx.New(addr)
		defer rdb.Close()
		trackingCache = order.NewTrackingCache(rdb, 10*time.Minute)
	}

	factory := order.NewFactory(order.NewTrackingGenerator(orderRepo))
	orderService := order.NewService(orderRepo, catalogService, inventoryService, factory, notifier, payments, trackingCache)
	order.NewHandler(orderService).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		fmt.Printf("Makola API server starting on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Stop the notifier last so in-flight order events still get published.
	cancel()
	if kafkaNotifier != nil {
		kafkaNotifier.WaitClosed()
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

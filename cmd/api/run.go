package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaikfardeenhussain/fixroute/internal/billing/gateway"
	billinghandler "github.com/shaikfardeenhussain/fixroute/internal/billing/handler"
	billingrepo "github.com/shaikfardeenhussain/fixroute/internal/billing/repository"
	billingservice "github.com/shaikfardeenhussain/fixroute/internal/billing/service"
	bookinghandler "github.com/shaikfardeenhussain/fixroute/internal/booking/handler"
	bookingrepo "github.com/shaikfardeenhussain/fixroute/internal/booking/repository"
	"github.com/shaikfardeenhussain/fixroute/internal/booking/rmq"
	bookingservice "github.com/shaikfardeenhussain/fixroute/internal/booking/service"
	"github.com/shaikfardeenhussain/fixroute/internal/common/auth"
	"github.com/shaikfardeenhussain/fixroute/internal/common/config"
	"github.com/shaikfardeenhussain/fixroute/internal/common/db"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/metrics"
	"github.com/shaikfardeenhussain/fixroute/internal/common/mq"
	"github.com/shaikfardeenhussain/fixroute/internal/common/websocket"
	dispatchclient "github.com/shaikfardeenhussain/fixroute/internal/dispatch/client"
	dispatchhandler "github.com/shaikfardeenhussain/fixroute/internal/dispatch/handler"
	dispatchservice "github.com/shaikfardeenhussain/fixroute/internal/dispatch/service"
	"github.com/shaikfardeenhussain/fixroute/internal/identity"
	trackinghandler "github.com/shaikfardeenhussain/fixroute/internal/tracking/handler"
	trackingservice "github.com/shaikfardeenhussain/fixroute/internal/tracking/service"
	workerhandler "github.com/shaikfardeenhussain/fixroute/internal/worker/handler"
	workerrepo "github.com/shaikfardeenhussain/fixroute/internal/worker/repository"
	workerservice "github.com/shaikfardeenhussain/fixroute/internal/worker/service"
)

// Run wires every component from explicit handles and serves the API.
// All process-wide resources are constructed once here and injected down;
// nothing hides behind package state.
func Run(cfg *config.Config, log logger.Logger, pg *db.Postgres, rabbit *mq.RabbitMQ) error {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	events, err := rmq.NewPublisher(rabbit, cfg.RabbitMQ.Exchange, log)
	if err != nil {
		return err
	}

	authManager := auth.NewManager(cfg.Auth.JWTSecret)
	hub := websocket.NewHub()

	ids := identity.NewStore(pg.Pool)
	workers := workerrepo.NewServicemanRepository(pg.Pool)
	bookings := bookingrepo.NewBookingRepository(pg.Pool)
	bills := billingrepo.NewBillRepository(pg.Pool)

	ranking := dispatchclient.NewRankingClient(cfg.Ranking.URL, cfg.RankingTimeout())
	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.GatewayTimeout())

	recommendSvc := dispatchservice.NewRecommendService(workers, ranking, log)
	lifecycleSvc := bookingservice.NewLifecycleService(bookings, workers, ids, events, m, log)
	workerSvc := workerservice.NewServicemanService(workers)
	relaySvc := trackingservice.NewRelayService(bookings, hub, log)
	billingSvc := billingservice.NewBillingService(bills, bookings, gw, events, m, log)

	recommendHandler := dispatchhandler.NewRecommendHandler(recommendSvc)
	bookingHandler := bookinghandler.NewBookingHandler(lifecycleSvc)
	smHandler := workerhandler.NewServicemanHandler(workerSvc)
	trackHandler := trackinghandler.NewTrackingHandler(relaySvc, hub, log)
	billHandler := billinghandler.NewBillingHandler(billingSvc)

	mux := http.NewServeMux()
	requester := func(h http.HandlerFunc) http.Handler {
		return authManager.Middleware(auth.RequireKind(auth.KindRequester, h))
	}
	worker := func(h http.HandlerFunc) http.Handler {
		return authManager.Middleware(auth.RequireKind(auth.KindWorker, h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authManager.Middleware(h)
	}

	mux.Handle("/api/recommend", requester(methodOnly(http.MethodPost, recommendHandler.Recommend)))

	mux.Handle("/api/bookings", authManager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			auth.RequireKind(auth.KindRequester, bookingHandler.CreateBooking)(w, r)
		case http.MethodGet:
			auth.RequireKind(auth.KindRequester, bookingHandler.ListUserBookings)(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/api/serviceman/status", worker(methodOnly(http.MethodPost, bookingHandler.UpdateStatus)))
	mux.Handle("/api/serviceman/requests", worker(methodOnly(http.MethodGet, bookingHandler.ListWorkerRequests)))
	mux.Handle("/api/serviceman/accepted", worker(methodOnly(http.MethodGet, bookingHandler.ListWorkerAccepted)))

	mux.Handle("/api/serviceman/location", worker(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			smHandler.UpdateLocation(w, r)
		case http.MethodDelete:
			smHandler.ClearLocation(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/api/serviceman/live-location", worker(methodOnly(http.MethodPost, trackHandler.PushLocation)))
	mux.HandleFunc("/api/live-tracking/", trackHandler.ReadTracking)
	mux.HandleFunc("/ws/track/", trackHandler.TrackWS)

	mux.Handle("/api/bills", authManager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			auth.RequireKind(auth.KindWorker, billHandler.CreateBill)(w, r)
		case http.MethodGet:
			billHandler.ListBills(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/bills/", authed(methodOnly(http.MethodGet, billHandler.GetBill)))

	mux.Handle("/api/payments", requester(methodOnly(http.MethodPost, billHandler.CreatePayment)))
	mux.Handle("/api/payments/verify", requester(methodOnly(http.MethodPost, billHandler.VerifyPayment)))

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Infof("fixroute api listening on %s", cfg.HTTP.Addr)
	return http.ListenAndServe(cfg.HTTP.Addr, mux)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

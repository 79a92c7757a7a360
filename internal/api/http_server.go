package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"courtside/internal/config"
	"courtside/internal/domain"
	"courtside/internal/export"
	"courtside/internal/metrics"
	"courtside/internal/models"
)

// HTTPServer is the JSON API in front of the booking core.
type HTTPServer struct {
	cfg      config.APIConfig
	booking  domain.BookingService
	catalog  domain.CatalogService
	auth     *HTTPAuth
	validate *validator.Validate
	logger   zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(cfg config.APIConfig, booking domain.BookingService, catalog domain.CatalogService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		booking:  booking,
		catalog:  catalog,
		auth:     NewHTTPAuth(cfg),
		validate: validator.New(),
		logger:   logger.With().Str("component", "http").Logger(),
	}

	router := httprouter.New()
	router.POST("/api/v1/bookings", srv.handleCreateBooking)
	router.GET("/api/v1/bookings", srv.handleListBookings)
	// price and availability share the wildcard segment with reservation ids;
	// handleBookingAction dispatches on the value.
	router.POST("/api/v1/bookings/:id", srv.handleBookingAction)
	router.POST("/api/v1/bookings/:id/cancel", srv.handleCancelBooking)
	router.POST("/api/v1/waitlist", srv.handleJoinWaitlist)
	router.GET("/api/v1/waitlist", srv.handleListWaitlist)
	router.GET("/api/v1/notifications", srv.handleListNotifications)
	router.POST("/api/v1/notifications/:id/read", srv.handleMarkNotificationRead)
	router.GET("/api/v1/resources", srv.handleResources)
	router.GET("/api/v1/admin/export", srv.handleExport)
	router.GET("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(router))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeSlot(w, r)
	if !ok {
		return
	}

	res, err := s.booking.CreateReservation(r.Context(), userID, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

func (s *HTTPServer) handleBookingAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("id") {
	case "price":
		s.handleQuote(w, r)
	case "availability":
		s.handleAvailability(w, r)
	default:
		writeError(w, http.StatusNotFound, KindNotFound, "not found")
	}
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSlot(w, r)
	if !ok {
		return
	}

	total, err := s.booking.Quote(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_price": total})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSlot(w, r)
	if !ok {
		return
	}

	available, err := s.booking.CourtAvailable(r.Context(), req.CourtID, req.Date, req.StartMin, req.EndMin)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid reservation id")
		return
	}

	notified, err := s.booking.CancelReservation(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true, "notified": notified})
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	reservations, err := s.booking.ListReservations(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]reservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toReservationResponse(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}

func (s *HTTPServer) handleJoinWaitlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeSlot(w, r)
	if !ok {
		return
	}

	entry, err := s.booking.JoinWaitlist(r.Context(), userID, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWaitlistResponse(entry))
}

func (s *HTTPServer) handleListWaitlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	entries, err := s.booking.ListWaitlist(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]waitlistResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toWaitlistResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"waitlist": out})
}

func (s *HTTPServer) handleListNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	notifications, err := s.booking.ListNotifications(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *HTTPServer) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid notification id")
		return
	}

	if err := s.booking.MarkNotificationRead(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"read": true})
}

func (s *HTTPServer) handleResources(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resources, err := s.catalog.Resources(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, err := time.Parse(models.DateFormat, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid from date; expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse(models.DateFormat, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid to date; expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, KindValidation, "to date precedes from date")
		return
	}

	reservations, err := s.catalog.ReservationsByDateRange(r.Context(), from, to)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	file, err := export.ReservationsWorkbook(reservations)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=reservations_%s_%s.xlsx", from.Format(models.DateFormat), to.Format(models.DateFormat)))
	if err := file.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("Failed to stream export")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeSlot reads, decodes and validates the shared slot payload.
func (s *HTTPServer) decodeSlot(w http.ResponseWriter, r *http.Request) (models.SlotRequest, bool) {
	var payload slotPayload
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid JSON body")
		return models.SlotRequest{}, false
	}
	if err := s.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
		return models.SlotRequest{}, false
	}
	req, err := payload.toSlotRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
		return models.SlotRequest{}, false
	}
	return req, true
}

func (s *HTTPServer) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := s.auth.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, KindValidation,
			fmt.Sprintf("missing %s header", s.cfg.Auth.HeaderUserID))
		return "", false
	}
	return userID, true
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	statusCode, kind := classifyError(err)
	if kind == KindInternal {
		s.logger.Error().Err(err).Msg("Request failed")
		writeError(w, statusCode, kind, "internal error")
		return
	}
	writeError(w, statusCode, kind, err.Error())
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.IncHTTP(r.URL.Path, strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(w, statusCode, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/notification"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/domain/project"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/domain/user"
	"github.com/wessam/partnerledger/internal/repository"
)

const dateLayout = "2006-01-02"

// Services groups the domain services the HTTP layer dispatches to.
type Services struct {
	Projects      *project.Service
	Periods       *period.Service
	Transactions  *transaction.Service
	Audit         *audit.Service
	Notifications *notification.Service
	Users         *user.Service
	Partners      repository.PartnerRepository
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the API router. Everything under /api except login
// requires a bearer token; mutating period and admin routes require the
// ADMIN role.
func NewRouter(svc Services, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	srv := &Server{svc: svc, logger: logger}

	auth := AuthMiddleware(srv.svc.Users)
	admin := RequireAdmin(srv.svc.Audit, logger)

	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", srv.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Post("/auth/logout", srv.handleLogout)

			r.Get("/projects", srv.handleListProjects)
			r.Get("/projects/{id}", srv.handleGetProject)
			r.Get("/projects/{id}/periods", srv.handleListPeriods)
			r.Get("/projects/{id}/period", srv.handleOpenPeriod)
			r.Get("/projects/{id}/transactions", srv.handleListProjectTransactions)
			r.Get("/projects/{id}/events", srv.handleListEvents)

			r.Get("/periods/{id}", srv.handleGetPeriod)
			r.Get("/periods/{id}/transactions", srv.handleListPeriodTransactions)

			r.Post("/transactions", srv.handleCreateTransaction)
			r.Get("/transactions/{id}", srv.handleGetTransaction)
			r.Put("/transactions/{id}", srv.handleUpdateTransaction)
			r.Delete("/transactions/{id}", srv.handleDeleteTransaction)

			r.Get("/notifications", srv.handleListNotifications)
			r.Get("/notifications/{id}", srv.handleGetNotification)
			r.Post("/notifications/{id}/dispatch", srv.handleDispatchNotification)

			r.Get("/partners", srv.handleListPartners)

			r.Group(func(r chi.Router) {
				r.Use(admin)

				r.Post("/projects", srv.handleCreateProject)
				r.Post("/projects/{id}/bootstrap", srv.handleBootstrap)
				r.Post("/projects/{id}/reset", srv.handleReset)

				r.Post("/periods/{id}/close", srv.handleClosePeriod)
				r.Post("/periods/{id}/name", srv.handleNamePeriod)

				r.Put("/partners/{id}", srv.handleUpdatePartner)

				r.Get("/users", srv.handleListUsers)
				r.Post("/users", srv.handleCreateUser)
				r.Get("/users/{id}", srv.handleGetUser)
				r.Put("/users/{id}", srv.handleUpdateUser)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// writeJSON writes v as the response body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Warn("response encoding failed", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses. State-precondition
// failures are conflicts; reconciliation failures are unprocessable.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		statusErr     *period.StatusError
		imbalanceErr  *period.ImbalanceError
		integrityErr  *period.IntegrityError
		validationErr *transaction.ValidationError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, period.ErrPeriodNotFound),
		errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &statusErr),
		errors.Is(err, period.ErrAlreadyClosed),
		errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
	case errors.As(err, &imbalanceErr), errors.As(err, &integrityErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &validationErr),
		errors.Is(err, transaction.ErrInvalidInput),
		errors.Is(err, period.ErrEmptyName),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, notification.ErrInvalidInput),
		errors.Is(err, user.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrInvalidToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError && s.logger != nil {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// --- auth ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	u, token, err := s.svc.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := TokenFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := s.svc.Users.Logout(r.Context(), token); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- projects ---

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	proj, err := s.svc.Projects.Create(r.Context(), project.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Every project starts with an open period.
	if _, err := s.svc.Periods.Bootstrap(r.Context(), proj.ID); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Periods.Bootstrap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Periods.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// --- periods ---

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Periods.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.svc.Periods.ListForProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleOpenPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Periods.OpenForProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Periods.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNamePeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.svc.Periods.Name(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// --- transactions ---

type transactionRequest struct {
	PeriodID    string  `json:"period_id"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	PaidBy      *string `json:"paid_by"`
	FromPartner *string `json:"from_partner"`
	ToPartner   *string `json:"to_partner"`
}

func parseOptionalPartner(s *string) *partner.ID {
	if s == nil || *s == "" {
		return nil
	}
	id := partner.ID(*s)
	return &id
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !s.decode(w, r, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		s.writeError(w, &transaction.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		s.writeError(w, &transaction.ValidationError{Field: "amount", Reason: "must be a decimal number"})
		return
	}

	var createdBy *string
	if u, ok := UserFromContext(r.Context()); ok {
		createdBy = &u.ID
	}

	tx, err := s.svc.Transactions.Create(r.Context(), transaction.CreateRequest{
		PeriodID:    req.PeriodID,
		Type:        transaction.Type(req.Type),
		Date:        date,
		Description: req.Description,
		Amount:      amount,
		PaidBy:      parseOptionalPartner(req.PaidBy),
		FromPartner: parseOptionalPartner(req.FromPartner),
		ToPartner:   parseOptionalPartner(req.ToPartner),
		CreatedBy:   createdBy,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Delivery happens in the background; a failed send never fails
	// the transaction.
	if err := s.svc.Notifications.DispatchPendingForTransaction(r.Context(), tx.ID); err != nil && s.logger != nil {
		s.logger.Warn("notification dispatch failed", "transaction", tx.ID, "error", err)
	}

	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        *string `json:"type"`
		Date        *string `json:"date"`
		Description *string `json:"description"`
		Amount      *string `json:"amount"`
		PaidBy      *string `json:"paid_by"`
		FromPartner *string `json:"from_partner"`
		ToPartner   *string `json:"to_partner"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	update := transaction.UpdateRequest{
		ID:          chi.URLParam(r, "id"),
		PaidBy:      parseOptionalPartner(req.PaidBy),
		FromPartner: parseOptionalPartner(req.FromPartner),
		ToPartner:   parseOptionalPartner(req.ToPartner),
	}
	if req.Type != nil {
		t := transaction.Type(*req.Type)
		update.Type = &t
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			s.writeError(w, &transaction.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
			return
		}
		update.Date = &date
	}
	update.Description = req.Description
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			s.writeError(w, &transaction.ValidationError{Field: "amount", Reason: "must be a decimal number"})
			return
		}
		update.Amount = &amount
	}

	tx, err := s.svc.Transactions.Update(r.Context(), update)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPeriodTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.ListForPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleListProjectTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.ListForProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txs)
}

// --- audit ---

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	opts := audit.ListOptions{ProjectID: chi.URLParam(r, "id")}
	if v := r.URL.Query().Get("period_id"); v != "" {
		opts.PeriodID = &v
	}
	if v := r.URL.Query().Get("transaction_id"); v != "" {
		opts.TransactionID = &v
	}
	if v := r.URL.Query().Get("type"); v != "" {
		t := audit.EventType(v)
		opts.Type = &t
	}

	events, err := s.svc.Audit.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

// --- notifications ---

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Notifications.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Notifications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDispatchNotification(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Notifications.Dispatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

// --- partners ---

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := s.svc.Partners.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, partners)
}

func (s *Server) handleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	id := partner.ID(chi.URLParam(r, "id"))
	if !partner.Valid(id) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown partner"})
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Phone       *string `json:"phone"`
		Email       *string `json:"email"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.svc.Partners.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	p.UpdatedAt = time.Now()

	if err := s.svc.Partners.Update(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// --- users ---

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Role        string `json:"role"`
		Username    string `json:"username"`
		Password    string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.svc.Users.Create(r.Context(), user.CreateRequest{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        user.Role(req.Role),
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName *string `json:"display_name"`
		Email       *string `json:"email"`
		Phone       *string `json:"phone"`
		Role        *string `json:"role"`
		Password    *string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	update := user.UpdateRequest{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
	}
	if req.Role != nil {
		role := user.Role(*req.Role)
		update.Role = &role
	}

	u, err := s.svc.Users.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/auth"
	"github.com/pennywise-app/pennywise/internal/platform/httpx"
	"github.com/pennywise-app/pennywise/internal/shared"
)

// Handler wires the HTTP endpoints of the user service.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	jwtSecret []byte
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, jwtSecret []byte) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		jwtSecret: jwtSecret,
	}
}

// MountRoutes registers the user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.jwtSecret))
		r.Get("/users/me", h.handleGetMe)
		r.Patch("/users/me", h.handleUpdateMe)
		r.Delete("/users/me", h.handleDeleteMe)
		r.Patch("/users/me/profile", h.handleUpdateProfile)
		r.Get("/users/me/stats", h.handleGetStats)
	})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=100"`
	Age      *int   `json:"age"`
}

type authResponse struct {
	User  *UserWithProfile `json:"user"`
	Token string           `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.structErrors(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
	})
	if err != nil {
		h.respondServiceError(w, "register", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.structErrors(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserWithProfile(r.Context(), shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Age      *int    `json:"age"`
	IsActive *bool   `json:"isActive"`
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.structErrors(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), shared.UserIDFromContext(r.Context()), UpdateUserParams{
		Name:     req.Name,
		Age:      req.Age,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.respondServiceError(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	MonthlyIncome  *decimal.Decimal `json:"monthlyIncome"`
	SpendingLimit  *decimal.Decimal `json:"spendingLimit"`
	FinancialGoals *string          `json:"financialGoals" validate:"omitempty,max=500"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.structErrors(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), shared.UserIDFromContext(r.Context()), UpdateProfileParams{
		MonthlyIncome:  req.MonthlyIncome,
		SpendingLimit:  req.SpendingLimit,
		FinancialGoals: req.FinancialGoals,
	})
	if err != nil {
		h.respondServiceError(w, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, "get stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), shared.UserIDFromContext(r.Context())); err != nil {
		h.respondServiceError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// structErrors converts validator failures into the domain error shape.
func (h *Handler) structErrors(req any) error {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	verr := &shared.ValidationError{Fields: make(map[string]string)}
	for _, fieldErr := range err.(validator.ValidationErrors) {
		verr.Fields[jsonField(fieldErr.Field())] = "failed " + fieldErr.Tag() + " validation"
	}
	return verr
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if _, ok := shared.AsValidation(err); !ok {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func jsonField(field string) string {
	if field == "" {
		return field
	}
	return string(field[0]|0x20) + field[1:]
}

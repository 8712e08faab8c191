// Package handler provides HTTP request handlers for the application.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/draft"
	"github.com/atendo/crm-campaigns/internal/middleware"
	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/pipeline"
	"github.com/atendo/crm-campaigns/internal/scheduler"
	"github.com/atendo/crm-campaigns/internal/service"
)

const (
	errorCodeValidation              = "VALIDATION_ERROR"
	errorCodeNotFound                = "NOT_FOUND"
	errorCodeConflict                = "CONFLICT"
	errorCodeExecutorFault           = "EXECUTOR_FAULT"
	errorCodeBadRequest              = "BAD_REQUEST"
	errorCodeSchedulerAlreadyRunning = "SCHEDULER_ALREADY_RUNNING"
	errorCodeSchedulerNotRunning     = "SCHEDULER_NOT_RUNNING"
)

const (
	errorMessageInvalidBody             = "Invalid request body"
	errorMessageSchedulerAlreadyRunning = "Scheduler is already running"
	errorMessageSchedulerNotRunning     = "Scheduler is not running"
	errorMessageFailedToStartScheduler  = "Failed to start scheduler"
	errorMessageFailedToStopScheduler   = "Failed to stop scheduler"
)

const (
	schedulerMessageStarted = "Scheduler started successfully"
	schedulerMessageStopped = "Scheduler stopped successfully"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes mounts every API operation. Owner scoping applies to everything
// except the health endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner)

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", h.CreateContact)
			r.Get("/", h.ListContacts)
			r.Get("/stages", h.StageBoard)
			r.Get("/{contactID}", h.GetContact)
			r.Put("/{contactID}", h.UpdateContact)
			r.Put("/{contactID}/stage", h.TransitionStage)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", h.CreateTemplate)
			r.Get("/", h.ListTemplates)
			r.Get("/{templateID}", h.GetTemplate)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.PlanCampaign)
			r.Get("/", h.ListCampaigns)
			r.Get("/{campaignID}", h.GetCampaign)
			r.Post("/{campaignID}/trigger", h.TriggerCampaign)
			r.Post("/{campaignID}/cancel", h.CancelCampaign)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.GenerateDraft)
			r.Get("/providers", h.ListDraftProviders)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Put("/", h.UpdateProfile)
		})

		r.Route("/scheduler", func(r chi.Router) {
			r.Post("/start", h.StartScheduler)
			r.Post("/stop", h.StopScheduler)
		})
	})

	return r
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	contact, err := h.service.Contact.Create(ownerID, service.CreateContactInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Tags:   req.Tags,
		Status: models.ContactStatus(req.Status),
		Stage:  models.Stage(req.Stage),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, contact)
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	contacts, err := h.service.Contact.List(ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, contacts)
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	contactID := chi.URLParam(r, "contactID")

	contact, err := h.service.Contact.Get(ownerID, contactID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, contact)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	contactID := chi.URLParam(r, "contactID")

	var req updateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	contact, err := h.service.Contact.Update(ownerID, contactID, service.UpdateContactInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Tags:   req.Tags,
		Status: models.ContactStatus(req.Status),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, contact)
}

func (h *Handler) TransitionStage(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	contactID := chi.URLParam(r, "contactID")

	var req transitionStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	if err := h.service.Contact.TransitionStage(ownerID, contactID, models.Stage(req.Stage)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

func (h *Handler) StageBoard(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	board, err := h.service.Contact.StageBoard(ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, stageBoardResponse{Stages: board})
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	tpl, err := h.service.Template.Create(ownerID, service.CreateTemplateInput{
		Name:     req.Name,
		Body:     req.Body,
		Category: req.Category,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tpl)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	templates, err := h.service.Template.List(ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, templates)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	templateID := chi.URLParam(r, "templateID")

	tpl, err := h.service.Template.Get(ownerID, templateID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, tpl)
}

func (h *Handler) PlanCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	var req planCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	campaign, err := h.service.Campaign.Plan(ownerID, service.PlanCampaignInput{
		Name: req.Name,
		Composition: service.MessageComposition{
			Source:     service.CompositionSource(req.Composition.Source),
			TemplateID: req.Composition.TemplateID,
			Body:       req.Composition.Body,
		},
		ContactIDs:  req.ContactIDs,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, campaign)
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	campaigns, err := h.service.Campaign.List(ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, campaigns)
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	campaignID := chi.URLParam(r, "campaignID")

	details, err := h.service.Campaign.Get(ownerID, campaignID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, campaignDetailsResponse{
		Campaign:   details.Campaign,
		Deliveries: details.Deliveries,
	})
}

func (h *Handler) TriggerCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	campaignID := chi.URLParam(r, "campaignID")

	if err := h.service.Executor.Trigger(r.Context(), ownerID, campaignID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "completed"})
}

func (h *Handler) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	campaignID := chi.URLParam(r, "campaignID")

	if err := h.service.Campaign.Cancel(ownerID, campaignID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

func (h *Handler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	var req generateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	text, err := h.service.Draft.Generate(r.Context(), ownerID, req.Provider, req.Prompt)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, draftResponse{
		Provider: req.Provider,
		Text:     text,
	})
}

func (h *Handler) ListDraftProviders(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, providersResponse{Providers: h.service.Draft.Providers()})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	profile, err := h.service.Profile.Get(ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeBadRequest, errorMessageInvalidBody)
		return
	}

	profile, err := h.service.Profile.Update(ownerID, service.UpdateProfileInput{
		AttendantName:  req.AttendantName,
		DepartmentName: req.DepartmentName,
		Signature:      req.Signature,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, profile)
}

func (h *Handler) StartScheduler(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.service.Scheduler.Start(); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerAlreadyRunning) {
			h.sendError(w, r, http.StatusConflict, errorCodeSchedulerAlreadyRunning, errorMessageSchedulerAlreadyRunning)
			return
		}

		h.logger.Error("Failed to start scheduler",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStartScheduler)
		return
	}

	render.JSON(w, r, schedulerResponse{
		Status:  "started",
		Message: schedulerMessageStarted,
	})
}

func (h *Handler) StopScheduler(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.service.Scheduler.Stop(); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.sendError(w, r, http.StatusConflict, errorCodeSchedulerNotRunning, errorMessageSchedulerNotRunning)
			return
		}

		h.logger.Error("Failed to stop scheduler",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStopScheduler)
		return
	}

	render.JSON(w, r, schedulerResponse{
		Status:  "stopped",
		Message: schedulerMessageStopped,
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth()

	response := healthResponse{
		Status:               health.Status,
		SchedulerStatus:      health.SchedulerStatus,
		DatabaseStatus:       health.DatabaseStatus,
		RedisStatus:          health.RedisStatus,
		CircuitBreakerState:  string(health.CircuitBreakerState),
		CircuitBreakerStatus: health.CircuitBreakerStatus,
		Timestamp:            time.Now(),
	}

	if health.Status == service.HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response)
}

// handleServiceError maps service errors onto HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError

	switch {
	case errors.As(err, &vErr):
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, vErr.Error())
	case errors.Is(err, service.ErrNotFound):
		h.sendError(w, r, http.StatusNotFound, errorCodeNotFound, err.Error())
	case errors.Is(err, pipeline.ErrUnknownStage):
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, err.Error())
	case errors.Is(err, draft.ErrEmptyPrompt):
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, err.Error())
	case errors.Is(err, draft.ErrUnknownProvider):
		h.sendError(w, r, http.StatusNotFound, errorCodeNotFound, err.Error())
	case errors.Is(err, service.ErrCampaignNotTriggerable),
		errors.Is(err, service.ErrCampaignNotCancellable):
		h.sendError(w, r, http.StatusConflict, errorCodeConflict, err.Error())
	case errors.Is(err, service.ErrExecutorFault):
		h.sendError(w, r, http.StatusBadGateway, errorCodeExecutorFault, err.Error())
	default:
		requestID := middleware.GetRequestID(r.Context())
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, middleware.ErrorMessageInternal)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, errorResponse{
		Error:     errorCode,
		Message:   message,
		Timestamp: time.Now(),
	})
}

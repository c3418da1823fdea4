package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/app"
	"wellbeing-weather-service/internal/domain"
)

// userHeader carries the caller's identity; authentication happens upstream.
const userHeader = "X-User-ID"

// API serves the REST surface over the survey, alert and team use cases.
type API struct {
	surveys  *app.SurveyService
	alerts   *app.AlertService
	team     *app.TeamService
	validate *validator.Validate
}

func NewAPI(surveys *app.SurveyService, alertService *app.AlertService, team *app.TeamService) *API {
	return &API{
		surveys:  surveys,
		alerts:   alertService,
		team:     team,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register mounts every API route on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questions", a.listQuestions)
	mux.HandleFunc("POST /api/surveys", a.withViewer(a.submitSurvey))
	mux.HandleFunc("GET /api/users/{id}/scores", a.withViewer(a.userScores))

	mux.HandleFunc("GET /api/alerts", a.withViewer(a.listAlerts))
	mux.HandleFunc("POST /api/alerts", a.publishAlert)
	mux.HandleFunc("GET /api/alerts/counts", a.withViewer(a.alertCounts))
	mux.HandleFunc("GET /api/alerts/types", a.alertTypes)
	mux.HandleFunc("POST /api/alerts/read-all", a.withViewer(a.markAllRead))
	mux.HandleFunc("POST /api/alerts/{id}/read", a.withViewer(a.markRead))

	mux.HandleFunc("GET /api/team/overall", a.withViewer(a.teamOverall))
	mux.HandleFunc("GET /api/team/departments", a.withViewer(a.teamDepartments))
	mux.HandleFunc("GET /api/team/members", a.withViewer(a.teamMembers))
}

type viewerHandler func(w http.ResponseWriter, r *http.Request, viewerID string)

func (a *API) withViewer(next viewerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID := strings.TrimSpace(r.Header.Get(userHeader))
		if viewerID == "" {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "missing " + userHeader + " header"})
			return
		}
		next(w, r, viewerID)
	}
}

type responseDTO struct {
	QuestionID string `json:"questionId" validate:"required"`
	Score      int    `json:"score" validate:"min=1,max=5"`
}

type submitSurveyRequest struct {
	Date      string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Responses []responseDTO `json:"responses" validate:"required,min=1,dive"`
}

type publishAlertRequest struct {
	ID           string `json:"id"`
	UserID       string `json:"userId" validate:"required"`
	TargetUserID string `json:"targetUserId"`
	Type         string `json:"type" validate:"required"`
	Title        string `json:"title" validate:"required,max=200"`
	Message      string `json:"message" validate:"max=2000"`
}

type scoresResponse struct {
	UserID  string              `json:"userId"`
	Latest  *domain.DailyScore  `json:"latest"`
	History []domain.DailyScore `json:"history"`
}

type taxonomyResponse struct {
	Types      []alerts.AlertTypeConfig   `json:"types"`
	Categories []alerts.AlertCategoryInfo `json:"categories"`
}

type markAllResponse struct {
	Marked int `json:"marked"`
}

func (a *API) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.surveys.Questions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) submitSurvey(w http.ResponseWriter, r *http.Request, viewerID string) {
	var req submitSurveyRequest
	if !a.decode(w, r, &req) {
		return
	}
	var date time.Time
	if req.Date != "" {
		// Already checked by the datetime rule.
		date, _ = time.Parse(time.DateOnly, req.Date)
	}
	responses := make([]domain.QuestionResponse, 0, len(req.Responses))
	for _, resp := range req.Responses {
		responses = append(responses, domain.QuestionResponse{QuestionID: resp.QuestionID, Score: resp.Score})
	}

	sub, err := a.surveys.Submit(r.Context(), viewerID, date, responses)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (a *API) userScores(w http.ResponseWriter, r *http.Request, viewerID string) {
	userID := r.PathValue("id")
	// Scope first so unknown and out-of-scope ids look the same.
	ok, err := a.team.CanView(r.Context(), viewerID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, domain.ErrForbidden)
		return
	}
	history, err := a.surveys.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := scoresResponse{UserID: userID, History: history}
	if len(history) > 0 {
		out.Latest = &history[0]
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) listAlerts(w http.ResponseWriter, r *http.Request, viewerID string) {
	opts, page, perPage, err := parseAlertQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := a.alerts.List(r.Context(), viewerID, opts, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (a *API) publishAlert(w http.ResponseWriter, r *http.Request) {
	var req publishAlertRequest
	if !a.decode(w, r, &req) {
		return
	}
	alert := domain.Alert{
		ID:           req.ID,
		UserID:       req.UserID,
		TargetUserID: req.TargetUserID,
		Type:         domain.AlertType(req.Type),
		Title:        req.Title,
		Message:      req.Message,
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	batch := []domain.Alert{alert}
	if err := a.alerts.Publish(r.Context(), batch...); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch[0])
}

func (a *API) alertCounts(w http.ResponseWriter, r *http.Request, viewerID string) {
	counts, err := a.alerts.Counts(r.Context(), viewerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (a *API) alertTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, taxonomyResponse{Types: alerts.Types(), Categories: alerts.Categories()})
}

func (a *API) markRead(w http.ResponseWriter, r *http.Request, viewerID string) {
	result, err := a.alerts.MarkRead(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) markAllRead(w http.ResponseWriter, r *http.Request, viewerID string) {
	n, err := a.alerts.MarkAllRead(r.Context(), viewerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, markAllResponse{Marked: n})
}

func (a *API) teamOverall(w http.ResponseWriter, r *http.Request, viewerID string) {
	respond(w, r, func(ctx context.Context) (any, error) { return a.team.Overall(ctx, viewerID) })
}

func (a *API) teamDepartments(w http.ResponseWriter, r *http.Request, viewerID string) {
	respond(w, r, func(ctx context.Context) (any, error) { return a.team.Departments(ctx, viewerID) })
}

func (a *API) teamMembers(w http.ResponseWriter, r *http.Request, viewerID string) {
	respond(w, r, func(ctx context.Context) (any, error) { return a.team.Members(ctx, viewerID) })
}

func respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (any, error)) {
	out, err := fn(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, domain.NewValidationError("body", "invalid JSON: %v", err))
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			writeError(w, r, domain.NewValidationError(first.Namespace(), "failed %q rule", first.Tag()))
			return false
		}
		writeError(w, r, domain.NewValidationError("body", "%v", err))
		return false
	}
	return true
}

// parseAlertQuery reads ?unread=true&priority=1,3&page=2&perPage=20.
func parseAlertQuery(q url.Values) (alerts.FilterOptions, int, int, error) {
	var opts alerts.FilterOptions
	if raw := q.Get("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, 0, 0, domain.NewValidationError("unread", "not a boolean: %q", raw)
		}
		opts.UnreadOnly = unread
	}
	for _, raw := range q["priority"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			p, err := strconv.Atoi(part)
			if err != nil {
				return opts, 0, 0, domain.NewValidationError("priority", "not an integer: %q", part)
			}
			opts.Priorities = append(opts.Priorities, p)
		}
	}
	page, err := intParam(q, "page", 1)
	if err != nil {
		return opts, 0, 0, err
	}
	perPage, err := intParam(q, "perPage", alerts.DefaultPerPage)
	if err != nil {
		return opts, 0, 0, err
	}
	return opts, page, perPage, nil
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "not an integer: %q", raw)
	}
	return v, nil
}

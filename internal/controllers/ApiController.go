package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"

	apperrors "gamatrix/internal/errors"
	"gamatrix/internal/providers"
	"gamatrix/internal/query"
	"gamatrix/internal/services"
	"gamatrix/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const defaultUploadMaxSize = 64 << 20

type ApiController struct {
	logger  providers.Logger
	service services.CatalogServiceInterface
	cache   providers.CacheProviderInterface
	conf    *structures.Config
}

func NewApiController(logger providers.Logger, service services.CatalogServiceInterface, cache providers.CacheProviderInterface, conf *structures.Config) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
		conf:    conf,
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (ac *ApiController) respond(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Failed to encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, gson)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrValidation), apperrors.Is(err, apperrors.ErrInvalidSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (ac *ApiController) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ac.logger.Errorf(providers.TypeApp, "Request failed: %s", err)
		http.Error(w, "Internal Server Error", status)
		return
	}
	ac.respond(w, status, map[string]string{"error": err.Error()})
}

func userParam(values url.Values) (int, error) {
	raw := values.Get("user")
	if raw == "" {
		return 0, apperrors.NewValidationError("user", "user is required")
	}
	id, err := cast.ToIntE(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("user", fmt.Sprintf("invalid user id %q", raw))
	}
	return id, nil
}

// ParseCompareOptions reads comparison options from a query string.
// Repeated user and exclude_platform parameters are collected in order.
func ParseCompareOptions(values url.Values) (query.Options, error) {
	mode, err := query.ParseMode(values.Get("mode"))
	if err != nil {
		return query.Options{}, err
	}
	opts := query.Options{
		Mode:                mode,
		ExcludedPlatforms:   values["exclude_platform"],
		IncludeSinglePlayer: cast.ToBool(values.Get("include_single_player")),
		InstalledOnly:       cast.ToBool(values.Get("installed_only")),
		Exclusive:           cast.ToBool(values.Get("exclusive")),
		Randomize:           cast.ToBool(values.Get("randomize")),
	}
	for _, raw := range values["user"] {
		id, err := cast.ToIntE(raw)
		if err != nil || id <= 0 {
			return query.Options{}, apperrors.NewValidationError("user", fmt.Sprintf("invalid user id %q", raw))
		}
		if !slices.Contains(opts.TargetUsers, id) {
			opts.TargetUsers = append(opts.TargetUsers, id)
		}
	}
	return opts, opts.Validate()
}

// compareCacheKey is stable for reordered query strings since Encode
// sorts by parameter name.
func compareCacheKey(generation uint64, values url.Values) string {
	return fmt.Sprintf("compare:%d:%s", generation, values.Encode())
}

func (ac *ApiController) Compare(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	opts, err := ParseCompareOptions(values)
	if err != nil {
		ac.fail(w, err)
		return
	}

	// Random picks and fallback extractions are never cached.
	cacheable := !opts.Randomize && ac.service.Loaded()
	key := compareCacheKey(ac.service.Generation(), values)
	if cacheable {
		if data, ok := ac.cache.Get(key); ok {
			writeJSON(w, http.StatusOK, data)
			return
		}
	}

	result, err := ac.service.Compare(r.Context(), opts)
	if err != nil {
		ac.fail(w, err)
		return
	}
	gson, err := json.Marshal(result)
	if err != nil {
		ac.fail(w, err)
		return
	}
	if cacheable {
		ac.cache.Set(key, gson)
	}
	writeJSON(w, http.StatusOK, gson)
}

// Upload replaces a user's library database and ingests it.
func (ac *ApiController) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r.URL.Query())
	if err != nil {
		ac.fail(w, err)
		return
	}

	limit := ac.conf.Ingestion.UploadMaxSize
	if limit <= 0 {
		limit = defaultUploadMaxSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		ac.fail(w, apperrors.NewValidationError("file", "invalid multipart upload: "+err.Error()))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		ac.fail(w, apperrors.NewValidationError("file", "file is required"))
		return
	}
	defer file.Close()

	if err := ac.service.ReplaceSource(userID, file); err != nil {
		ac.fail(w, err)
		return
	}
	user, err := ac.service.IngestUser(r.Context(), userID)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Upload ingested for user %d", userID)
	ac.respond(w, http.StatusCreated, user)
}

func (ac *ApiController) Users(w http.ResponseWriter, _ *http.Request) {
	ac.respond(w, http.StatusOK, ac.service.Users())
}

func (ac *ApiController) RemoveUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r.URL.Query())
	if err != nil {
		ac.fail(w, err)
		return
	}
	removed, err := ac.service.RemoveUser(userID)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.respond(w, http.StatusOK, map[string]int{"user_id": userID, "removed_games": removed})
}

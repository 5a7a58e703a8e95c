package breedadmin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/whiskerworthy/dogdiet/internal/apiclient"
	"github.com/whiskerworthy/dogdiet/internal/ui"
)

// ListPath lists every breed.
const ListPath = "/api/breeds"

const (
	breedPath = "/api/breed"

	updatedNotice   = "Breed updated successfully!"
	noChangesNotice = "Please fill in at least one field to update."
	noSearchNotice  = "Please choose a search field and enter a value."
	failedNotice    = "Failed to update breed. Please try again."
	updateFallback  = "Failed to update breed"
	lookupFallback  = "Failed to load breed"
)

// Client is the subset of apiclient.Client the admin flow uses.
type Client interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
	Patch(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

// Breed is one row of the breed table keyed by column name.
type Breed map[string]any

// Name returns the AKC breed name.
func (b Breed) Name() string {
	s, _ := b[SearchByName].(string)
	return s
}

// Handler runs admin updates and lookups. Concurrent updates are coalesced
// only when path and changes are identical.
type Handler struct {
	client   Client
	notifier ui.Notifier
	logger   *slog.Logger
	flight   singleflight.Group
}

// NewHandler wires a handler. logger may be nil.
func NewHandler(client Client, notifier ui.Notifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, notifier: notifier, logger: logger.With("flow", "breedadmin")}
}

// UpdatePath returns the PATCH/GET path for one breed.
func UpdatePath(field, value string) string {
	return apiclient.PathEscape(breedPath, field, value)
}

// Update sends the changed fields of f. On success the form is cleared,
// search key included; on any failure it is left as it was.
func (h *Handler) Update(ctx context.Context, f Form) (json.RawMessage, error) {
	req, err := BuildUpdate(f)
	if err != nil {
		h.logger.Warn("update rejected before sending", "error", err)
		if errors.Is(err, ErrNoChanges) {
			h.notifier.Prompt(noChangesNotice)
		} else {
			h.notifier.Prompt(noSearchNotice)
		}
		return nil, err
	}

	path := UpdatePath(req.SearchField, req.SearchValue)
	key, err := apiclient.RequestKey(http.MethodPatch, path, req.Changes)
	if err != nil {
		h.logger.Error("error updating breed", "error", err)
		h.notifier.Error(failedNotice)
		return nil, err
	}

	// Only identical updates join one request. The shared request outlives
	// any single caller; each caller stops waiting when its own ctx ends.
	ch := h.flight.DoChan(key, func() (any, error) {
		return h.send(context.WithoutCancel(ctx), path, req)
	})
	select {
	case <-ctx.Done():
		h.logger.Warn("stopped waiting for update", "path", path, "error", ctx.Err())
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			h.logger.Debug("joined in-flight update", "path", path)
		}
		if r.Err != nil {
			return nil, r.Err
		}
		f.Reset()
		return r.Val.(json.RawMessage), nil
	}
}

func (h *Handler) send(ctx context.Context, path string, req UpdateRequest) (json.RawMessage, error) {
	resp, err := h.client.Patch(ctx, path, req.Changes)
	if err != nil {
		h.logger.Error("error updating breed", "error", err)
		h.notifier.Error(failedNotice)
		return nil, err
	}

	if !resp.OK() {
		serr := resp.StatusErr(updateFallback, "error", "detail")
		h.logger.Error("update rejected", "status", serr.StatusCode, "message", serr.Message)
		h.notifier.Error(serr.Message)
		return nil, serr
	}

	h.logger.Info("breed updated", "search_field", req.SearchField, "search_value", req.SearchValue, "fields", len(req.Changes))
	h.notifier.Success(updatedNotice)
	return json.RawMessage(resp.Body), nil
}

// Lookup fetches one breed by search field.
func (h *Handler) Lookup(ctx context.Context, field, value string) (Breed, error) {
	if field == "" || value == "" {
		h.notifier.Prompt(noSearchNotice)
		return nil, ErrMissingSearchKey
	}

	var body struct {
		Breed Breed `json:"breed"`
	}
	if err := h.get(ctx, UpdatePath(field, value), &body); err != nil {
		return nil, err
	}
	return body.Breed, nil
}

// List fetches the summary rows of every breed.
func (h *Handler) List(ctx context.Context) ([]Breed, error) {
	var body struct {
		Breeds []Breed `json:"breeds"`
	}
	if err := h.get(ctx, ListPath, &body); err != nil {
		return nil, err
	}
	return body.Breeds, nil
}

func (h *Handler) get(ctx context.Context, path string, v any) error {
	resp, err := h.client.Get(ctx, path)
	if err != nil {
		h.logger.Error("error loading breeds", "path", path, "error", err)
		h.notifier.Error(lookupFallback + ". Please try again.")
		return err
	}
	if !resp.OK() {
		serr := resp.StatusErr(lookupFallback, "detail", "error")
		h.logger.Error("lookup rejected", "path", path, "status", serr.StatusCode, "message", serr.Message)
		h.notifier.Error(serr.Message)
		return serr
	}
	if err := resp.Decode(v); err != nil {
		h.logger.Error("error loading breeds", "path", path, "error", err)
		h.notifier.Error(lookupFallback + ". Please try again.")
		return err
	}
	return nil
}

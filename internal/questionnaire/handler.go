package questionnaire

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/whiskerworthy/dogdiet/internal/apiclient"
	"github.com/whiskerworthy/dogdiet/internal/ui"
)

// SubmitPath is the create endpoint for questionnaire records.
const SubmitPath = "/api/submit-dog-info"

const (
	failedNotice = "Failed to submit form. Please try again."
	invalidAge   = "Please enter the dog's age as a number."
)

// Poster sends a JSON POST.
type Poster interface {
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

// Result is what the backend answered for an accepted submission.
type Result struct {
	Message  string `json:"message"`
	Report   any    `json:"report,omitempty"`
	RecordID int64  `json:"record_id,omitempty"`
}

// Handler submits questionnaire forms. A submission of the same record while
// that record is in flight joins it instead of sending a second POST; a
// different record is always sent on its own.
type Handler struct {
	client   Poster
	notifier ui.Notifier
	logger   *slog.Logger
	flight   singleflight.Group
}

// NewHandler wires a handler. logger may be nil.
func NewHandler(client Poster, notifier ui.Notifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, notifier: notifier, logger: logger.With("flow", "questionnaire")}
}

// Submit reads f, sends the record and reports the outcome through the
// notifier. The returned error mirrors what the user was shown.
func (h *Handler) Submit(ctx context.Context, f FormReader) (*Result, error) {
	rec, err := BuildRecord(f)
	if err != nil {
		h.logger.Warn("questionnaire rejected before sending", "error", err)
		h.notifier.Prompt(invalidAge)
		return nil, err
	}

	key, err := apiclient.RequestKey(http.MethodPost, SubmitPath, rec)
	if err != nil {
		h.logger.Error("error submitting form", "error", err)
		h.notifier.Error(failedNotice)
		return nil, err
	}

	// Only identical records join one request. The shared request outlives
	// any single caller; each caller stops waiting when its own ctx ends.
	ch := h.flight.DoChan(key, func() (any, error) {
		return h.send(context.WithoutCancel(ctx), rec)
	})
	select {
	case <-ctx.Done():
		h.logger.Warn("stopped waiting for submission", "error", ctx.Err())
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			h.logger.Debug("joined in-flight submission")
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

func (h *Handler) send(ctx context.Context, rec Record) (*Result, error) {
	resp, err := h.client.Post(ctx, SubmitPath, rec)
	if err != nil {
		h.logger.Error("error submitting form", "error", err)
		h.notifier.Error(failedNotice)
		return nil, err
	}

	if !resp.OK() {
		serr := resp.StatusErr("Failed to submit form", "message", "detail", "error")
		h.logger.Error("submission rejected", "status", serr.StatusCode, "message", serr.Message)
		h.notifier.Error("Error: " + serr.Message)
		return nil, serr
	}

	var res Result
	if err := resp.Decode(&res); err != nil {
		h.logger.Error("error submitting form", "error", err)
		h.notifier.Error(failedNotice)
		return nil, err
	}

	h.notifier.Success("Success! " + res.Message)
	h.logger.Info("report", "report", res.Report, "record_id", res.RecordID)
	return &res, nil
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAge)
}

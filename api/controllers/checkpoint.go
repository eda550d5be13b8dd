package controllers

import (
	"context"
	"net/http"

	"github.com/newswirehq/newswire-backend/api/responses"
	"github.com/newswirehq/newswire-backend/api/validators"
	"github.com/newswirehq/newswire-backend/pkg/logger"
)

// checkpointStore is the service surface the checkpoint controllers depend on.
type checkpointStore interface {
	LastSentID(ctx context.Context) (int64, bool, error)
	SetLastSentID(ctx context.Context, id int64) error
	AdvanceIfGreater(ctx context.Context, id int64) (bool, error)
}

type checkpointResponse struct {
	LastSentID *int64 `json:"last_sent_id"`
	Set        bool   `json:"set"`
}

type checkpointWriteRequest struct {
	LastSentID *int64 `json:"last_sent_id" validate:"required,min=0"`
}

type checkpointAdvanceResponse struct {
	LastSentID int64 `json:"last_sent_id"`
	Advanced   bool  `json:"advanced"`
}

// CheckpointGet returns the current checkpoint. A never-written checkpoint
// reports set=false with a null id rather than an error.
func CheckpointGet(store checkpointStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, set, err := store.LastSentID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := checkpointResponse{Set: set}
		if set {
			resp.LastSentID = &id
		}
		responses.WriteSuccess(w, resp)
	}
}

// CheckpointSet overwrites the checkpoint unconditionally (last writer wins).
func CheckpointSet(store checkpointStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkpointWriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.SetLastSentID(r.Context(), *payload.LastSentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkpointResponse{LastSentID: payload.LastSentID, Set: true})
	}
}

// CheckpointAdvance moves the checkpoint forward only; stale candidates are
// acknowledged without a write.
func CheckpointAdvance(store checkpointStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkpointWriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		advanced, err := store.AdvanceIfGreater(r.Context(), *payload.LastSentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkpointAdvanceResponse{
			LastSentID: *payload.LastSentID,
			Advanced:   advanced,
		})
	}
}

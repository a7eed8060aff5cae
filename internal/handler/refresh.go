package handler

import (
	"net/http"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/refresh"
)

// BucketSummaryResponse is the wire shape of one bucket's refresh outcome
type BucketSummaryResponse struct {
	Bucket     string `json:"bucket"`
	Checked    int    `json:"checked"`
	Updated    int    `json:"updated"`
	Suppressed int    `json:"suppressed"`
	Notable    int    `json:"notable"`
	PushErrors int    `json:"push_errors"`
}

func toBucketSummaryResponse(s refresh.BucketSummary) BucketSummaryResponse {
	return BucketSummaryResponse{
		Bucket:     string(s.Bucket),
		Checked:    s.Checked,
		Updated:    s.Updated,
		Suppressed: s.Suppressed,
		Notable:    s.Notable,
		PushErrors: s.PushErrors,
	}
}

// HandleRefreshPrices runs a price refresh. With a bucket query parameter it
// refreshes one bucket, otherwise all buckets in parallel.
func HandleRefreshPrices(refreshService refresh.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if raw := r.URL.Query().Get("bucket"); raw != "" {
			bucket := domain.PriceBucket(raw)
			if !bucket.Valid() {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidBucket)
				return
			}

			summary, err := refreshService.RefreshBucket(r.Context(), bucket)
			if err != nil {
				log.Error("Price refresh failed", "bucket", bucket, "error", err)
				respondError(w, http.StatusInternalServerError, ErrMsgRefreshFailed)
				return
			}
			respondJSON(w, http.StatusOK, DataResponse{
				Message: MsgPricesRefreshed,
				Data:    []BucketSummaryResponse{toBucketSummaryResponse(summary)},
			})
			return
		}

		summaries, err := refreshService.RefreshAll(r.Context())
		if err != nil {
			log.Error("Price refresh failed", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgRefreshFailed)
			return
		}

		out := make([]BucketSummaryResponse, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, toBucketSummaryResponse(s))
		}
		respondJSON(w, http.StatusOK, DataResponse{
			Message: MsgPricesRefreshed,
			Data:    out,
		})
	}
}

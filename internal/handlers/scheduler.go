package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/service"
)

// SchedulerHandler is the hook an external timer calls once a minute.
type SchedulerHandler struct {
	trigger *service.Trigger
	log     *logrus.Logger
	now     func() time.Time
}

func NewSchedulerHandler(trigger *service.Trigger, log *logrus.Logger) *SchedulerHandler {
	return &SchedulerHandler{trigger: trigger, log: log, now: time.Now}
}

type PublishDueResponse struct {
	Published []string  `json:"published"`
	RanAt     time.Time `json:"ran_at"`
}

func (h *SchedulerHandler) PublishDue(w http.ResponseWriter, r *http.Request) {
	ranAt := h.now().UTC()
	published, err := h.trigger.RunOnce(r.Context(), ranAt)
	if err != nil {
		respondErr(w, h.log, r, err)
		return
	}
	ids := make([]string, 0, len(published))
	for _, c := range published {
		ids = append(ids, c.ID)
	}
	respondData(w, http.StatusOK, PublishDueResponse{Published: ids, RanAt: ranAt})
}

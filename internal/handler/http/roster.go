package http

import (
	"net/http"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/handler/http/response"
)

type RosterHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
}

type rosterHandlerImpl struct {
	rosterService worker.RosterService
}

func NewRosterHandler(rosterService worker.RosterService) RosterHandler {
	return &rosterHandlerImpl{
		rosterService: rosterService,
	}
}

// Summary implements RosterHandler.
func (h *rosterHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	results, err := h.rosterService.Summary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

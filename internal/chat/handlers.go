package chat

import (
	"net/http"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/utils"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	msgs, err := h.svc.History(r.Context(), userID)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	items := make([]MessageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toItem(m))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"messages": items})
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req messageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	reply, err := h.svc.Send(r.Context(), userID, req.Message)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"response": reply})
}

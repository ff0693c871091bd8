package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/LinFrancis/finanzas-app/internal/core"
	"github.com/LinFrancis/finanzas-app/internal/services"
)

type movementJSON struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Detail         string `json:"detail"`
	Category       string `json:"category,omitempty"`
	Date           string `json:"date"`
	Person         string `json:"person,omitempty"`
	Origin         string `json:"origin,omitempty"`
	Destination    string `json:"destination,omitempty"`
	Amount         int64  `json:"amount"`
	CreatedAt      string `json:"created_at,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	LastModifiedAt string `json:"last_modified_at,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	Voided         bool   `json:"voided"`
	Row            int    `json:"row"`
	Label          string `json:"label"`
}

func toMovementJSON(m core.Movement) movementJSON {
	return movementJSON{
		ID:             m.ID,
		Kind:           string(m.Kind),
		Detail:         m.Detail,
		Category:       m.Category,
		Date:           m.DateString(),
		Person:         m.Person,
		Origin:         m.PersonOrigin,
		Destination:    m.PersonDestination,
		Amount:         m.Amount.Units,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
		LastModifiedAt: m.LastModifiedAt,
		LastModifiedBy: m.LastModifiedBy,
		Voided:         m.Voided,
		Row:            m.Row,
		Label:          m.OptionLabel(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrRowNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrRowConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrShortDetail),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyPerson),
		errors.Is(err, core.ErrSameParties),
		errors.Is(err, core.ErrFutureDate),
		errors.Is(err, core.ErrMissingEditor):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadGateway, "record store unavailable")
	}
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	movements, err := s.loadMovements(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	ov := core.ComputeOverview(movements, s.ledger.Roster())
	writeJSON(w, http.StatusOK, map[string]any{
		"group_total":    ov.GroupTotal.Units,
		"income_total":   ov.IncomeTotal.Units,
		"expense_total":  ov.ExpenseTotal.Units,
		"transfer_count": ov.TransferCount,
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	movements, err := s.loadMovements(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	balances := core.ComputeBalances(movements, s.ledger.Roster())

	type balanceJSON struct {
		Person            string `json:"person"`
		Income            int64  `json:"income"`
		Expense           int64  `json:"expense"`
		TransfersReceived int64  `json:"transfers_received"`
		TransfersGiven    int64  `json:"transfers_given"`
		Net               int64  `json:"net"`
	}
	out := make([]balanceJSON, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceJSON{
			Person:            b.Person,
			Income:            b.Income.Units,
			Expense:           b.Expense.Units,
			TransfersReceived: b.TransfersReceived.Units,
			TransfersGiven:    b.TransfersGiven.Units,
			Net:               b.Net.Units,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": out})
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	movements, err := s.loadMovements(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	plan := core.PlanSettlement(movements, s.ledger.Roster())

	type paymentJSON struct {
		Debtor   string `json:"debtor"`
		Creditor string `json:"creditor"`
		Amount   int64  `json:"amount"`
	}
	payments := make([]paymentJSON, 0, len(plan.Payments))
	for _, p := range plan.Payments {
		payments = append(payments, paymentJSON{Debtor: p.Debtor, Creditor: p.Creditor, Amount: p.Amount.Units})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":       plan.Total.Units,
		"equal_share": plan.EqualShare,
		"payments":    payments,
		"summary":     plan.Summary,
	})
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := s.loadMovements(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := services.MovementFilter{
		Person:        strings.TrimSpace(q.Get("person")),
		Kind:          core.MovementKind(strings.TrimSpace(q.Get("kind"))),
		IncludeVoided: q.Get("voided") == "1" || strings.EqualFold(q.Get("voided"), "true"),
	}
	filtered := services.FilterMovements(movements, filter)
	core.SortByDateDesc(filtered)

	out := make([]movementJSON, 0, len(filtered))
	for _, m := range filtered {
		out = append(out, toMovementJSON(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"movements": out})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	movements, err := s.loadMovements(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": core.Categories(movements)})
}

type createMovementRequest struct {
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Detail      string `json:"detail"`
	Category    string `json:"category"`
	Person      string `json:"person"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft := services.Draft{
		Kind:              core.MovementKind(req.Kind),
		Date:              core.ParseStoredDate(req.Date),
		Detail:            req.Detail,
		Category:          req.Category,
		Person:            req.Person,
		PersonOrigin:      req.Origin,
		PersonDestination: req.Destination,
		Amount:            req.Amount,
	}
	m, err := s.movements.Create(r.Context(), draft)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateMovements()
	writeJSON(w, http.StatusCreated, toMovementJSON(m))
}

type updateMovementRequest struct {
	ID     string `json:"id"`
	Editor string `json:"editor"`

	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Detail      string `json:"detail"`
	Category    string `json:"category"`
	Person      string `json:"person"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Amount      *int64 `json:"amount"`
}

func (s *Server) handleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil || row < 2 {
		writeError(w, http.StatusBadRequest, "invalid row number")
		return
	}
	var req updateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	edit := services.Edit{
		Kind:              core.MovementKind(req.Kind),
		Date:              core.ParseStoredDate(req.Date),
		Detail:            req.Detail,
		Category:          req.Category,
		Person:            req.Person,
		PersonOrigin:      req.Origin,
		PersonDestination: req.Destination,
		Amount:            req.Amount,
	}
	m, err := s.movements.UpdateAt(r.Context(), row, req.ID, req.Editor, edit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateMovements()
	writeJSON(w, http.StatusOK, toMovementJSON(m))
}

type voidMovementRequest struct {
	ID     string `json:"id"`
	Editor string `json:"editor"`
}

func (s *Server) handleVoidMovement(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil || row < 2 {
		writeError(w, http.StatusBadRequest, "invalid row number")
		return
	}
	var req voidMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m, err := s.movements.VoidAt(r.Context(), row, req.ID, req.Editor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateMovements()
	writeJSON(w, http.StatusOK, toMovementJSON(m))
}

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	g "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"bizdesk/internal/app"
	"bizdesk/internal/datatable"
)

// ── Pending bulk action store ────────────────────────────────────────────────

// pendingBulk is stored server-side until the user confirms or cancels.
type pendingBulk struct {
	UserID    int
	Request   app.BulkRequest
	Return    string // list URL to go back to, always under /v/{view}
	CreatedAt time.Time
}

const pendingTTL = 15 * time.Minute

// pendingStore is a thread-safe in-memory store with TTL expiry.
type pendingStore struct {
	mu      sync.Mutex
	actions map[string]pendingBulk
}

func newPendingStore() *pendingStore {
	return &pendingStore{actions: make(map[string]pendingBulk)}
}

func (s *pendingStore) put(token string, a pendingBulk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[token] = a
}

var (
	errPendingGone  = errors.New("pending action expired or used")
	errPendingOwner = errors.New("pending action belongs to another session")
)

// take removes and returns the action for token in one step, so a token
// confirms at most once. A token presented by another user or for another
// view is left in place for its owner.
func (s *pendingStore) take(token string, userID int, view string) (pendingBulk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actions[token]
	if !ok {
		return pendingBulk{}, errPendingGone
	}
	if time.Since(a.CreatedAt) > pendingTTL {
		delete(s.actions, token)
		return pendingBulk{}, errPendingGone
	}
	if a.UserID != userID || a.Request.View != view {
		return pendingBulk{}, errPendingOwner
	}
	delete(s.actions, token)
	return a, nil
}

func (s *pendingStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// startPurge starts a background goroutine that evicts expired entries every 5 minutes.
func (s *pendingStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.purge(time.Now())
			}
		}
	}()
}

func (s *pendingStore) purge(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.actions {
		if now.Sub(v.CreatedAt) > pendingTTL {
			delete(s.actions, k)
		}
	}
}

// ── Handlers ─────────────────────────────────────────────────────────────────

// bulkPrepare handles POST /v/{view}/bulk, submitted by the table's bulk bar.
// Nothing changes yet: the selection is checked and a confirmation page is shown.
func (h *Handler) bulkPrepare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Bad request", "Invalid form submission."))
		return
	}
	s := session(r)
	view := viewParam(r)
	// Row actions name their action and record in the URL; the bulk bar
	// submits them as form fields.
	src := r.PostForm
	if r.URL.Query().Has("action") {
		src = r.URL.Query()
	}
	req := app.BulkRequest{
		View:   view,
		Action: src.Get("action"),
		IDs:    datatable.ParseState(src, nil).Selected,
	}

	plan, err := h.svc.PlanBulk(r.Context(), s, req)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	req.IDs = plan.IDs

	token := uuid.NewString()
	back := returnURL(view, r.PostForm)
	h.pending.put(token, pendingBulk{
		UserID:    s.UserID,
		Request:   req,
		Return:    back,
		CreatedAt: time.Now(),
	})
	renderHTML(w, http.StatusOK, appPage(s, h.svc.Views(s), plan.View.Title, plan.View.Name, bulkConfirmBody(plan, token, back)...))
}

// returnURL rebuilds the list URL from the submitted table state, minus the
// selection and the action.
func returnURL(view string, form url.Values) string {
	q := url.Values{}
	for k, v := range form {
		switch k {
		case "action", "token", datatable.ParamSelected, datatable.ParamOp:
			continue
		}
		q[k] = v
	}
	u := "/v/" + url.PathEscape(view)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func bulkConfirmBody(plan *app.BulkPlan, token, back string) []g.Node {
	items := make([]g.Node, 0, len(plan.Rows))
	for _, row := range plan.Rows {
		label := datatable.RowID(row)
		if len(plan.View.Columns) > 0 {
			if first := datatable.DisplayString(row[plan.View.Columns[0].Key]); first != "" {
				label = first
			}
		}
		items = append(items, html.Li(html.Data("id", datatable.RowID(row)), g.Text(label)))
	}
	button := "btn btn-primary"
	if plan.Action.Danger {
		button = "btn btn-danger"
	}
	noun := "records"
	if len(plan.IDs) == 1 {
		noun = "record"
	}
	return []g.Node{
		html.Div(
			html.Class("Box p-3"),
			html.H2(html.Class("h4 mb-2"), g.Text(fmt.Sprintf("%s %d %s?", plan.Action.Label, len(plan.IDs), noun))),
			g.If(plan.Action.Danger, html.P(html.Class("flash flash-warn mb-2"), g.Text("This cannot be undone."))),
			html.Ul(html.Class("mb-3 ml-3"), g.Group(items)),
			html.Form(
				html.Method("post"),
				html.Action("/v/"+url.PathEscape(plan.View.Name)+"/bulk/confirm"),
				html.Class("d-flex gap-2"),
				html.Input(html.Type("hidden"), html.Name("token"), html.Value(token)),
				html.Button(html.Type("submit"), html.Class(button), g.Text(plan.Action.Label)),
				html.A(html.Href(back), html.Class("btn"), g.Text("Cancel")),
			),
		),
	}
}

// bulkConfirm handles POST /v/{view}/bulk/confirm. The pending token is single
// use and bound to the user and view that created it.
func (h *Handler) bulkConfirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Bad request", "Invalid form submission."))
		return
	}
	s := session(r)
	token := r.PostForm.Get("token")
	pending, err := h.pending.take(token, s.UserID, viewParam(r))
	if errors.Is(err, errPendingOwner) {
		renderHTML(w, http.StatusForbidden, errorPage("Forbidden", "This confirmation belongs to another session."))
		return
	}
	if err != nil {
		renderHTML(w, http.StatusGone, errorPage("Confirmation expired", "This confirmation is no longer valid. Select the records and try again."))
		return
	}

	res, err := h.svc.BulkAction(r.Context(), s, pending.Request)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	u, err := url.Parse(pending.Return)
	if err != nil {
		u = &url.URL{Path: "/v/" + res.View}
	}
	q := u.Query()
	q.Set(paramBulkDone, res.Action)
	q.Set(paramBulkCount, strconv.Itoa(res.Affected))
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

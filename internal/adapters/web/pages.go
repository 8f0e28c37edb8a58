package web

import (
	"errors"
	"net/http"
	"strconv"

	g "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"bizdesk/internal/app"
	"bizdesk/internal/core"
	"bizdesk/internal/views"
)

// loginPage handles GET /login. Redirects to the dashboard if already authenticated.
func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionFromCookie(r); ok {
		http.Redirect(w, r, navHomeHref, http.StatusSeeOther)
		return
	}
	renderHTML(w, http.StatusOK, loginPage("", ""))
}

// loginFormSubmit handles POST /login.
func (h *Handler) loginFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, loginPage("Invalid form submission.", ""))
		return
	}
	username := r.PostFormValue("username")
	_, err := h.startSession(w, r, username, r.PostFormValue("password"))
	switch {
	case err == nil:
		http.Redirect(w, r, navHomeHref, http.StatusSeeOther)
	case errors.Is(err, core.ErrUnauthenticated), errors.Is(err, core.ErrInvalidInput):
		renderHTML(w, http.StatusUnauthorized, loginPage("Invalid username or password.", username))
	default:
		status, _, _ := classify(r, err)
		renderHTML(w, status, loginPage("Sign-in is unavailable right now. Please try again.", username))
	}
}

// logoutPage handles POST /logout: clears the cookie and redirects to login.
func (h *Handler) logoutPage(w http.ResponseWriter, r *http.Request) {
	h.setAuthCookie(w, "", -1)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// dashboardPage handles GET /dashboard.
func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	dash, err := h.svc.Dashboard(r.Context(), s)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, appPage(s, h.svc.Views(s), dash.Title, navHomeKey, dashboardBody(dash)...))
}

func dashboardBody(d *app.DashboardResult) []g.Node {
	cards := make([]g.Node, 0, len(d.Cards))
	for _, c := range d.Cards {
		value := g.Text(strconv.Itoa(c.Count))
		if c.Err != "" {
			value = html.Span(html.Class("color-fg-danger"), g.Text(c.Err))
		}
		cards = append(cards, html.A(
			html.Href("/v/"+c.View),
			html.Class("Box p-3 Link--primary no-underline"),
			html.Data("view", c.View),
			html.Div(html.Class("color-fg-muted text-small"), g.Text(c.Title)),
			html.Div(html.Class("stat-value"), value),
		))
	}

	nodes := []g.Node{
		html.P(html.Class("mb-3"), g.Text(d.Greeting)),
		html.Div(html.Class("stat-grid mb-4"), g.Group(cards)),
	}
	if len(d.Totals) > 0 {
		rows := make([]g.Node, 0, len(d.Totals))
		for _, t := range d.Totals {
			rows = append(rows, html.Tr(
				html.Td(g.Text(t.Label)),
				html.Td(g.Text(t.Currency)),
				html.Td(html.Class("text-right"), g.Text(views.Money(t.Amount, t.Currency))),
			))
		}
		nodes = append(nodes,
			html.H2(html.Class("h4 mb-2"), g.Text("Totals")),
			html.Div(html.Class("Box datatable"),
				html.Table(html.Class("data-table"),
					html.THead(html.Tr(html.Th(g.Text("Measure")), html.Th(g.Text("Currency")), html.Th(html.Class("text-right"), g.Text("Amount")))),
					html.TBody(g.Group(rows)),
				),
			),
		)
	}
	return nodes
}

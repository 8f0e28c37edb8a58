package web

import (
	"net/http"

	g "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"bizdesk/internal/core"
	"bizdesk/internal/views"
)

const (
	appTitle    = "Bizdesk"
	primerCSS   = "https://cdn.jsdelivr.net/npm/@primer/css@22.1.0/dist/primer.min.css"
	datastarJS  = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"
	stylesheet  = "/static/app.css"
	navHomeKey  = "dashboard"
	navHomeHref = "/dashboard"
)

// dropdownJS closes open dropdown menus on outside clicks.
const dropdownJS = "document.addEventListener('click', function(e){ var t=e.target; if(!(t instanceof Element)){return;} document.querySelectorAll('details.dropdown[open]').forEach(function(d){ if(!d.contains(t)){ d.removeAttribute('open'); }}); });"

func renderHTML(w http.ResponseWriter, status int, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func head(title string, extra ...g.Node) g.Node {
	return html.Head(
		html.Meta(html.Charset("utf-8")),
		html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
		html.TitleEl(g.Text(title+" | "+appTitle)),
		html.Link(html.Rel("icon"), html.Href("data:,")),
		html.Link(html.Rel("stylesheet"), html.Href(primerCSS)),
		html.Link(html.Rel("stylesheet"), html.Href(stylesheet)),
		g.Group(extra),
	)
}

// appPage is the signed-in layout. The sidebar lists only the views the session may open.
func appPage(s core.SessionContext, nav []views.Definition, title, active string, body ...g.Node) g.Node {
	links := make([]g.Node, 0, len(nav)+1)
	links = append(links, navLink("Dashboard", navHomeHref, active == navHomeKey))
	for _, d := range nav {
		links = append(links, navLink(d.Title, "/v/"+d.Name, active == d.Name))
	}

	return html.Doctype(html.HTML(
		html.Lang("en"),
		g.Attr("data-color-mode", "auto"),
		g.Attr("data-light-theme", "light"),
		g.Attr("data-dark-theme", "dark"),
		head(title, html.Script(html.Type("module"), html.Src(datastarJS))),
		html.Body(
			html.Main(html.Class("app-shell"),
				html.Aside(
					html.Class("app-sidebar"),
					html.Div(
						html.Class("brand"),
						html.Strong(g.Text(appTitle)),
						html.P(html.Class("color-fg-muted text-small mb-0"), g.Text(s.Role.Label()+" workspace")),
					),
					html.Nav(html.Class("app-nav"), html.Aria("label", "Main"), g.Group(links)),
				),
				html.Section(
					html.Class("app-main"),
					html.Div(
						html.Class("topbar"),
						html.H1(html.Class("page-title"), g.Text(title)),
						html.Div(
							html.P(html.Class("color-fg-muted text-small mb-2"), g.Text("Signed in as "+s.DisplayName())),
							html.Form(
								html.Method("post"),
								html.Action("/logout"),
								html.Button(html.Type("submit"), html.Class("btn btn-sm"), g.Text("Sign out")),
							),
						),
					),
					html.Div(html.Class("content"), g.Group(body)),
				),
			),
			html.Script(g.Raw(dropdownJS)),
		),
	))
}

func navLink(label, href string, active bool) g.Node {
	class := "app-nav-link Link--secondary d-flex flex-items-center"
	if active {
		class += " active"
	}
	return html.A(html.Href(href), html.Class(class), g.If(active, html.Aria("current", "page")), html.Span(g.Text(label)))
}

func errorPage(title, message string) g.Node {
	return html.Doctype(html.HTML(
		html.Lang("en"),
		head(title),
		html.Body(
			html.Class("login-body"),
			html.Main(
				html.Class("login-wrap"),
				html.H1(html.Class("h3 mb-2"), g.Text(title)),
				html.P(html.Class("error"), g.Text(message)),
				html.A(html.Href(navHomeHref), html.Class("btn"), g.Text("Back to dashboard")),
			),
		),
	))
}

func loginPage(errMsg, username string) g.Node {
	return html.Doctype(html.HTML(
		html.Lang("en"),
		head("Sign in"),
		html.Body(
			html.Class("login-body"),
			html.Main(
				html.Class("login-wrap Box p-4"),
				html.H1(html.Class("h3 mb-1"), g.Text(appTitle)),
				html.P(html.Class("color-fg-muted mb-3"), g.Text("Sign in to your workspace.")),
				g.If(errMsg != "", html.P(html.Class("flash flash-error mb-3"), html.Role("alert"), g.Text(errMsg))),
				html.Form(
					html.Method("post"),
					html.Action("/login"),
					html.Class("login-form"),
					html.Label(html.For("username"), g.Text("Username")),
					html.Input(html.Type("text"), html.ID("username"), html.Name("username"), html.Value(username), html.Class("form-control"), html.AutoComplete("username"), html.Required()),
					html.Label(html.For("password"), g.Text("Password")),
					html.Input(html.Type("password"), html.ID("password"), html.Name("password"), html.Class("form-control"), html.AutoComplete("current-password"), html.Required()),
					html.Button(html.Type("submit"), html.Class("btn btn-primary mt-2"), g.Text("Sign in")),
				),
			),
		),
	))
}

// flash renders a dismissable notice.
func flash(kind, msg string) g.Node {
	if msg == "" {
		return nil
	}
	return html.Div(html.Class("flash mb-3 flash-"+kind), html.Role("status"), g.Text(msg))
}

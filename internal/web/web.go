package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var dashboard = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

// Device строка таблицы устройств
type Device struct {
	ID    string
	State string
}

// DashboardData данные страницы
type DashboardData struct {
	Devices []Device
}

// RenderDashboard рисует главную страницу
func RenderDashboard(w io.Writer, data DashboardData) error {
	return dashboard.Execute(w, data)
}

// Static отдает встроенные скрипты по /static/
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

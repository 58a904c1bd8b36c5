package internal

import (
	"net/http"

	"trainlog/internal/controllers"
	"trainlog/internal/providers"
)

func InitRoutes(dashboard *controllers.DashboardController, journal *controllers.JournalController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/analytics/dashboard", http.HandlerFunc(dashboard.GetDashboard))
	routers.Get("/analytics/skips", http.HandlerFunc(dashboard.GetSkips))
	routers.Get("/analytics/summary", http.HandlerFunc(dashboard.GetSummary))

	routers.Get("/questions", http.HandlerFunc(journal.ListQuestions))
	routers.Post("/questions", http.HandlerFunc(journal.CreateQuestion))
	routers.Post("/questions/delete", http.HandlerFunc(journal.DeleteQuestion))
	routers.Get("/entries", http.HandlerFunc(journal.ListEntries))
	routers.Post("/entries", http.HandlerFunc(journal.LogEntry))
	routers.Get("/entries/pending", http.HandlerFunc(journal.ListPending))
	routers.Get("/entries/{id}", http.HandlerFunc(journal.GetEntry))
	routers.Put("/entries/{id}", http.HandlerFunc(journal.UpdateEntry))
	routers.Delete("/entries/{id}", http.HandlerFunc(journal.DeleteEntry))
	routers.Put("/entries/{id}/complete", http.HandlerFunc(journal.CompleteEntry))
	routers.Post("/activities", http.HandlerFunc(journal.RecordActivity))
	return routers
}

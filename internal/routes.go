package internal

import (
	"net/http"

	"gamatrix/internal/controllers"
	"gamatrix/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/compare", http.HandlerFunc(apiController.Compare))
	routers.Post("/upload", http.HandlerFunc(apiController.Upload))
	routers.Get("/users", http.HandlerFunc(apiController.Users))
	routers.Post("/users/remove", http.HandlerFunc(apiController.RemoveUser))
	return routers
}

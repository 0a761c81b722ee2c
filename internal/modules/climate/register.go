package climate

import (
	"net/http"

	"ghcn-dashboard/internal/modules/climate/controller"
	"ghcn-dashboard/internal/modules/climate/selection"
)

func RegisterFeature(mux *http.ServeMux, view *selection.View) {
	climateController := controller.NewClimateController(view)
	climateController.RegisterRoutes(mux)
}

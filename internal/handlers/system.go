package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"swms-portal/internal/areas"
	"swms-portal/internal/viewmodel"
	"swms-portal/internal/websocket"
	"swms-portal/pkg/utils"
)

// GetAreas lists the service areas and their societies.
// GET /areas
func GetAreas(client *areas.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := client.Areas(r.Context())
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"areas":     catalog.Names(),
			"societies": catalog,
		})
	}
}

// GET /areas/{name}
func GetArea(client *areas.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, client.Area(r.Context(), chi.URLParam(r, "name")))
	}
}

// Health reports the portal's own state plus the area service banner.
// GET /health
func Health(hub *websocket.Hub, views *viewmodel.Registry, client *areas.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"websockets":  hub.GetClientCount(),
			"tabs": map[websocket.View]int{
				websocket.ViewUser:   hub.Subscribers(websocket.ViewUser),
				websocket.ViewDriver: hub.Subscribers(websocket.ViewDriver),
				websocket.ViewAdmin:  hub.Subscribers(websocket.ViewAdmin),
			},
			"views":       views.Mounted(),
			"areaCache":   client.CacheStats(),
			"areaService": client.BaseInfo(r.Context()),
		})
	}
}

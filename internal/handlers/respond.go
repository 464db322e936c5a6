package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/middleware"
	"swms-portal/internal/viewmodel"
	"swms-portal/pkg/utils"
)

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func queryFlag(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "1" || v == "true"
}

// redirectIfNavigated sends the browser where a 401 navigated the request.
func redirectIfNavigated(w http.ResponseWriter, r *http.Request) bool {
	to, ok := middleware.Redirected(r.Context())
	if !ok {
		return false
	}
	http.Redirect(w, r, to, http.StatusFound)
	return true
}

// fail maps an error from a blocking action to a response. fallback is
// the message shown when nothing more specific is known.
func fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if redirectIfNavigated(w, r) {
		return
	}

	var verr *viewmodel.ValidationError
	var apiErr *apiclient.APIError
	var netErr *apiclient.NetworkError

	switch {
	case errors.As(err, &verr):
		utils.RespondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, viewmodel.ErrTaskNotFound):
		utils.RespondError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, viewmodel.ErrMissingEmail):
		utils.RespondError(w, http.StatusBadRequest, "Driver email missing. Please log in again.")
	case errors.Is(err, viewmodel.ErrNotSignedIn):
		utils.RespondError(w, http.StatusUnauthorized, "User not logged in. Please log in again.")
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		utils.RespondError(w, status, apiclient.UserMessage(err, fallback))
	case errors.As(err, &netErr):
		utils.RespondError(w, http.StatusBadGateway, apiclient.UserMessage(err, fallback))
	default:
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
		utils.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

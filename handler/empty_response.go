package handler

import "net/http"

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty creates an empty 204 No Content response, e.g. for DELETE endpoints.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

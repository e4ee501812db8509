package api

import (
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// MonitoringPath is where the queue monitoring UI is mounted.
const MonitoringPath = "/monitoring"

// SwaggerUIHandler returns a handler for Swagger UI
func SwaggerUIHandler() http.HandlerFunc {
	return httpSwagger.WrapHandler
}

// OpenAPISpecHandler returns a handler that redirects to the swagger spec JSON
func OpenAPISpecHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/doc.json", http.StatusTemporaryRedirect)
	}
}

// MonitoringHandler returns the asynqmon UI for the import queue, served under MonitoringPath.
func MonitoringHandler(asynqAddr string) *asynqmon.HTTPHandler {
	return asynqmon.New(asynqmon.Options{
		RootPath:     MonitoringPath,
		RedisConnOpt: asynq.RedisClientOpt{Addr: asynqAddr},
		ReadOnly:     true,
	})
}

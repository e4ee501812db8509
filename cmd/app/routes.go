package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"exchangebank/internal/api"
	"exchangebank/internal/api/middleware"
	"exchangebank/internal/service"
)

func (app *App) initHTTP(exchangeService service.ExchangeServiceInterface) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(middleware.RecoverMiddleware(app.logger))

	r.Route("/rates", func(r chi.Router) {
		r.Post("/", api.HandleAddRate(exchangeService))
		r.Get("/", api.HandleGetRate(exchangeService))
		r.Post("/import", api.HandleRequestImport(exchangeService))
	})
	r.Get("/convert", api.HandleConvert(exchangeService))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.db, app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.cfg.Server.ServeAsynqmon {
		mon := api.MonitoringHandler(app.cfg.Redis.AsynqAddr)
		r.Handle(mon.RootPath()+"/*", mon)
		app.logger.Infow("Asynq monitoring enabled", "path", mon.RootPath())
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

package controllers

import (
	"net/http"

	"github.com/gajeshbhat/Verkada-API-Integration/api/responses"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/redis"
)

const envHeader = "X-VRI-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/homeplate/cache"
	"github.com/ray-remotestate/homeplate/database/dbhelper"
	"github.com/ray-remotestate/homeplate/stats"
)

// GetStats serves the admin revenue/operations snapshot. It is recomputed
// from the full order collection and cached briefly; route-level middleware
// restricts it to admins.
func GetStats(w http.ResponseWriter, r *http.Request) {
	var overview stats.Overview
	hit, err := cache.GetJSON(r.Context(), cache.StatsKey, &overview)
	if err != nil {
		logrus.WithError(err).Warn("stats cache read failed")
	}
	if hit {
		respondJSON(w, http.StatusOK, overview)
		return
	}

	orders, err := dbhelper.ListAllOrders()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query orders")
		return
	}

	overview = stats.Compute(orders, time.Now())

	if err := cache.SetJSON(r.Context(), cache.StatsKey, overview, cache.StatsTTL); err != nil {
		logrus.WithError(err).Warn("stats cache write failed")
	}
	respondJSON(w, http.StatusOK, overview)
}

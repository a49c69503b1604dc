// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package metrics defines the Prometheus instrumentation for the API,
// the store, and the upstream catalog client. Collectors register
// themselves via promauto at package load; the /metrics endpoint
// exposes them.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmopine_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmopine_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmopine_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Store metrics
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmopine_db_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"operation"},
	)

	// Catalog sync metrics
	CatalogSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmopine_catalog_searches_total",
			Help: "Total number of upstream catalog searches",
		},
		[]string{"outcome"}, // "hit", "miss", "unavailable"
	)

	CatalogSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmopine_catalog_search_duration_seconds",
			Help:    "Duration of upstream catalog searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CatalogMoviesSynced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmopine_catalog_movies_synced_total",
			Help: "Total number of movies upserted from catalog searches",
		},
	)

	// Domain counters
	ReviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmopine_reviews_created_total",
			Help: "Total number of reviews created",
		},
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmopine_users_registered_total",
			Help: "Total number of users registered",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCatalogSearch records one upstream search with its outcome.
func RecordCatalogSearch(outcome string, duration time.Duration, synced int) {
	CatalogSearchesTotal.WithLabelValues(outcome).Inc()
	CatalogSearchDuration.Observe(duration.Seconds())
	if synced > 0 {
		CatalogMoviesSynced.Add(float64(synced))
	}
}

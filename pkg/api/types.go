package api

import (
	"time"

	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status      string             `json:"status"`
	Timestamp   time.Time          `json:"timestamp"`
	Collections []CollectionStatus `json:"collections"`
}

// CollectionStatus is the population status of one enabled collection.
type CollectionStatus struct {
	Name               string       `json:"name"`
	Step               holders.Step `json:"step"`
	LastProcessedBlock uint64       `json:"lastProcessedBlock"`
	LastUpdated        time.Time    `json:"lastUpdated,omitzero"`
	Healthy            bool         `json:"healthy"`
}

// TriggerResponse is the answer to a population trigger.
type TriggerResponse struct {
	Collection string                `json:"collection"`
	Status     holders.TriggerStatus `json:"status"`
}

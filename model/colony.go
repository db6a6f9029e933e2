package model

// ConstructionItem is one queued industrial project on a colony.
type ConstructionItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// RemainingPoints is the build effort still required. The item completes
	// when it reaches zero.
	RemainingPoints float64 `json:"remaining_points"`
}

// Colony is a populated settlement on a body.
type Colony struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	BodyID string `json:"body_id"`

	Population float64 `json:"population"`

	// Stockpile holds accumulated resources by kind (tonnes).
	Stockpile map[string]float64 `json:"stockpile,omitempty"`

	// MiningRatePerSec is resource extraction throughput by kind (tonnes/s).
	MiningRatePerSec map[string]float64 `json:"mining_rate_per_sec,omitempty"`

	// ProductionPerSec is industrial output applied to the construction
	// queue (build points per second).
	ProductionPerSec float64 `json:"production_per_sec"`

	// Queue is processed strictly in order; only the head item receives
	// production.
	Queue []*ConstructionItem `json:"queue,omitempty"`
}

package dto

// Envelope is the {success, data} wrapper used by the aggregator API.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

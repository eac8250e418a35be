package models

// PicoType is one of the four PICO elements.
type PicoType string

const (
	PicoP PicoType = "P"
	PicoI PicoType = "I"
	PicoC PicoType = "C"
	PicoO PicoType = "O"
)

// PicoTypes lists the elements in canonical order.
var PicoTypes = []PicoType{PicoP, PicoI, PicoC, PicoO}

// PicoCategories records which PICO elements an entity belongs to.
type PicoCategories struct {
	P bool `json:"p"`
	I bool `json:"i"`
	C bool `json:"c"`
	O bool `json:"o"`
}

// Proximity is a similarity score in [0, 1].
type Proximity struct {
	Total float64 `json:"total"`
}

// PicoProximity is a proximity tagged with the categories of the reference
// entity it was scored against.
type PicoProximity struct {
	Proximity
	PicoCategories PicoCategories `json:"picoCategories"`
}

// PicoProximityAverage is the per-document screening score handed downstream.
type PicoProximityAverage struct {
	Total      float64 `json:"total"`
	P          float64 `json:"p"`
	I          float64 `json:"i"`
	C          float64 `json:"c"`
	O          float64 `json:"o"`
	DocumentID string  `json:"documentId,omitempty"`
}

package types

import "strconv"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders "lat,lng" with the shortest exact decimal representation,
// the form map URLs expect.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// LocationUpdate is the payload a frontend sends when it already holds a
// device position fix.
type LocationUpdate struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// SearchRequest asks for the events around a free-text place name.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

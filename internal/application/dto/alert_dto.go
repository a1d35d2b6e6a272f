package dto

// TestAlertResponse resultado de POST /api/alerts/test.
type TestAlertResponse struct {
	Queued bool `json:"queued"`
}

// SweepResponse resultado de POST /api/alerts/sweep. Con ?sync=true incluye el reporte.
type SweepResponse struct {
	Queued       bool   `json:"queued"`
	Today        string `json:"today,omitempty"`
	Expired      int    `json:"expired"`
	ExpiringSoon int    `json:"expiring_soon"`
	Dropped      int    `json:"dropped"`
}

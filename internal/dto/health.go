package dto

// HealthResponse reports the service's health to orchestrators and dashboards
type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Details any    `json:"details,omitempty"`
}

package response

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

package models

// Dataset is the response from POST /dataset/upload.
type Dataset struct {
	DatasetID string `json:"dataset_id"`
	Rows      int    `json:"rows,omitempty"`
	Columns   int    `json:"columns,omitempty"`
}

// TrainRequest is the body for POST /model/train.
type TrainRequest struct {
	ModelName string `json:"model_name"`
	DatasetID string `json:"dataset_id"`
}

// TrainResponse is the response from POST /model/train.
type TrainResponse struct {
	JobID string `json:"job_id"`
}

// JobStatus is one observation from GET /model/status/{job_id}.
// Percent is a pointer because the backend omits it for some states;
// consumers must treat a missing or non-finite value as 0.
type JobStatus struct {
	Status  string   `json:"status"`
	Percent *float64 `json:"percent,omitempty"`
	Message string   `json:"message,omitempty"`
}

// GenerateResult is the artifact returned by GET /model/generate/{job_id}.
// It is handed upward on run completion for display and export.
type GenerateResult struct {
	JobID         string           `json:"job_id"`
	SyntheticData []map[string]any `json:"synthetic_data"`
}

// RunParams describes one end-to-end pipeline run as requested by the user.
// Epochs and BatchSize tune the selected generator locally (validated against
// the catalog); the train endpoint itself only consumes model and dataset.
type RunParams struct {
	ModelName string
	DatasetID string
	Samples   int
	Epochs    int
	BatchSize int
}

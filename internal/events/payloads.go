package events

// AnalysisPayload is the input for a seed-packet analysis job.
type AnalysisPayload struct {
	ImageData []byte `json:"image_data"`
}

// PlantPayload is the input for guide, character and research jobs.
type PlantPayload struct {
	PlantName string `json:"plant_name"`
}

// DiaryPayload is the input for a diary generation job.
type DiaryPayload struct {
	Date    string `json:"date"`
	Subject string `json:"subject,omitempty"`
}

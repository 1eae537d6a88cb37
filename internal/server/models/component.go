package models

// Components is the fixed list of downstream processing stages. Each new upload
// gets one pending component_status row per stage.
var Components = []string{
	"transcription",
	"entity_extraction",
	"sentiment_analysis",
	"visual_processing",
	"postprocessing",
	"scene_detection",
	"person_tracking",
}

type ComponentStatus struct {
	ContentID string
	Component string
	Status    UploadStatus
}

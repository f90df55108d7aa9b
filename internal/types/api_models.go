package types

// AnalysisRequest is the body accepted by the analyze endpoint
type AnalysisRequest struct {
	ImageData string `json:"imageData" example:"iVBORw0KGgoAAAANSUhEUg..."`
	MimeType  string `json:"mimeType" example:"image/jpeg"`
	Language  string `json:"language" example:"English"`
}

// AnalysisResult is returned on success. Analysis is the model text, untouched.
type AnalysisResult struct {
	Analysis string `json:"analysis" example:"### Content Summary\n..."`
}

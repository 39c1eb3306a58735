package cancel_lesson

// CancelLessonRequest HTTP request model
type CancelLessonRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

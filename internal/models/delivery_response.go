package models

// RejectedLog describes one record the server refused.
// Index is the zero-based position inside the batch that was sent.
type RejectedLog struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// DeliveryResponse is the server's verdict on a batch.
type DeliveryResponse struct {
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Message  string        `json:"message,omitempty"`
	Errors   []RejectedLog `json:"errors,omitempty"`
}

// HasRejections reports whether any record of the batch was refused.
func (r *DeliveryResponse) HasRejections() bool {
	return r != nil && (r.Rejected > 0 || len(r.Errors) > 0)
}

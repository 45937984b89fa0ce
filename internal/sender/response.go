package sender

import (
	"github.com/valyala/fastjson"

	"logbull/internal/models"
)

// parseResponse reads the server's verdict. Missing counters default to zero
// and error entries without an index are skipped.
func parseResponse(body []byte) (*models.DeliveryResponse, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	resp := &models.DeliveryResponse{
		Accepted: v.GetInt("accepted"),
		Rejected: v.GetInt("rejected"),
		Message:  string(v.GetStringBytes("message")),
	}

	for _, e := range v.GetArray("errors") {
		idx := e.Get("index")
		if idx == nil || idx.Type() != fastjson.TypeNumber {
			continue
		}
		resp.Errors = append(resp.Errors, models.RejectedLog{
			Index:   idx.GetInt(),
			Message: string(e.GetStringBytes("message")),
		})
	}

	return resp, nil
}

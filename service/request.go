package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/viant/vecserve/filter"
	"github.com/viant/vecserve/vector"
)

// QueryRequest is a validated search request. Exactly one of Text and
// Vector is set.
type QueryRequest struct {
	Text   *string
	Vector []float32
	K      int
	Filter *filter.Filter
}

type wireRequest struct {
	Text   *string         `json:"text"`
	Vector json.RawMessage `json:"vector"`
	K      json.RawMessage `json:"k"`
	Filter *string         `json:"filter"`
}

// ParseRequest decodes and validates a wire request against the index
// dimension dim. Every failure is a *RequestValidationError.
func ParseRequest(raw []byte, dim int) (QueryRequest, error) {
	var req QueryRequest
	var w wireRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return req, invalid("", "malformed JSON request: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, invalid("", "malformed JSON request: unexpected data after the request object")
	}

	hasVector := len(w.Vector) > 0 && string(w.Vector) != "null"
	switch {
	case w.Text != nil && hasVector:
		return req, invalid("", "exactly one of text or vector must be provided, got both")
	case w.Text == nil && !hasVector:
		return req, invalid("", "exactly one of text or vector must be provided")
	}

	k, err := parseK(w.K)
	if err != nil {
		return req, err
	}
	req.K = k

	if w.Text != nil {
		if strings.TrimSpace(*w.Text) == "" {
			return req, invalid("text", "must not be empty")
		}
		req.Text = w.Text
	} else {
		if req.Vector, err = parseVector(w.Vector); err != nil {
			return req, err
		}
		if len(req.Vector) != dim {
			return req, invalid("vector", "dimension %d does not match index dimension %d", len(req.Vector), dim)
		}
	}

	if w.Filter != nil && *w.Filter != "" {
		f, err := filter.Compile(*w.Filter)
		if err != nil {
			return req, invalid("filter", "%v", err)
		}
		req.Filter = f
	}
	return req, nil
}

func parseK(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, invalid("k", "is required")
	}
	k, err := strconv.Atoi(string(raw))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && raw[0] != '-' {
			return 0, invalid("k", "is out of range")
		}
		return 0, invalid("k", "must be a positive integer, got %s", raw)
	}
	if k < 1 {
		return 0, invalid("k", "must be a positive integer, got %d", k)
	}
	return k, nil
}

// parseVector accepts a JSON number array or a base64 string of little
// endian float32 values.
func parseVector(raw json.RawMessage) ([]float32, error) {
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, invalid("vector", "%v", err)
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, invalid("vector", "invalid base64: %v", err)
		}
		v, err := vector.DecodeEmbedding(data)
		if err != nil {
			return nil, invalid("vector", "%v", err)
		}
		if !vector.Finite(v) {
			return nil, invalid("vector", "values must be finite with a magnitude within float32 range")
		}
		return v, nil
	}
	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, invalid("vector", "must be an array of numbers")
	}
	v := make([]float32, len(values))
	for i, x := range values {
		if math.Abs(x) > math.MaxFloat32 {
			return nil, invalid("vector", "value at %d overflows float32", i)
		}
		v[i] = float32(x)
	}
	if !vector.Finite(v) {
		return nil, invalid("vector", "magnitude overflows float32")
	}
	return v, nil
}

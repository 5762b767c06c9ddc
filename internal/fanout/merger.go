package fanout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
)

// NamedResponse pairs a downstream response with the field name whose
// sub-request produced it. The name does not currently influence the
// merged byte layout; it is carried for logging and for a future move to
// per-part framing.
type NamedResponse struct {
	Name       string
	StatusCode int
	Header     http.Header
	Body       io.Reader
}

// MergedResponse is one outbound streaming response wrapping the
// concatenated sub-response bodies.
type MergedResponse struct {
	Boundary    string
	ContentType string
	Body        io.Reader
}

// Merge folds the given responses, in order, into a single streaming
// response with a freshly generated boundary: 16 random bytes, hex
// encoded. The body is the raw concatenation of the input bodies. No
// boundary markers or part headers are written between them, so the result
// is not a decodable multipart encoding; see the package documentation for
// why this asymmetry is preserved.
func Merge(responses []NamedResponse) (*MergedResponse, error) {
	boundary, err := generateBoundary()
	if err != nil {
		return nil, fmt.Errorf("generating boundary: %w", err)
	}

	readers := make([]io.Reader, 0, len(responses))
	for _, resp := range responses {
		if resp.Body != nil {
			readers = append(readers, resp.Body)
		}
	}

	return &MergedResponse{
		Boundary:    boundary,
		ContentType: "multipart/form-data; boundary=" + boundary,
		Body:        io.MultiReader(readers...),
	}, nil
}

// generateBoundary returns a 32-character lowercase hex token.
func generateBoundary() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// Package provider fetches raw supervisor records from the upstream directory.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"notify-gateway/internal/domain"
)

// Provider is the upstream directory source.
type Provider interface {
	// ID returns a unique identifier for this provider instance
	ID() string

	// Fetch returns every raw record the upstream currently holds
	Fetch(ctx context.Context) ([]domain.RawSupervisorRecord, error)
}

// HTTPProvider reads the directory from an HTTP endpoint returning a JSON array.
// It performs exactly one request per Fetch; there is no retry.
type HTTPProvider struct {
	id     string
	url    string
	client *resty.Client
}

// NewHTTPProvider builds a provider for url with a per-request timeout.
func NewHTTPProvider(id, url string, timeout time.Duration) *HTTPProvider {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &HTTPProvider{id: id, url: url, client: client}
}

func (p *HTTPProvider) ID() string {
	return p.id
}

func (p *HTTPProvider) Fetch(ctx context.Context) ([]domain.RawSupervisorRecord, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		if isTimeout(err) {
			return nil, NewProviderError(ErrorTimeout, p.id, "directory request timed out", err)
		}
		return nil, NewProviderError(ErrorProviderOutage, p.id, "directory request failed", err)
	}
	return parseDirectoryResponse(p.id, resp.StatusCode(), resp.Body())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// parseDirectoryResponse validates the status and decodes the array. Elements
// that are not objects, or whose fields have unexpected types, decode to
// records with empty fields so the normalizer reports them as defects instead
// of failing the whole snapshot.
func parseDirectoryResponse(providerID string, status int, body []byte) ([]domain.RawSupervisorRecord, error) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, NewProviderError(ErrorAuthentication, providerID, fmt.Sprintf("request failed with status code %d", status), nil)
	case status == http.StatusTooManyRequests:
		return nil, NewProviderError(ErrorRateLimited, providerID, fmt.Sprintf("request failed with status code %d", status), nil)
	case status == http.StatusNotFound:
		return nil, NewProviderError(ErrorContractMismatch, providerID, fmt.Sprintf("request failed with status code %d", status), nil)
	case status >= 500:
		return nil, NewProviderError(ErrorProviderOutage, providerID, fmt.Sprintf("request failed with status code %d", status), nil)
	case status < 200 || status > 299:
		return nil, NewProviderError(ErrorBadData, providerID, fmt.Sprintf("request failed with status code %d", status), nil)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, NewProviderError(ErrorBadData, providerID, "directory response is not a JSON array", err)
	}

	records := make([]domain.RawSupervisorRecord, 0, len(elems))
	for _, elem := range elems {
		records = append(records, decodeRecord(elem))
	}
	return records, nil
}

func decodeRecord(elem json.RawMessage) domain.RawSupervisorRecord {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return domain.RawSupervisorRecord{}
	}
	return domain.RawSupervisorRecord{
		ID:                   scalar(fields["id"]),
		Jurisdiction:         scalar(fields["jurisdiction"]),
		LastName:             scalar(fields["lastName"]),
		FirstName:            scalar(fields["firstName"]),
		Phone:                scalar(fields["phone"]),
		IdentificationNumber: scalar(fields["identificationNumber"]),
	}
}

// scalar accepts strings and numbers; anything else counts as missing.
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// Static serves a fixed record set. It backs tests and offline runs.
type Static struct {
	Name    string
	Records []domain.RawSupervisorRecord
	Err     error
}

func (s Static) ID() string {
	return s.Name
}

func (s Static) Fetch(_ context.Context) ([]domain.RawSupervisorRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]domain.RawSupervisorRecord(nil), s.Records...), nil
}

// Package client implements an HTTP client for the attestation service API,
// with typed helpers for every endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/zkaffinity/zkaffinity/api"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/types"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = http.MethodGet
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = http.MethodPost

	errCodeNot200 = "API error"

	// DefaultRetries this enables Request() to handle the situation where the server connection fails
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client
	DefaultTimeout = 10 * time.Second
	// pollInterval is the poll period of WaitForProof
	pollInterval = 500 * time.Millisecond
)

// HTTPclient is the attestation service API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
}

// New connects to the API host, checks it is alive and returns the handle.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}

	tr := &http.Transport{
		IdleConnTimeout:    DefaultTimeout,
		DisableCompression: false,
		WriteBufferSize:    1 * 1024 * 1024, // 1 MiB
		ReadBufferSize:     1 * 1024 * 1024, // 1 MiB
	}
	c := &HTTPclient{
		c:       &http.Client{Transport: tr, Timeout: DefaultTimeout},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	data, status, err := c.Request(HTTPGET, nil, nil, api.PingEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	return c, nil
}

// SetRetries configures the number of retries for the HTTP client.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = n
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
	if c.c.Transport != nil {
		if tr, ok := c.c.Transport.(*http.Transport); ok {
			tr.ResponseHeaderTimeout = d
		}
	}
}

// Request performs a `method` type raw request to the endpoint specified in urlPath parameter.
// Method is either GET or POST. If POST, a JSON struct should be attached.  Returns the response,
// the status code and an error.
//
// Supports query parameters via `params` slice. If the slice is not empty, it should contain pairs of strings;
// the first element of each pair is the key, and the second element is the value.
func (c *HTTPclient) Request(method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	var (
		body []byte
		err  error
	)

	// Marshal the JSON body if provided.
	if jsonBody != nil {
		body, err = json.Marshal(jsonBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	// Parse the base host URL
	u, err := url.Parse(c.host.String())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse host URL: %w", err)
	}

	// Join path segments
	u.Path = path.Join(u.Path, path.Join(urlPath...))

	// Process query parameters from the params slice.
	// Expecting even-length slice: [key1, val1, key2, val2, ...]
	// If length is odd, the last parameter without a pair will be ignored.
	if len(params) > 0 {
		values := url.Values{}
		for i := 0; i < len(params)-1; i += 2 {
			values.Set(params[i], params[i+1])
		}
		u.RawQuery = values.Encode()
	}

	// Prepare headers
	headers := http.Header{}
	if jsonBody != nil {
		headers.Set("Content-Type", "application/json")
		headers.Set("Accept", "application/json")
	}

	// Log the request details, truncating body if large
	log.Debugw("http client request",
		"type", method,
		"url", u.String(),
		"body", func() string {
			if len(body) > 512 {
				return string(body[:512]) + "..."
			}
			return string(body)
		}(),
	)

	var resp *http.Response
	for i := 1; i <= c.retries; i++ {
		// Create a fresh request each attempt
		var reqBody io.ReadCloser
		if body != nil {
			reqBody = io.NopCloser(bytes.NewReader(body))
		}
		req, err := http.NewRequest(method, u.String(), reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header = headers

		resp, err = c.c.Do(req)
		if err != nil {
			log.Warnw("http request failed", "error", err.Error(), "attempt", i, "retries", c.retries)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		// Successfully got a response, break out of the retry loop
		break
	}

	if err != nil {
		return nil, 0, fmt.Errorf("http request ultimately failed after retries: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.StatusCode, nil
}

// apiError turns a non-200 response body into an error carrying the API error
// message and code, falling back to the raw body.
func apiError(status int, data []byte) error {
	apiErr := struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{}
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("%s: %s (code %d)", errCodeNot200, apiErr.Error, apiErr.Code)
	}
	return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
}

// request performs a JSON request and decodes the response into out (skipped
// when out is nil).
func (c *HTTPclient) request(method string, jsonBody, out any, params []string, urlPath ...string) error {
	data, status, err := c.Request(method, jsonBody, params, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SignAttestation asks the service to issue a signed attestation on behalf of
// a publisher domain.
func (c *HTTPclient) SignAttestation(req *api.AttestationRequest) (*types.Attestation, error) {
	att := &types.Attestation{}
	if err := c.request(HTTPPOST, req, att, nil, api.SignAttestationEndpoint); err != nil {
		return nil, err
	}
	return att, nil
}

// StoreAttestation stores a signed attestation and returns its id.
func (c *HTTPclient) StoreAttestation(att *types.Attestation) (types.HexBytes, error) {
	stored := &api.AttestationStored{}
	if err := c.request(HTTPPOST, att, stored, nil, api.AttestationsEndpoint); err != nil {
		return nil, err
	}
	return stored.ID, nil
}

// Attestations lists the stored attestations of a wallet. An empty tag
// returns all of them.
func (c *HTTPclient) Attestations(wallet, tag string) (*api.AttestationList, error) {
	var params []string
	if tag != "" {
		params = []string{"tag", tag}
	}
	list := &api.AttestationList{}
	if err := c.request(HTTPGET, nil, list, params, api.AttestationsEndpoint, wallet); err != nil {
		return nil, err
	}
	return list, nil
}

// VerifyAttestation checks an attestation signature on the server side.
func (c *HTTPclient) VerifyAttestation(att *types.Attestation) (bool, error) {
	res := &api.VerifyAttestationResponse{}
	if err := c.request(HTTPPOST, att, res, nil, api.VerifyAttestationEndpoint); err != nil {
		return false, err
	}
	return res.Valid, nil
}

// Tags returns the interest tag dictionary.
func (c *HTTPclient) Tags() (*api.TagsResponse, error) {
	res := &api.TagsResponse{}
	if err := c.request(HTTPGET, nil, res, nil, api.TagsEndpoint); err != nil {
		return nil, err
	}
	return res, nil
}

// RequestProof enqueues a threshold proof generation job and returns its id.
func (c *HTTPclient) RequestProof(wallet types.HexBytes, tag string, threshold int64) (types.HexBytes, error) {
	res := &api.ProofJobResponse{}
	req := &api.ProofRequest{Wallet: wallet, Tag: tag, Threshold: threshold}
	if err := c.request(HTTPPOST, req, res, nil, api.ProofsEndpoint); err != nil {
		return nil, err
	}
	return res.JobID, nil
}

// ProofJob returns the status of a proof job.
func (c *HTTPclient) ProofJob(jobID types.HexBytes) (*api.ProofStatusResponse, error) {
	res := &api.ProofStatusResponse{}
	if err := c.request(HTTPGET, nil, res, nil, api.ProofsEndpoint, jobID.String()); err != nil {
		return nil, err
	}
	return res, nil
}

// WaitForProof polls a proof job until the worker has processed it or the
// context is done. The returned result may be a failed one, check its Success
// flag.
func (c *HTTPclient) WaitForProof(ctx context.Context, jobID types.HexBytes) (*types.ProofResult, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		status, err := c.ProofJob(jobID)
		if err != nil {
			return nil, err
		}
		if status.Status == "done" {
			return status.Result, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// VerifyProof verifies a threshold proof on the server side.
func (c *HTTPclient) VerifyProof(req *api.VerifyProofRequest) (bool, error) {
	res := &api.VerifyProofResponse{}
	if err := c.request(HTTPPOST, req, res, nil, api.VerifyProofEndpoint); err != nil {
		return false, err
	}
	return res.Valid, nil
}

// RegistryRoot returns the current publisher registry root.
func (c *HTTPclient) RegistryRoot() (*api.RegistryRootResponse, error) {
	res := &api.RegistryRootResponse{}
	if err := c.request(HTTPGET, nil, res, nil, api.RegistryRootEndpoint); err != nil {
		return nil, err
	}
	return res, nil
}

// Publisher returns an enrolled publisher with its registry inclusion proof.
func (c *HTTPclient) Publisher(domain string) (*api.RegistryEntryResponse, error) {
	res := &api.RegistryEntryResponse{}
	if err := c.request(HTTPGET, nil, res, nil, api.RegistryEndpoint, domain); err != nil {
		return nil, err
	}
	return res, nil
}

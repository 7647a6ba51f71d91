package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/zkaffinity/zkaffinity/attestation"
	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
	"github.com/zkaffinity/zkaffinity/types"
)

const (
	testWallet    = "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"
	testPublisher = "events.example.com"
)

// newTestAPI builds an API over fresh in-memory backends without starting an
// HTTP listener. The circom backend stays unloaded, which keeps proof
// verification offline (it reports invalid instead of fetching artifacts).
func newTestAPI(c *qt.C, t *testing.T) *API {
	reg, err := registry.New(metadb.NewTest(t))
	c.Assert(err, qt.IsNil)
	a := &API{
		storage:  storage.New(metadb.NewTest(t)),
		registry: reg,
		prover:   prover.New(prover.NewCircomBackend(), 0),
	}
	a.initRouter()
	return a
}

func doRequest(c *qt.C, a *API, method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		c.Assert(err, qt.IsNil)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func decodeJSON(c *qt.C, w *httptest.ResponseRecorder, out any) {
	c.Assert(w.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", w.Body.String()))
	c.Assert(json.Unmarshal(w.Body.Bytes(), out), qt.IsNil)
}

func decodeAPIError(c *qt.C, w *httptest.ResponseRecorder) (string, int) {
	e := struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{}
	c.Assert(json.Unmarshal(w.Body.Bytes(), &e), qt.IsNil, qt.Commentf("body: %s", w.Body.String()))
	return e.Error, e.Code
}

func TestAttestationRoundtrip(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	// issue a signed attestation, the publisher is enrolled on first use
	w := doRequest(c, a, http.MethodPost, SignAttestationEndpoint, &AttestationRequest{
		Publisher:     testPublisher,
		SubjectWallet: testWallet,
		Tag:           types.TagDeFi,
		Score:         8,
	})
	att := &types.Attestation{}
	decodeJSON(c, w, att)
	c.Assert(att.Publisher, qt.Equals, testPublisher)
	c.Assert(att.Tag, qt.Equals, types.TagDeFi)
	c.Assert(att.Score, qt.Equals, int64(8))
	c.Assert(att.Signature, qt.HasLen, ethereum.SignatureLength)
	c.Assert(att.SignerAddress, qt.HasLen, types.AddressLength)
	c.Assert(attestation.Verify(att), qt.IsTrue)

	// store it
	w = doRequest(c, a, http.MethodPost, AttestationsEndpoint, att)
	stored := &AttestationStored{}
	decodeJSON(c, w, stored)
	c.Assert(stored.ID, qt.Not(qt.HasLen), 0)

	// storing the same record twice is rejected
	w = doRequest(c, a, http.MethodPost, AttestationsEndpoint, att)
	c.Assert(w.Code, qt.Equals, ErrAttestationExists.HTTPstatus)
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrAttestationExists.Code)

	// list the wallet attestations
	w = doRequest(c, a, http.MethodGet, "/attestations/"+testWallet, nil)
	list := &AttestationList{}
	decodeJSON(c, w, list)
	c.Assert(list.Count, qt.Equals, 1)
	c.Assert(list.Attestations[0].ID, qt.DeepEquals, stored.ID)

	// filtered to a different tag the list is empty, not null
	w = doRequest(c, a, http.MethodGet, "/attestations/"+testWallet+"?tag="+types.TagNFT, nil)
	list = &AttestationList{}
	decodeJSON(c, w, list)
	c.Assert(list.Count, qt.Equals, 0)
	c.Assert(list.Attestations, qt.HasLen, 0)

	// server side signature check
	w = doRequest(c, a, http.MethodPost, VerifyAttestationEndpoint, att)
	verified := &VerifyAttestationResponse{}
	decodeJSON(c, w, verified)
	c.Assert(verified.Valid, qt.IsTrue)

	// a tampered tag changes the signed payload
	tampered := *att
	tampered.Tag = types.TagGaming
	w = doRequest(c, a, http.MethodPost, VerifyAttestationEndpoint, &tampered)
	verified = &VerifyAttestationResponse{}
	decodeJSON(c, w, verified)
	c.Assert(verified.Valid, qt.IsFalse)
}

func TestSignAttestationValidation(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	w := doRequest(c, a, http.MethodPost, SignAttestationEndpoint, &AttestationRequest{
		SubjectWallet: testWallet,
		Tag:           types.TagDeFi,
		Score:         8,
	})
	c.Assert(w.Code, qt.Equals, ErrMalformedBody.HTTPstatus)

	w = doRequest(c, a, http.MethodPost, SignAttestationEndpoint, &AttestationRequest{
		Publisher:     testPublisher,
		SubjectWallet: testWallet,
		Tag:           "watersports",
		Score:         8,
	})
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrUnknownTag.Code)

	w = doRequest(c, a, http.MethodPost, SignAttestationEndpoint, &AttestationRequest{
		Publisher:     testPublisher,
		SubjectWallet: "not-an-address",
		Tag:           types.TagDeFi,
		Score:         8,
	})
	_, code = decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrMalformedWallet.Code)
}

func TestStoreAttestationRejectsUnregisteredSigner(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	// enroll the publisher through its first issued attestation
	w := doRequest(c, a, http.MethodPost, SignAttestationEndpoint, &AttestationRequest{
		Publisher:     testPublisher,
		SubjectWallet: testWallet,
		Tag:           types.TagDeFi,
		Score:         5,
	})
	c.Assert(w.Code, qt.Equals, http.StatusOK)

	// a well signed attestation declaring the enrolled domain, but issued
	// with a key the registry does not know
	keys := ethereum.NewSignKeys()
	c.Assert(keys.Generate(), qt.IsNil)
	att, err := attestation.NewSigner(keys, testPublisher).Sign(testWallet, types.TagDeFi, 5)
	c.Assert(err, qt.IsNil)
	c.Assert(attestation.Verify(att), qt.IsTrue)

	w = doRequest(c, a, http.MethodPost, AttestationsEndpoint, att)
	c.Assert(w.Code, qt.Equals, ErrInvalidSignature.HTTPstatus)
	msg, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrInvalidSignature.Code)
	c.Assert(msg, qt.Contains, "signer not registered")
}

func TestStoreAttestationRejectsInvalid(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	req := httptest.NewRequest(http.MethodPost, AttestationsEndpoint, bytes.NewReader([]byte("not-json")))
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrMalformedBody.Code)

	// unsigned record
	w2 := doRequest(c, a, http.MethodPost, AttestationsEndpoint, &types.Attestation{
		Tag:           types.TagDeFi,
		Score:         5,
		Timestamp:     1700000000,
		Nonce:         "abcd",
		Publisher:     testPublisher,
		SubjectWallet: make([]byte, types.AddressLength),
	})
	_, code = decodeAPIError(c, w2)
	c.Assert(code, qt.Equals, ErrInvalidSignature.Code)
}

func TestWalletParamValidation(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	w := doRequest(c, a, http.MethodGet, "/attestations/not-an-address", nil)
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrMalformedWallet.Code)

	w = doRequest(c, a, http.MethodGet, "/attestations/"+testWallet+"?tag=watersports", nil)
	_, code = decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrUnknownTag.Code)
}

func TestTagsEndpoint(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	w := doRequest(c, a, http.MethodGet, TagsEndpoint, nil)
	res := &TagsResponse{}
	decodeJSON(c, w, res)
	c.Assert(res.Tags, qt.HasLen, 8)
	c.Assert(res.Tags[types.TagDeFi], qt.Equals, uint64(1))
	c.Assert(res.Tags[types.TagSocial], qt.Equals, uint64(8))
	c.Assert(res.Default, qt.Equals, uint64(types.DefaultTagID))
}

func TestProofJobFlow(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	var wallet types.HexBytes
	c.Assert(wallet.SetString(testWallet), qt.IsNil)

	// enqueue a job
	w := doRequest(c, a, http.MethodPost, ProofsEndpoint, &ProofRequest{
		Wallet:    wallet,
		Tag:       types.TagDeFi,
		Threshold: 10,
	})
	job := &ProofJobResponse{}
	decodeJSON(c, w, job)
	c.Assert(job.JobID, qt.Not(qt.HasLen), 0)

	// the job is pending until a worker picks it up
	w = doRequest(c, a, http.MethodGet, "/proofs/"+job.JobID.String(), nil)
	status := &ProofStatusResponse{}
	decodeJSON(c, w, status)
	c.Assert(status.Status, qt.Equals, storage.JobStatusPending)
	c.Assert(status.Result, qt.IsNil)

	// finish the job by hand, the endpoint must expose the stored outcome
	queued, key, err := a.storage.NextProofJob()
	c.Assert(err, qt.IsNil)
	c.Assert(queued.ID, qt.DeepEquals, job.JobID)
	c.Assert(a.storage.MarkProofJobDone(key, &types.ProofResult{
		Success: false,
		Error:   "Insufficient attestations to meet threshold",
	}), qt.IsNil)

	w = doRequest(c, a, http.MethodGet, "/proofs/"+job.JobID.String(), nil)
	status = &ProofStatusResponse{}
	decodeJSON(c, w, status)
	c.Assert(status.Status, qt.Equals, storage.JobStatusDone)
	c.Assert(status.Result, qt.IsNotNil)
	c.Assert(status.Result.Error, qt.Equals, "Insufficient attestations to meet threshold")
	c.Assert(status.FinishedAt > 0, qt.IsTrue)
}

func TestProofJobValidation(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	var wallet types.HexBytes
	c.Assert(wallet.SetString(testWallet), qt.IsNil)

	w := doRequest(c, a, http.MethodPost, ProofsEndpoint, &ProofRequest{
		Wallet:    types.HexBytes{0x01, 0x02},
		Tag:       types.TagDeFi,
		Threshold: 10,
	})
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrMalformedWallet.Code)

	w = doRequest(c, a, http.MethodPost, ProofsEndpoint, &ProofRequest{
		Wallet:    wallet,
		Tag:       "watersports",
		Threshold: 10,
	})
	_, code = decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrUnknownTag.Code)

	w = doRequest(c, a, http.MethodPost, ProofsEndpoint, &ProofRequest{
		Wallet:    wallet,
		Tag:       types.TagDeFi,
		Threshold: -1,
	})
	_, code = decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrInvalidThreshold.Code)

	// malformed and unknown job ids
	w = doRequest(c, a, http.MethodGet, "/proofs/zz", nil)
	_, code = decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrMalformedJobID.Code)

	w = doRequest(c, a, http.MethodGet, "/proofs/aabbccdd", nil)
	c.Assert(w.Code, qt.Equals, ErrJobNotFound.HTTPstatus)
	_, code = decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrJobNotFound.Code)
}

func TestVerifyProofEndpoint(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	// garbage proofs report invalid, never an HTTP error
	w := doRequest(c, a, http.MethodPost, VerifyProofEndpoint, &VerifyProofRequest{
		Proof:         []byte(`{"pi_a":[]}`),
		PublicSignals: []string{"1", "10", "1"},
	})
	res := &VerifyProofResponse{}
	decodeJSON(c, w, res)
	c.Assert(res.Valid, qt.IsFalse)

	// an empty request is just an invalid proof
	w = doRequest(c, a, http.MethodPost, VerifyProofEndpoint, &VerifyProofRequest{})
	res = &VerifyProofResponse{}
	decodeJSON(c, w, res)
	c.Assert(res.Valid, qt.IsFalse)

	// claim check: the signals do not match the declared tag and threshold
	threshold := int64(10)
	w = doRequest(c, a, http.MethodPost, VerifyProofEndpoint, &VerifyProofRequest{
		Proof:         []byte(`{"pi_a":[]}`),
		PublicSignals: []string{"2", "10", "1"},
		Tag:           types.TagDeFi,
		Threshold:     &threshold,
	})
	res = &VerifyProofResponse{}
	decodeJSON(c, w, res)
	c.Assert(res.Valid, qt.IsFalse)

	// unknown tags in the claim are the caller's fault
	w = doRequest(c, a, http.MethodPost, VerifyProofEndpoint, &VerifyProofRequest{
		Proof:         []byte(`{"pi_a":[]}`),
		PublicSignals: []string{"1", "10", "1"},
		Tag:           "watersports",
		Threshold:     &threshold,
	})
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrUnknownTag.Code)
}

func TestRegistryEndpoints(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(c, t)

	w := doRequest(c, a, http.MethodGet, RegistryRootEndpoint, nil)
	root := &RegistryRootResponse{}
	decodeJSON(c, w, root)
	c.Assert(root.Size, qt.Equals, 0)

	w = doRequest(c, a, http.MethodGet, "/registry/unknown.example.com", nil)
	c.Assert(w.Code, qt.Equals, ErrPublisherNotFound.HTTPstatus)
	_, code := decodeAPIError(c, w)
	c.Assert(code, qt.Equals, ErrPublisherNotFound.Code)

	// enroll a publisher through its first issued attestation
	w = doRequest(c, a, http.MethodPost, SignAttestationEndpoint, &AttestationRequest{
		Publisher:     testPublisher,
		SubjectWallet: testWallet,
		Tag:           types.TagDeFi,
		Score:         5,
	})
	att := &types.Attestation{}
	decodeJSON(c, w, att)

	w = doRequest(c, a, http.MethodGet, "/registry/"+testPublisher, nil)
	entry := &RegistryEntryResponse{}
	decodeJSON(c, w, entry)
	c.Assert(entry.Publisher, qt.IsNotNil)
	c.Assert(entry.Publisher.Domain, qt.Equals, testPublisher)
	c.Assert(entry.Publisher.Signers, qt.HasLen, 1)
	c.Assert(entry.Publisher.Signers[0], qt.DeepEquals, att.SignerAddress)
	c.Assert(entry.Proof, qt.IsNotNil)

	// the enrollment moved the registry root
	w = doRequest(c, a, http.MethodGet, RegistryRootEndpoint, nil)
	after := &RegistryRootResponse{}
	decodeJSON(c, w, after)
	c.Assert(after.Size, qt.Equals, 1)
	c.Assert(after.Root.String(), qt.Not(qt.Equals), root.Root.String())
	c.Assert(entry.Proof.Root, qt.DeepEquals, after.Root)
}


package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zkaffinity/zkaffinity/attestation"
	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
	"github.com/zkaffinity/zkaffinity/types"

	"github.com/go-chi/chi/v5"
)

// publisherSigner returns the attestation signer of a publisher domain. The
// first call for a domain enrolls it: a fresh signing key is generated,
// persisted and registered in the publisher registry.
func (a *API) publisherSigner(domain string) (*attestation.Signer, error) {
	keys, err := a.storage.SignerKey(domain)
	if err == nil {
		return attestation.NewSigner(keys, domain), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	keys = ethereum.NewSignKeys()
	if err := keys.Generate(); err != nil {
		return nil, err
	}
	if err := a.storage.SetSignerKey(domain, keys); err != nil {
		return nil, err
	}
	if err := a.registry.Add(&types.Publisher{
		Domain:    domain,
		Signers:   []types.HexBytes{keys.Address().Bytes()},
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		// the domain may have been enrolled out-of-band, attach the key to it
		if !errors.Is(err, registry.ErrPublisherAlreadyExists) {
			return nil, err
		}
		if err := a.registry.AddSigner(domain, keys.Address().Bytes()); err != nil {
			return nil, err
		}
	}
	log.Infow("publisher enrolled", "domain", domain, "signer", keys.AddressString())
	return attestation.NewSigner(keys, domain), nil
}

// signAttestation issues a signed attestation on behalf of a publisher
// domain. The attestation is returned to the caller, not stored.
func (a *API) signAttestation(w http.ResponseWriter, r *http.Request) {
	req := &AttestationRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Write(w)
		return
	}
	if req.Publisher == "" {
		ErrMalformedBody.With("missing publisher domain").Write(w)
		return
	}
	signer, err := a.publisherSigner(req.Publisher)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	att, err := signer.Sign(req.SubjectWallet, req.Tag, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, attestation.ErrUnknownTag):
			ErrUnknownTag.Withf("%q", req.Tag).Write(w)
		case errors.Is(err, attestation.ErrMalformedWallet):
			ErrMalformedWallet.Withf("%q", req.SubjectWallet).Write(w)
		case errors.Is(err, attestation.ErrScoreOutOfRange):
			ErrMalformedAttestation.WithErr(err).Write(w)
		default:
			ErrGenericInternalServerError.WithErr(err).Write(w)
		}
		return
	}
	httpWriteJSON(w, att)
}

// storeAttestation verifies and stores a signed attestation. When the
// publisher is enrolled in the registry, the declared signer must be one of
// its registered keys. Attestations from unknown publishers are accepted,
// checking enrollment is the consumer's choice.
func (a *API) storeAttestation(w http.ResponseWriter, r *http.Request) {
	att := &types.Attestation{}
	if err := json.NewDecoder(r.Body).Decode(att); err != nil {
		ErrMalformedBody.Write(w)
		return
	}
	if err := attestation.VerifyReason(att); err != nil {
		ErrInvalidSignature.WithErr(err).Write(w)
		return
	}
	if _, err := a.registry.Get(att.Publisher); err == nil {
		if !a.registry.HasSigner(att.Publisher, att.SignerAddress) {
			ErrInvalidSignature.With("signer not registered for publisher").Write(w)
			return
		}
	}
	id, err := a.storage.PutAttestation(att)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAttestationExists):
			ErrAttestationExists.Write(w)
		case errors.Is(err, storage.ErrMalformedAttestation):
			ErrMalformedAttestation.WithErr(err).Write(w)
		default:
			ErrGenericInternalServerError.WithErr(err).Write(w)
		}
		return
	}
	log.Infow("attestation stored", "id", id.String(), "publisher", att.Publisher, "tag", att.Tag)
	httpWriteJSON(w, &AttestationStored{ID: id})
}

// attestationsByWallet lists the stored attestations of a wallet, optionally
// filtered by the tag query parameter.
func (a *API) attestationsByWallet(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, WalletURLParam)
	if !common.IsHexAddress(addr) {
		ErrMalformedWallet.Withf("%q", addr).Write(w)
		return
	}
	tag := r.URL.Query().Get("tag")
	if tag != "" && !types.ValidTag(tag) {
		ErrUnknownTag.Withf("%q", tag).Write(w)
		return
	}
	atts, err := a.storage.Attestations(common.HexToAddress(addr).Bytes(), tag)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if atts == nil {
		atts = []*types.Attestation{}
	}
	httpWriteJSON(w, &AttestationList{Attestations: atts, Count: len(atts)})
}

// verifyAttestation checks the signature of an attestation against its
// declared signer address. The response is always 200, the validity goes in
// the body.
func (a *API) verifyAttestation(w http.ResponseWriter, r *http.Request) {
	att := &types.Attestation{}
	if err := json.NewDecoder(r.Body).Decode(att); err != nil {
		ErrMalformedBody.Write(w)
		return
	}
	httpWriteJSON(w, &VerifyAttestationResponse{Valid: attestation.Verify(att)})
}

// tags returns the interest tag dictionary with the circuit id of each tag.
func (a *API) tags(w http.ResponseWriter, _ *http.Request) {
	all := map[string]uint64{}
	for _, name := range types.TagList() {
		id, _ := types.TagID(name)
		all[name] = id
	}
	httpWriteJSON(w, &TagsResponse{Tags: all, Default: types.DefaultTagID})
}

package api

import (
	"errors"
	"net/http"

	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/storage/registry"

	"github.com/go-chi/chi/v5"
)

// registryRoot returns the current publisher registry root and the number of
// enrolled publishers. Consumers pin the root to audit registry proofs.
func (a *API) registryRoot(w http.ResponseWriter, _ *http.Request) {
	root, err := a.registry.Root()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &RegistryRootResponse{Root: root, Size: a.registry.Size()})
}

// registryEntry returns an enrolled publisher with its registry inclusion
// proof.
func (a *API) registryEntry(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, DomainURLParam)
	p, err := a.registry.Get(domain)
	if err != nil {
		if errors.Is(err, registry.ErrPublisherNotFound) {
			ErrPublisherNotFound.Withf("%q", domain).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	proof, err := a.registry.Proof(domain)
	if err != nil {
		// the record is still useful without the proof
		log.Warnw("cannot build registry proof", "domain", domain, "error", err.Error())
	}
	httpWriteJSON(w, &RegistryEntryResponse{Publisher: p, Proof: proof})
}

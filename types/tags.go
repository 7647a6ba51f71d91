package types

import "sort"

// Interest tag names supported by the attestation protocol.
const (
	TagDeFi    = "defi"
	TagNFT     = "nft"
	TagGaming  = "gaming"
	TagDAO     = "dao"
	TagTrading = "trading"
	TagPrivacy = "privacy"
	TagFinance = "finance"
	TagSocial  = "social"
)

// DefaultTagID is the circuit id used for stored attestations whose tag is no
// longer part of the dictionary. A proof request for an unknown tag is
// rejected before reaching the circuit, so this only shows up when the
// dictionary shrinks under existing data.
const DefaultTagID = 1

// tagIDs maps tag names to their circuit ids. Ids are part of the public
// signal layout of every issued proof, so they must never be renumbered or
// reused for a different tag.
var tagIDs = map[string]uint64{
	TagDeFi:    1,
	TagNFT:     2,
	TagGaming:  3,
	TagDAO:     4,
	TagTrading: 5,
	TagPrivacy: 6,
	TagFinance: 7,
	TagSocial:  8,
}

var tagNames = func() map[uint64]string {
	names := make(map[uint64]string, len(tagIDs))
	for name, id := range tagIDs {
		names[id] = name
	}
	return names
}()

// TagID returns the circuit id for a tag name. The second return value is
// false if the tag is not part of the dictionary.
func TagID(name string) (uint64, bool) {
	id, ok := tagIDs[name]
	return id, ok
}

// TagName returns the tag name for a circuit id. The second return value is
// false if the id is not part of the dictionary.
func TagName(id uint64) (string, bool) {
	name, ok := tagNames[id]
	return name, ok
}

// ValidTag reports whether name is part of the tag dictionary.
func ValidTag(name string) bool {
	_, ok := tagIDs[name]
	return ok
}

// TagList returns all tag names ordered by circuit id.
func TagList() []string {
	names := make([]string, 0, len(tagIDs))
	for name := range tagIDs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return tagIDs[names[i]] < tagIDs[names[j]]
	})
	return names
}

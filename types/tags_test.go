package types

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTagMappingIsBijective(t *testing.T) {
	c := qt.New(t)
	seen := map[uint64]string{}
	for _, name := range TagList() {
		id, ok := TagID(name)
		c.Assert(ok, qt.IsTrue)
		prev, dup := seen[id]
		c.Assert(dup, qt.IsFalse, qt.Commentf("id %d shared by %q and %q", id, prev, name))
		seen[id] = name

		back, ok := TagName(id)
		c.Assert(ok, qt.IsTrue)
		c.Assert(back, qt.Equals, name)
	}
	c.Assert(len(seen), qt.Equals, len(TagList()))
}

func TestTagMappingIsStable(t *testing.T) {
	c := qt.New(t)
	// these ids appear in issued proofs, they must never change
	for name, want := range map[string]uint64{
		TagDeFi:    1,
		TagNFT:     2,
		TagGaming:  3,
		TagDAO:     4,
		TagTrading: 5,
		TagPrivacy: 6,
		TagFinance: 7,
		TagSocial:  8,
	} {
		id, ok := TagID(name)
		c.Assert(ok, qt.IsTrue)
		c.Assert(id, qt.Equals, want)
	}
}

func TestTagUnknown(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidTag("metaverse"), qt.IsFalse)
	_, ok := TagID("metaverse")
	c.Assert(ok, qt.IsFalse)
	_, ok = TagName(999)
	c.Assert(ok, qt.IsFalse)
}

func TestTagListOrder(t *testing.T) {
	c := qt.New(t)
	list := TagList()
	c.Assert(list[0], qt.Equals, TagDeFi)
	c.Assert(list[len(list)-1], qt.Equals, TagSocial)
	for i := 1; i < len(list); i++ {
		prev, _ := TagID(list[i-1])
		cur, _ := TagID(list[i])
		c.Assert(prev < cur, qt.IsTrue)
	}
}

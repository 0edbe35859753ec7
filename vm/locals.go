package vm

import (
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/types"
)

// slot is the metadata of one allocated local.
type slot struct {
	offset int
	size   int
	typ    types.Type
	name   string
}

// localStore holds the locals of every active call in one contiguous word
// buffer. Functions allocate their slots on call and release them on
// return, so the buffers never grow after construction.
type localStore struct {
	words []fixed.Fixed
	slots []slot
	top   int
}

func newLocalStore(words, slots int) localStore {
	return localStore{
		words: make([]fixed.Fixed, words),
		slots: make([]slot, 0, slots),
	}
}

// allocate appends slots for defs, initialized from their initial values,
// and returns the index of the first one. It reports false when the store
// is full.
func (s *localStore) allocate(defs []bytecode.LocalVarDef) (int, bool) {
	base := len(s.slots)
	if len(s.slots)+len(defs) > cap(s.slots) {
		return base, false
	}
	for _, def := range defs {
		size := def.Type.Size()
		if s.top+size > len(s.words) {
			s.release(base)
			return base, false
		}
		s.slots = append(s.slots, slot{offset: s.top, size: size, typ: def.Type, name: def.Name})
		s.init(s.top, size, def.Initial)
		s.top += size
	}
	return base, true
}

// release frees every slot from base upward.
func (s *localStore) release(base int) {
	if base >= len(s.slots) {
		return
	}
	s.top = s.slots[base].offset
	s.slots = s.slots[:base]
}

func (s *localStore) init(offset, size int, initial []int32) {
	for i := 0; i < size; i++ {
		var v int32
		if i < len(initial) {
			v = initial[i]
		}
		s.words[offset+i] = fixed.Fixed(v)
	}
}

// reset drops every slot past n and reinitializes the first n from defs.
func (s *localStore) reset(n int, defs []bytecode.LocalVarDef, initial [][]int32) {
	s.release(n)
	for i := 0; i < n && i < len(s.slots); i++ {
		sl := s.slots[i]
		values := defs[i].Initial
		if initial != nil && initial[i] != nil {
			values = initial[i]
		}
		s.init(sl.offset, sl.size, values)
	}
}

// lane returns the words of slot i.
func (s *localStore) lane(i int) []fixed.Fixed {
	sl := s.slots[i]
	return s.words[sl.offset : sl.offset+sl.size]
}

package store

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// Key prefixes. All data keys are fixed-width binary with BigEndian-ordered
// components so lexicographic ordering matches component ordering and prefix
// scans stay cheap.
const (
	conceptPrefix byte = 0x01 // concept record: [prefix | concept(16)]
	labelPrefix   byte = 0x02 // type registry: [prefix | label bytes]
	attrPrefix    byte = 0x03 // attribute identity: [prefix | type(16) | valueHash(8)]
	rolePrefix    byte = 0x10 // role-player edge: [prefix | relation(16) | roleHash(8) | player(16)]
	ownsPrefix    byte = 0x11 // ownership edge: [prefix | owner(16) | attribute(16)]
)

const (
	idSize   = 16 // uuid bytes
	hashSize = 8
)

func hash64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func idBytes(id string) []byte {
	u, err := uuid.Parse(id)
	if err != nil {
		// Concept IDs are always uuids minted by this store; a foreign ID
		// hashes into the same width rather than corrupting key layout.
		var b [idSize]byte
		putUint64(b[:8], hash64(id))
		putUint64(b[8:], hash64("salt:"+id))
		return b[:]
	}
	b := [16]byte(u)
	return b[:]
}

func conceptKey(id string) []byte {
	key := make([]byte, 1+idSize)
	key[0] = conceptPrefix
	copy(key[1:], idBytes(id))
	return key
}

func labelKey(label string) []byte {
	key := make([]byte, 1+len(label))
	key[0] = labelPrefix
	copy(key[1:], label)
	return key
}

func attributeKey(typeID string, valueHash uint64) []byte {
	key := make([]byte, 1+idSize+hashSize)
	key[0] = attrPrefix
	copy(key[1:], idBytes(typeID))
	putUint64(key[1+idSize:], valueHash)
	return key
}

func roleKey(relationID, role, playerID string) []byte {
	key := make([]byte, 1+idSize+hashSize+idSize)
	key[0] = rolePrefix
	copy(key[1:], idBytes(relationID))
	putUint64(key[1+idSize:], hash64(role))
	copy(key[1+idSize+hashSize:], idBytes(playerID))
	return key
}

// roleScanPrefix covers every role edge of one relation.
func roleScanPrefix(relationID string) []byte {
	key := make([]byte, 1+idSize)
	key[0] = rolePrefix
	copy(key[1:], idBytes(relationID))
	return key
}

func ownsKey(ownerID, attributeID string) []byte {
	key := make([]byte, 1+2*idSize)
	key[0] = ownsPrefix
	copy(key[1:], idBytes(ownerID))
	copy(key[1+idSize:], idBytes(attributeID))
	return key
}

// ownsScanPrefix covers every ownership edge of one owner.
func ownsScanPrefix(ownerID string) []byte {
	key := make([]byte, 1+idSize)
	key[0] = ownsPrefix
	copy(key[1:], idBytes(ownerID))
	return key
}

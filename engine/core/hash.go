package core

import "fmt"

// Hash is a 64-bit content identifier. It is produced outside this module and only compared here.
type Hash uint64

// ThinHash is the 32-bit form of Hash used for names inside assets.
type ThinHash uint32

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

func (h ThinHash) String() string {
	return fmt.Sprintf("%08x", uint32(h))
}

package routing

import "bytes"

// SlotCount is the number of keyspace slots in a Redis cluster.
const SlotCount = 16384

// crc16tab is the CRC16-CCITT (XModem) table used by the cluster
// keyslot function, polynomial 0x1021.
var crc16tab [256]uint16

func init() {
	for i := range crc16tab {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		crc16tab[i] = crc
	}
}

func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc<<8 ^ crc16tab[byte(crc>>8)^b]
	}
	return crc
}

// Slot returns the cluster slot for key.
//
// When the key contains a non-empty hash tag ({...}), only the tag
// content is hashed, so related keys can be pinned to the same slot.
func Slot(key []byte) uint16 {
	if open := bytes.IndexByte(key, '{'); open >= 0 {
		if length := bytes.IndexByte(key[open+1:], '}'); length > 0 {
			key = key[open+1 : open+1+length]
		}
	}
	return crc16(key) % SlotCount
}

package auth

import "crypto/sha1"

// nativePassword computes the mysql_native_password scramble:
//
//	SHA1(password) XOR SHA1(seed + SHA1(SHA1(password)))
//
// An empty password always scrambles to an empty response rather than the
// 20-byte XOR of two hashes of the empty string, matching the wire
// behavior every MySQL/MariaDB server expects for anonymous auth.
func nativePassword(password, seed []byte) []byte {
	if len(password) == 0 {
		return nil
	}

	stage1 := sha1.Sum(password)
	stage2 := sha1.Sum(stage1[:])

	h := sha1.New()
	h.Write(seed)
	h.Write(stage2[:])
	seedHash := h.Sum(nil)

	out := make([]byte, len(stage1))
	for i := range out {
		out[i] = stage1[i] ^ seedHash[i]
	}
	return out
}

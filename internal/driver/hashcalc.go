package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"path/filepath"

	"argsmat/internal/rewrite"
)

// Digest is a SHA-256 cache key.
type Digest [32]byte

// cacheKey: H(schema || content || options || base name). The base name is
// part of the key because it is recorded in the source map.
func cacheKey(content [32]byte, path string, opts rewrite.Options) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	_, _ = h.Write(schema[:])
	_, _ = h.Write(content[:])
	_, _ = h.Write([]byte{byte(opts.Policy), boolByte(opts.SourceMap), boolByte(opts.MapIncludeContent)})
	for _, s := range []string{opts.ArgsName, opts.LenName, filepath.Base(path)} {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

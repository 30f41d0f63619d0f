package badger

// Key prefixes for different data types
const (
	vectorPrefix = "vec"
)

// makeVectorKey generates a key for a cached vector by content key.
// Format: prefix:contentKey
func makeVectorKey(contentKey string) []byte {
	buf := make([]byte, 0, len(vectorPrefix)+1+len(contentKey))
	buf = append(buf, vectorPrefix...)
	buf = append(buf, ':')
	return append(buf, contentKey...)
}

// vectorKeyPrefix returns the prefix shared by all vector keys.
func vectorKeyPrefix() []byte {
	return []byte(vectorPrefix + ":")
}

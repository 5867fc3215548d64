package badger

import "fmt"

// Key prefixes for different data types
const (
	sourceRecordPrefix = "srcrec"
	vectorDocPrefix    = "vecdoc"
)

// makeSourcePrefix generates the iteration prefix for a source collection.
// Keys under one collection sort lexicographically by record key, which is
// the collection's stable natural order.
func makeSourcePrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", sourceRecordPrefix, collection))
}

// makeSourceKey generates the storage key for a source record.
func makeSourceKey(collection, key string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", sourceRecordPrefix, collection, key))
}

// makeVectorPrefix generates the iteration prefix for a vector collection.
func makeVectorPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorDocPrefix, collection))
}

// makeVectorKey generates the storage key for a vector document.
func makeVectorKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", vectorDocPrefix, collection, id))
}

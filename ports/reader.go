package ports

import (
	"ecothread/domain/catalog"
)

// DatasetReader loads raw items from a tabular source
type DatasetReader interface {
	Read(path string) ([]catalog.RawItem, error)
}

// DatasetWriter persists a cleaned table, derived columns included
type DatasetWriter interface {
	Write(path string, items []catalog.Item) error
}
